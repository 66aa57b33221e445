package main

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/logging"
)

// Telegram recompresses bigger photos badly, those go out as documents.
const maxSizePhoto = 150000

func chartFileName(art models.ChartArtifact) string {
	ext := "png"
	if art.Format == models.FormatHTML {
		ext = "html"
	}
	kind := strings.ReplaceAll(strings.ToLower(art.PlotType.String()), " ", "_")
	return fmt.Sprintf("%s_%s.%s", kind, time.Now().Format("20060102-150405"), ext)
}

// sendChart delivers one rendered chart with its title as caption.
func sendChart(api botSender, chatID int64, art models.ChartArtifact) {
	file := tgbotapi.FileBytes{
		Name:  chartFileName(art),
		Bytes: art.Content,
	}

	var msg tgbotapi.Chattable
	if art.Format == models.FormatPNG && len(art.Content) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, file)
		photo.Caption = art.Title
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(chatID, file)
		doc.Caption = art.Title
		msg = doc
	}

	if _, err := api.Send(msg); err != nil {
		logging.Error("Error sending chart %q to %d: %v", art.Title, chatID, err)
		errMsg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Could not send chart %s: %v", art.Title, err))
		if _, err := api.Send(errMsg); err != nil {
			logging.Error("Error sending message to %d: %v", chatID, err)
		}
	}
}
