package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/data_visualizer/config"
	"github.com/pivolan/data_visualizer/dataset"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/visualizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	fail bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.fail {
		if _, ok := c.(tgbotapi.MessageConfig); !ok {
			return tgbotapi.Message{}, errors.New("request entity too large")
		}
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, "photo: "+m.Caption)
		case tgbotapi.DocumentConfig:
			out = append(out, "document: "+m.Caption)
		}
	}
	return out
}

func (f *fakeSender) reset() {
	f.sent = nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	cfg := &config.Config{ChartWidth: 640, ChartHeight: 400, ChartFormat: "png"}
	store := newTestStore(t)
	sender := &fakeSender{}
	noFiles := func(string) (string, error) { return "", errors.New("file is too big") }
	bot := NewBot(sender, noFiles, store, nil, visualizer.New(store, newDispatcher(cfg)), "http://localhost:8005")
	return bot, sender
}

func textMessage(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    []string
	}{
		{"/start", "start", []string{}},
		{"/plot@VisualizerBot bar city sales", "plot", []string{"bar", "city", "sales"}},
		{"  /Filter city  New York ", "filter", []string{"city", "New", "York"}},
		{"hello", "", nil},
		{"/", "", nil},
	}
	for _, tt := range tests {
		command, args := splitCommand(tt.text)
		assert.Equal(t, tt.command, command, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestBotRequiresDataset(t *testing.T) {
	bot, sender := newTestBot(t)

	bot.HandleUpdate(textMessage(1, "/plot bar city sales"))
	assert.Equal(t, []string{"Please select a file first: /files, then /use <file>"}, sender.texts())
}

func TestBotSession(t *testing.T) {
	bot, sender := newTestBot(t)

	bot.HandleUpdate(textMessage(1, "/files"))
	assert.Contains(t, sender.texts()[0], "sales.csv")

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/use sales.csv"))
	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "Loaded sales.csv successfully!", texts[0])
	assert.Contains(t, texts[1], "<pre>")
	assert.Contains(t, texts[1], "Float64")
	assert.Equal(t, tgbotapi.ModeHTML, sender.sent[1].(tgbotapi.MessageConfig).ParseMode)

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/values city"))
	assert.Equal(t, []string{"Values of city:\nNY\nLA\n"}, sender.texts())

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/filter city LA"))
	texts = sender.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Filtered Data (city = LA):")
	assert.Equal(t, "LA", bot.session(1).FilterValue)

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/filter city NY"))
	bot.HandleUpdate(textMessage(1, "/plot scatter sales units"))
	texts = sender.texts()
	assert.Equal(t, "photo: Scatter Plot of units vs sales", texts[len(texts)-1])
	assert.False(t, bot.session(1).Generate)
	assert.Equal(t, models.PlotScatter, bot.session(1).PlotType)

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/plot bar city"))
	assert.Equal(t, []string{"Please select both X and Y axes."}, sender.texts())

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/plot violin city sales"))
	assert.Equal(t, []string{`unknown plot type "violin"`}, sender.texts())

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/heatmap"))
	texts = sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "1.00")
	assert.Equal(t, "photo: Correlation Heatmap", texts[1])

	sender.reset()
	bot.HandleUpdate(textMessage(1, "/stats"))
	texts = sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Data Preview")
	assert.Contains(t, texts[1], "mean")
}

func TestBotUploadLink(t *testing.T) {
	bot, sender := newTestBot(t)

	bot.HandleUpdate(textMessage(7, "hi"))
	texts := sender.texts()
	require.Len(t, texts, 1)
	idx := strings.Index(texts[0], "/?id=")
	require.NotEqual(t, -1, idx)
	token := texts[0][idx+len("/?id="):]

	store := newTestStore(t)
	ds, err := store.Load("sales.csv")
	require.NoError(t, err)
	file := &dataset.StoredFile{Name: "sales.csv"}

	sender.reset()
	assert.True(t, bot.NotifyUpload(token, file, ds))
	assert.Equal(t, []string{"File sales.csv uploaded successfully! 3 rows, 3 columns.\nColumns: city, sales, units"}, sender.texts())
	assert.Equal(t, "sales.csv", bot.session(7).Dataset)

	assert.False(t, bot.NotifyUpload(token, file, ds))
	assert.False(t, bot.NotifyUpload("unknown", file, ds))
}

func TestBotExpireLinks(t *testing.T) {
	bot, _ := newTestBot(t)
	bot.newUploadLink(1)
	bot.newUploadLink(2)

	assert.Equal(t, 0, bot.ExpireLinks(time.Now()))
	assert.Equal(t, 2, bot.ExpireLinks(time.Now().Add(2*time.Hour)))
	assert.Empty(t, bot.links)
}

func TestBotDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("item,total\npen,1.5\ncup,3\n"))
	}))
	defer server.Close()

	bot, sender := newTestBot(t)
	bot.fileURL = func(fileID string) (string, error) { return server.URL + "/" + fileID, nil }

	bot.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 3},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "orders.csv"},
	}})
	assert.Equal(t, []string{"File orders.csv uploaded successfully! 2 rows, 2 columns.\nColumns: item, total"}, sender.texts())
	assert.Equal(t, "orders.csv", bot.session(3).Dataset)
}

func TestBotDocumentWithoutURL(t *testing.T) {
	bot, sender := newTestBot(t)

	bot.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 3},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "huge.csv"},
	}})
	texts := sender.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "upload by this link: http://localhost:8005/?id=")
	assert.Len(t, bot.links, 1)
}

func TestSendChart(t *testing.T) {
	tests := []struct {
		name string
		art  models.ChartArtifact
		want string
	}{
		{"small png", models.ChartArtifact{PlotType: models.PlotBar, Title: "small", Format: models.FormatPNG, Content: make([]byte, 10)}, "photo: small"},
		{"large png", models.ChartArtifact{PlotType: models.PlotBar, Title: "large", Format: models.FormatPNG, Content: make([]byte, maxSizePhoto+1)}, "document: large"},
		{"html", models.ChartArtifact{PlotType: models.PlotPie, Title: "page", Format: models.FormatHTML, Content: []byte("<html></html>")}, "document: page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			sendChart(sender, 1, tt.art)
			assert.Equal(t, []string{tt.want}, sender.texts())
		})
	}

	sender := &fakeSender{fail: true}
	sendChart(sender, 1, models.ChartArtifact{PlotType: models.PlotBar, Title: "t", Format: models.FormatPNG, Content: []byte{1}})
	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "Could not send chart t")
}

func TestChartFileName(t *testing.T) {
	name := chartFileName(models.ChartArtifact{PlotType: models.PlotLine, Format: models.FormatHTML})
	assert.True(t, strings.HasPrefix(name, "line_plot_"), name)
	assert.True(t, strings.HasSuffix(name, ".html"), name)
}
