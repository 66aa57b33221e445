package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/data_visualizer/dataset"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
	"github.com/pivolan/data_visualizer/logging"
	"github.com/pivolan/data_visualizer/visualizer"
	uuid "github.com/satori/go.uuid"
)

const (
	uploadLinkTTL = time.Hour
	maxListed     = 30
)

const welcomeText = `Hi! 👋

I filter your tables and draw charts from them.

How to work with me:
1. Send a CSV or XLSX file (zip, gz and lz4 archives work too), or ask for a web upload link by writing anything
2. /files lists uploaded files, /use <file> selects one
3. /values <column> shows what you can filter by
4. /filter <column> <value> narrows the rows
5. /plot <type> <x> <y> draws a chart, types: line, bar, scatter, distribution, count, box, heatmap, pie
6. /heatmap shows the correlation of numeric columns
7. /stats shows the preview and statistics of the selected file`

// botSender is the part of the Telegram API the bot talks to.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type uploadLink struct {
	chatID  int64
	created time.Time
}

// Bot keeps one immutable visualizer.Request per chat; each command derives a
// new request from the previous one.
type Bot struct {
	api        botSender
	fileURL    func(fileID string) (string, error)
	store      *dataset.Store
	catalog    datasetCatalog
	visualizer *visualizer.Visualizer
	publicURL  string

	mu       sync.Mutex
	sessions map[int64]visualizer.Request
	links    map[string]uploadLink
}

func NewBot(api botSender, fileURL func(string) (string, error), store *dataset.Store, catalog datasetCatalog, v *visualizer.Visualizer, publicURL string) *Bot {
	return &Bot{
		api:        api,
		fileURL:    fileURL,
		store:      store,
		catalog:    catalog,
		visualizer: v,
		publicURL:  publicURL,
		sessions:   make(map[int64]visualizer.Request),
		links:      make(map[string]uploadLink),
	}
}

func (b *Bot) session(chatID int64) visualizer.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) setSession(chatID int64, req visualizer.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[chatID] = req
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logging.Error("Error sending message to %d: %v", chatID, err)
	}
}

func (b *Bot) replyPre(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "<pre>\n"+escapeHTML(text)+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		logging.Error("Error sending table to %d: %v", chatID, err)
	}
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// splitCommand returns the command name without slash and bot suffix, and its arguments.
func splitCommand(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil
	}
	command := fields[0]
	if i := strings.Index(command, "@"); i != -1 {
		command = command[:i]
	}
	return strings.ToLower(command), fields[1:]
}

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.Document != nil {
		b.handleDocument(update.Message)
		return
	}
	if update.Message.Text != "" {
		b.handleText(update.Message)
	}
}

func (b *Bot) handleText(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	command, args := splitCommand(message.Text)

	switch command {
	case "start", "help":
		b.reply(chatID, welcomeText)
	case "files":
		b.handleFiles(chatID)
	case "use":
		b.handleUse(chatID, args)
	case "stats":
		b.handleStats(chatID)
	case "values":
		b.handleValues(chatID, args)
	case "filter":
		b.handleFilter(chatID, args)
	case "plot":
		b.handlePlot(chatID, args)
	case "heatmap":
		b.handleHeatmap(chatID)
	default:
		token := b.newUploadLink(chatID)
		b.reply(chatID, welcomeText+"\n\nOr upload a file here: "+b.publicURL+"/?id="+token)
	}
}

func (b *Bot) newUploadLink(chatID int64) string {
	token := uuid.NewV4().String()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.links[token] = uploadLink{chatID: chatID, created: time.Now()}
	return token
}

// NotifyUpload tells the chat that opened the link about its web upload.
func (b *Bot) NotifyUpload(token string, file *dataset.StoredFile, ds *models.Dataset) bool {
	b.mu.Lock()
	link, ok := b.links[token]
	if ok {
		delete(b.links, token)
		req := b.sessions[link.chatID]
		b.sessions[link.chatID] = visualizer.Request{Dataset: file.Name, PlotType: req.PlotType}
	}
	b.mu.Unlock()
	if !ok || time.Since(link.created) > uploadLinkTTL {
		return false
	}
	b.reply(link.chatID, uploadSummary(file, ds))
	return true
}

// ExpireLinks drops upload links older than the link lifetime.
func (b *Bot) ExpireLinks(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for token, link := range b.links {
		if now.Sub(link.created) > uploadLinkTTL {
			delete(b.links, token)
			removed++
		}
	}
	return removed
}

func (b *Bot) handleDocument(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fileURL, err := b.fileURL(message.Document.FileID)
	if err != nil {
		logging.Error("Error getting file URL: %v", err)
		token := b.newUploadLink(chatID)
		b.reply(chatID, "Error on upload file, if file too big try another method, upload by this link: "+b.publicURL+"/?id="+token)
		return
	}

	resp, err := http.Get(fileURL)
	if err != nil {
		logging.Error("Error downloading file: %v", err)
		b.reply(chatID, "Error downloading file")
		return
	}
	defer resp.Body.Close()

	file, ds, err := handleFile(context.Background(), b.store, b.catalog, message.Document.FileName, resp.Body)
	if err != nil {
		logging.Warn("upload %s from chat %d rejected: %v", message.Document.FileName, chatID, err)
		b.reply(chatID, err.Error())
		return
	}
	b.setSession(chatID, visualizer.Request{Dataset: file.Name})
	b.reply(chatID, uploadSummary(file, ds))
}

func (b *Bot) handleFiles(chatID int64) {
	files, err := b.store.List()
	if err != nil {
		logging.Error("Error listing data folder: %v", err)
		b.reply(chatID, "Data folder not found. Please make sure it exists.")
		return
	}
	if len(files) == 0 {
		b.reply(chatID, "No files uploaded yet. Send me a CSV file.")
		return
	}
	b.reply(chatID, "Files:\n"+strings.Join(files, "\n")+"\n\nSelect one with /use <file>")
}

// requireDataset returns the chat's request or tells the user to pick a file.
func (b *Bot) requireDataset(chatID int64) (visualizer.Request, bool) {
	req := b.session(chatID)
	if req.Dataset == "" {
		b.reply(chatID, "Please select a file first: /files, then /use <file>")
		return req, false
	}
	return req, true
}

func (b *Bot) handleUse(chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(chatID, "Usage: /use <file>")
		return
	}
	name := strings.Join(args, " ")
	ds, err := b.store.Load(name)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	b.setSession(chatID, visualizer.Request{Dataset: name})
	b.reply(chatID, fmt.Sprintf("Loaded %s successfully!", name))
	b.replyPre(chatID, GenerateSchemaTable(ds.Schema()))
}

func (b *Bot) handleStats(chatID int64) {
	req, ok := b.requireDataset(chatID)
	if !ok {
		return
	}
	req.Generate = false
	res := b.visualizer.Handle(req)
	if res.Preview == nil {
		b.reply(chatID, strings.Join(res.Errors, "\n"))
		return
	}
	b.replyPre(chatID, "Data Preview\n"+GeneratePreviewTable(res.Preview))
	b.replyPre(chatID, "Data Statistics\n"+GenerateDescribeTable(res.Summary))
}

func (b *Bot) handleValues(chatID int64, args []string) {
	req, ok := b.requireDataset(chatID)
	if !ok {
		return
	}
	ds, err := b.store.Load(req.Dataset)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	if len(args) == 0 && ds.Len() == 0 {
		b.reply(chatID, "dataset has no columns")
		return
	}
	var column string
	if len(args) > 0 {
		column = args[0]
	} else {
		column = ds.ColumnNames()[0]
	}
	values, err := engine.DistinctValues(ds, column)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	b.reply(chatID, fmt.Sprintf("Values of %s:\n%s", column, GenerateValuesList(values, maxListed)))
}

func (b *Bot) handleFilter(chatID int64, args []string) {
	req, ok := b.requireDataset(chatID)
	if !ok {
		return
	}
	if len(args) < 2 {
		b.reply(chatID, "Usage: /filter <column> <value>")
		return
	}
	req.FilterColumn = args[0]
	req.FilterValue = strings.Join(args[1:], " ")
	req.Generate = false

	res := b.visualizer.Handle(req)
	if res.Filtered == nil {
		b.reply(chatID, strings.Join(res.Errors, "\n"))
		return
	}
	b.setSession(chatID, req)
	b.replyPre(chatID, res.Caption+"\n"+GeneratePreviewTable(res.Filtered.Head(maxListed)))
}

func (b *Bot) handlePlot(chatID int64, args []string) {
	req, ok := b.requireDataset(chatID)
	if !ok {
		return
	}
	if len(args) == 0 {
		b.reply(chatID, "Usage: /plot <type> <x> <y>")
		return
	}
	plotType, err := models.ParsePlotType(args[0])
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	req.PlotType = plotType
	req.XAxis, req.YAxis = models.AxisNone, models.AxisNone
	if len(args) > 1 {
		req.XAxis = args[1]
	}
	if len(args) > 2 {
		req.YAxis = args[2]
	}
	req.Generate = true

	res := b.visualizer.Handle(req)
	req.Generate = false
	b.setSession(chatID, req)
	b.sendResult(chatID, res)
}

func (b *Bot) handleHeatmap(chatID int64) {
	req, ok := b.requireDataset(chatID)
	if !ok {
		return
	}
	req.PlotType = models.PlotHeatmap
	req.Generate = false
	res := b.visualizer.Handle(req)
	if res.Correlation != nil {
		b.replyPre(chatID, res.Caption+"\n"+GenerateCorrelationTable(*res.Correlation))
	}
	b.sendResult(chatID, res)
}

func (b *Bot) sendResult(chatID int64, res visualizer.Result) {
	for _, w := range res.Warnings {
		b.reply(chatID, w)
	}
	for _, e := range res.Errors {
		b.reply(chatID, e)
	}
	if res.Heatmap != nil {
		sendChart(b.api, chatID, *res.Heatmap)
	}
	for _, art := range res.Charts {
		sendChart(b.api, chatID, art)
	}
}
