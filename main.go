package main

import (
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/data_visualizer/config"
	"github.com/pivolan/data_visualizer/dataset"
	"github.com/pivolan/data_visualizer/logging"
	"github.com/pivolan/data_visualizer/visualizer"
)

func main() {
	cfg := config.GetConfig()
	logging.Default.SetLevel(logging.ParseLevel(cfg.LogLevel))
	logging.Info("started")

	store, err := dataset.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalln("cannot open data folder", err)
	}

	var catalog datasetCatalog
	if cfg.DbDsn != "" {
		sqlCatalog, err := dataset.OpenSQLCatalog(cfg.DbDsn)
		if err != nil {
			log.Fatalln("cannot connect to catalog database", err)
		}
		catalog = sqlCatalog
		logging.Info("connected catalog database")
	}

	v := visualizer.New(store, newDispatcher(cfg))
	app, err := NewApp(cfg, store, catalog, v)
	if err != nil {
		log.Fatalln("cannot parse templates", err)
	}

	var bot *Bot
	var updates tgbotapi.UpdatesChannel
	if cfg.TgToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TgToken)
		if err != nil {
			log.Fatal("tg error", err)
		}
		api.Debug = logging.Default.Enabled(logging.LevelDebug)
		logging.Info("Authorized on account %s", api.Self.UserName)

		bot = NewBot(api, api.GetFileDirectURL, store, catalog, v, cfg.PublicURL)
		app.SetNotifier(bot)

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates, err = api.GetUpdatesChan(u)
		if err != nil {
			log.Fatal("tg updates error", err)
		}
	}

	if cfg.FileTTL > 0 {
		go func() {
			for {
				time.Sleep(time.Minute)
				removed, err := store.RemoveOlderThan(time.Now().Add(-cfg.FileTTL))
				if err != nil {
					logging.Error("Error removing old files: %v", err)
				} else if removed > 0 {
					logging.Info("removed %d old files", removed)
				}
				if bot != nil {
					bot.ExpireLinks(time.Now())
				}
			}
		}()
	}

	if bot == nil {
		logging.Info("listen on: %s", cfg.ListenAddr)
		log.Fatal(http.ListenAndServe(cfg.ListenAddr, app.Handler()))
	}

	go func() {
		logging.Info("listen on: %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, app.Handler()); err != nil {
			log.Fatal("Error starting server: ", err)
		}
	}()
	for update := range updates {
		go bot.HandleUpdate(update)
	}
}
