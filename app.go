package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"rinktally/internal/api"
	"rinktally/internal/config"
	"rinktally/internal/download"
	"rinktally/internal/feed"
	"rinktally/internal/gesture"
	"rinktally/internal/journal"
	"rinktally/internal/logging"
	"rinktally/internal/tracker"
)

// App struct
type App struct {
	ctx        context.Context
	cfg        *config.Config
	log        *zap.Logger
	client     *api.Client
	tracker    *tracker.Tracker
	gestures   *gesture.Recognizer
	journal    journal.Journal
	hub        *feed.Hub
	feedServer *feed.Server
	stopPoll   chan struct{}
	backendUp  atomic.Bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		stopPoll: make(chan struct{}),
	}
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	cfg, envPath, err := config.Load()
	if err != nil {
		fmt.Printf("Config error, using defaults: %v\n", err)
		cfg = config.Defaults()
	}
	a.cfg = cfg

	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Printf("Logger error: %v\n", err)
		log = zap.NewNop()
	}
	a.log = log
	if envPath != "" {
		a.log.Info("loaded environment file", zap.String("path", envPath))
	}

	a.client = api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(a.log))

	a.openJournal()

	opts := []tracker.Option{
		tracker.WithLogger(a.log),
		tracker.WithDisplay(&webview{app: a}),
		tracker.WithPrompter(&dialogPrompter{app: a}),
		tracker.WithDownloader(a.downloader()),
	}
	if a.journal != nil {
		opts = append(opts, tracker.WithJournal(a.journal))
	}
	if cfg.FeedAddr != "" {
		a.hub = feed.NewHub(a.log)
		a.feedServer = feed.NewServer(cfg.FeedAddr, a.hub, cfg.FeedOrigins)
		opts = append(opts, tracker.WithDisplay(a.hub))
		go func() {
			if err := a.feedServer.ListenAndServe(); err != nil {
				a.log.Error("overlay feed stopped", zap.Error(err))
			}
		}()
	}

	a.tracker = tracker.New(a.client, opts...)
	a.gestures = gesture.NewRecognizer(a.onGesture)

	a.log.Info("started",
		zap.String("api_url", cfg.APIURL),
		zap.Bool("journal", a.journal != nil),
		zap.Bool("feed", a.hub != nil))
}

// domReady is called once the frontend can receive events
func (a *App) domReady(ctx context.Context) {
	// Initial load, then keep watching the backend
	go a.pollBackend()
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	close(a.stopPoll)

	if a.feedServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.feedServer.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("overlay feed shutdown", zap.Error(err))
		}
	}

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("failed to close journal", zap.Error(err))
		}
	}

	a.log.Sync()
}

// openJournal opens the activity journal; the app runs without one on failure
func (a *App) openJournal() {
	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()

	j, err := journal.Open(ctx, a.cfg.JournalDSN)
	if err != nil {
		a.log.Warn("activity journal unavailable", zap.Error(err))
		return
	}
	a.journal = j
}

// downloader saves straight into RINK_EXPORT_DIR when set, otherwise asks
func (a *App) downloader() tracker.Downloader {
	if a.cfg.ExportDir != "" {
		return download.DirSaver{Dir: a.cfg.ExportDir}
	}
	return &dialogSaver{app: a}
}
