package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/tubedrums/internal/app"
	"github.com/cesargomez89/tubedrums/internal/catalog"
	"github.com/cesargomez89/tubedrums/internal/config"
	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/fetcher"
	httpapp "github.com/cesargomez89/tubedrums/internal/http"
	"github.com/cesargomez89/tubedrums/internal/httpclient"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/storage"
	"github.com/cesargomez89/tubedrums/internal/store"
	"github.com/cesargomez89/tubedrums/internal/worker"
)

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

func runServer(cfg *config.Config) error {
	appLogger := newLogger(cfg)

	// A missing fetch tool is a startup error, not a per-job one
	ytdlpPath, err := fetcher.CheckInstalled(cfg.YtDlpPath)
	if err != nil {
		return err
	}
	appLogger.Info("Found yt-dlp", "path", ytdlpPath)

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init DB: %w", err)
	}
	defer db.Close()

	// Catalog sources
	hc := httpclient.NewClient(cfg.CatalogMinInterval, constants.DefaultHTTPTimeout)
	catalogOpts := catalog.ManagerOptions{
		DB:       db,
		Logger:   appLogger,
		CacheTTL: cfg.CatalogCacheTTL,
	}
	var creds httpapp.CredentialSource
	if cfg.OAuthConfigured() {
		tokens := newTokenStore(cfg, appLogger)
		if !tokens.IsAuthenticated() {
			appLogger.Warn("No stored YouTube token, run `tubedrums auth url` to authenticate")
		}
		creds = tokens

		dataAPI := catalog.NewDataAPIProvider(cfg.YouTubeAPIURL, hc.Transport)
		defer dataAPI.Close()
		catalogOpts.DataAPI = dataAPI
	}
	if cfg.AllowPublicCatalog {
		catalogOpts.Public = catalog.NewPublicProvider(hc)
	}
	providerManager := catalog.NewProviderManager(catalogOpts)

	layout, err := storage.NewLayout(cfg.DownloadsDir)
	if err != nil {
		return err
	}
	if err := storage.EnsureDir(layout.BaseDir()); err != nil {
		return fmt.Errorf("failed to create downloads directory: %w", err)
	}

	videoFetcher := fetcher.New(fetcher.NewYtDlpRunner(ytdlpPath), appLogger)
	manager := app.NewDownloadManager(providerManager, videoFetcher, layout, appLogger, app.Options{
		FetchTimeout:    cfg.FetchTimeout,
		InterVideoDelay: cfg.InterVideoDelay,
		CleanupAfterZip: cfg.CleanupAfterZip,
	})
	manager.Start()
	defer manager.Stop()

	retention := worker.NewRetention(manager, db, cfg.JobRetention, cfg.RetentionSchedule, appLogger)
	if err := retention.Start(); err != nil {
		return err
	}
	defer retention.Stop()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(manager, providerManager, creds, appLogger)
	h.RegisterRoutes(r)

	// No write timeout: archives are streamed for as long as they take
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr, "downloads_dir", layout.BaseDir())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	appLogger.Info("Server exiting")
	return nil
}
