// Package app wires configuration, storage and services into a runnable
// server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"santaverse/internal/compositing"
	"santaverse/internal/config"
	"santaverse/internal/dialogue"
	"santaverse/internal/gallery"
	"santaverse/internal/server"
	"santaverse/internal/storage"
	ws "santaverse/internal/websocket"
)

const (
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 10 * time.Second
	openStoreTimeout  = 5 * time.Second
)

// App is the main application struct
type App struct {
	Config  config.Config
	Store   storage.Store
	Hub     *ws.Hub
	Gallery *gallery.Service
	Engine  *dialogue.Engine
	Overlay compositing.OverlaySource
	Logger  *slog.Logger
}

// OpenStore opens the backend selected by cfg.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	opts := storage.Options{QuotaBytes: cfg.GalleryQuotaBytes}
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return storage.InitDB(cfg.SQLitePath, opts)
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(ctx, openStoreTimeout)
		defer cancel()
		return storage.InitPostgres(ctx, cfg.PostgresDSN, opts)
	case config.DriverMemory:
		return storage.NewMemoryStore(opts), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// New creates and initializes the application
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	hub := ws.NewHub(logger)
	a := &App{
		Config:  cfg,
		Store:   store,
		Hub:     hub,
		Gallery: gallery.NewService(store, store, hub, logger),
		Engine:  dialogue.NewEngine(),
		Overlay: &compositing.FileOverlay{Path: cfg.OverlayPath},
		Logger:  logger,
	}
	logger.Info("app initialized", "store", cfg.StoreDriver)
	return a, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return server.New(server.Deps{
		Gallery:        a.Gallery,
		Session:        a.Store,
		Transcripts:    a.Store,
		Hub:            a.Hub,
		Engine:         a.Engine,
		TypingDelay:    a.Config.TypingDelay,
		Compositing:    compositing.DefaultConfig(),
		Overlay:        a.Overlay,
		AllowedOrigins: a.Config.AllowedOrigins,
		Logger:         a.Logger,
	})
}

// Serve runs the hub and HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.Hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("SantaVerse server starting", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	stopHub()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
