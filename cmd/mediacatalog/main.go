// Package main is the entry point for the media catalog API server.
// It loads configuration, opens the configured store, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediacatalog/internal/catalog"
	"mediacatalog/internal/config"
	"mediacatalog/internal/database"
	"mediacatalog/internal/handlers"
	"mediacatalog/internal/kv"
	"mediacatalog/internal/middleware"
	"mediacatalog/internal/router"
	"mediacatalog/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Text logs in development, JSON elsewhere.
	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.StoreBackend,
	)

	st, closer, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	svc := catalog.New(st)
	catalogHandlers := handlers.NewCatalog(svc, cfg.Env)

	opts := router.Options{AllowedOrigins: cfg.CORSOrigins}
	if cfg.WriteRateLimit > 0 {
		limiter := middleware.NewWriteLimiter(cfg.WriteRateLimit, time.Minute, cfg.TrustProxy)
		defer limiter.Stop()
		opts.Limiter = limiter
	}
	r := router.New(catalogHandlers, opts)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "store", st.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the store selected by cfg.StoreBackend. The returned
// closer releases its connections.
func openStore(cfg *config.Config) (store.Store, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		slog.Warn("memory backend selected, catalog data is lost on exit")
		return store.NewBlobStore(kv.NewMemory(), cfg.BlobKeyPrefix), nopCloser{}, nil

	case config.BackendBlob:
		client, err := kv.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return nil, nil, err
		}
		valkey := kv.NewValkey(client)
		return store.NewBlobStore(valkey, cfg.BlobKeyPrefix), valkey, nil

	case config.BackendRelational:
		dsn := cfg.DSN()
		if cfg.SQLDriver == database.SQLite {
			dsn = database.SQLiteDSN(cfg.SQLitePath)
		}
		db, err := database.Connect(cfg.SQLDriver, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db, cfg.SQLDriver); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store.NewRelationalStore(db, cfg.SQLDriver), db, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
