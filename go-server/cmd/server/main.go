// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbeqi/llms-generator/go-server/internal/config"
	"github.com/kbeqi/llms-generator/go-server/internal/db"
	"github.com/kbeqi/llms-generator/go-server/internal/middleware"
	"github.com/kbeqi/llms-generator/go-server/internal/server"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if cfg.ConfigFile != "" {
		slog.Info("Config file loaded", "path", cfg.ConfigFile)
	}
	if cfg.SessionSecretGenerated {
		slog.Warn("SESSION_SECRET not set, using a random secret; CSRF tokens will not survive restarts")
	}

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var database *db.Database
	var pool middleware.Execer
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		pool = database.Pool
	} else {
		slog.Info("DATABASE_URL not set, usage counters stay in memory")
	}

	analytics := middleware.NewAnalyticsCollector(pool, server.SiteHost(cfg.BaseURL))
	limiter := middleware.NewInMemoryRateLimiter(ctx, cfg.RateLimitMaxRequests)
	slog.Info("Rate limiter initialized", "backend", "in-memory", "max_requests", cfg.RateLimitMaxRequests)

	gin.SetMode(gin.ReleaseMode)
	router, err := server.NewRouter(server.Deps{
		Config:    cfg,
		DB:        database,
		Analytics: analytics,
		Limiter:   limiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analytics.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("Starting LLMs.txt generator", "port", cfg.Port, "version", cfg.AppVersion, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
