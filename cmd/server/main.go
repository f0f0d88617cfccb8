package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/binwatch/binwatch/internal/alerts"
	"github.com/binwatch/binwatch/internal/api"
	"github.com/binwatch/binwatch/internal/auth"
	"github.com/binwatch/binwatch/internal/config"
	"github.com/binwatch/binwatch/internal/ingest"
	"github.com/binwatch/binwatch/internal/metrics"
	"github.com/binwatch/binwatch/internal/registry"
	"github.com/binwatch/binwatch/internal/stats"
	"github.com/binwatch/binwatch/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Optional .env file — resolves API key and webhook URL env vars in dev.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	slog.Info("binwatch-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"staleness_window", cfg.Server.Thresholds.StalenessWindow,
		"webhooks", len(cfg.Server.Webhooks),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Core pipeline: registry → classifier thresholds → alert engine,
	// orchestrated by the ingestion coordinator.
	reg := registry.New()
	engine := alerts.New(cfg.Server.Thresholds, cfg.Server.Webhooks)
	coord := ingest.New(reg, engine, cfg.Server.Thresholds)
	agg := stats.New(coord)

	// Hot-reload thresholds on config file change.
	go func() {
		err := config.Watch(ctx, *configPath, func(next *config.Config) {
			coord.SetThresholds(next.Server.Thresholds)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts bin/alert snapshots to dashboard clients.
	hub := ws.New(coord, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API (behind API-key auth), Prometheus
	// metrics, and the WebSocket hub on HTTPPort.
	guard := auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", guard(api.New(coord, agg)))
	httpMux.Handle("/metrics", metrics.New(agg))
	httpMux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: cors.AllowAll().Handler(httpMux),
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("binwatch-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
