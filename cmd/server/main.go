package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/config"
	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/logging"
	"github.com/jules-12/card-creator-pro/internal/store"
	"github.com/jules-12/card-creator-pro/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	driver := "sqlite"
	if cfg.Database.IsPostgres() {
		driver = "postgres"
	}
	slog.Info("connected to database", "driver", driver)

	authSvc, err := auth.New(st, auth.Options{
		SessionTTL: cfg.Auth.SessionTTL,
		DemoUsers:  cfg.Auth.DemoUsers,
	})
	if err != nil {
		slog.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}

	renderer, err := card.NewRenderer(cfg.Export.Scale)
	if err != nil {
		slog.Error("failed to load card fonts", "error", err)
		os.Exit(1)
	}

	service, err := core.NewService(core.Deps{
		Store:    st,
		Exporter: card.NewExporter(renderer, cfg.Export.Workers, cfg.Export.MaxCards),
		Import:   cfg.Import,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, authSvc, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running imports finish before closing connections
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Error("server stopped", "error", err)
	}
}
