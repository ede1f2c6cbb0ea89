package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/bluecover-lab/project-bluecover/internal/core/config"
	"github.com/bluecover-lab/project-bluecover/internal/core/stats"
	"github.com/bluecover-lab/project-bluecover/internal/core/storage/postgres"
	"github.com/bluecover-lab/project-bluecover/internal/ingestion"
	"github.com/bluecover-lab/project-bluecover/internal/migrations"
	"github.com/bluecover-lab/project-bluecover/internal/query"
	"github.com/bluecover-lab/project-bluecover/internal/server"
)

func main() {
	configPath := flag.String("config", "bluecover.yaml", "Path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// Stat family registry: built-ins plus any YAML overlays.
	families := stats.NewFamilyRegistry()
	if cfg.Stats.FamilyConfigDir != "" {
		if err := families.LoadDir(cfg.Stats.FamilyConfigDir); err != nil {
			slog.Error("Failed to load stat family config", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Stat families registered", "families", families.Names())

	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	ingestionSvc := ingestion.NewService(dbAdapter, families, cfg.Server.MaxBodySizeMB)
	querySvc := query.NewService(dbAdapter, families, cfg.Stats.DefaultLocale, cfg.Stats.Strict)

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
