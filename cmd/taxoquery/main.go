package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/taxolab/taxoquery/internal/config"
	"github.com/taxolab/taxoquery/internal/generator"
	"github.com/taxolab/taxoquery/internal/migrations"
	"github.com/taxolab/taxoquery/internal/server"
	"github.com/taxolab/taxoquery/internal/sqlgen"
	"github.com/taxolab/taxoquery/internal/storage"
	"github.com/taxolab/taxoquery/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "taxoquery.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Snapshot Storage (optional PostgreSQL)
	var (
		store storage.TaxonomyStore
		db    *sql.DB
	)
	if cfg.Database.Enabled {
		adapter, err := postgres.NewAdapter(
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
		)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer adapter.Close()

		if err := migrations.RunMigrations(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}

		store = adapter
		db = adapter.DB()
	} else {
		slog.Info("Snapshot store disabled by config; taxonomies are kept in memory only")
	}

	// 3. Initialize Template Registry
	registry, err := sqlgen.DefaultRegistry()
	if err != nil {
		slog.Error("Failed to load built-in templates", "error", err)
		os.Exit(1)
	}
	if cfg.Templates.Dir != "" {
		if err := registry.LoadDir(cfg.Templates.Dir); err != nil {
			slog.Error("Failed to load template directory", "dir", cfg.Templates.Dir, "error", err)
			os.Exit(1)
		}
		slog.Info("Loaded extra templates", "dir", cfg.Templates.Dir)
	}

	// 4. Initialize Generation Service
	engine := sqlgen.NewEngine(registry)
	pricePerTB := decimal.NewFromFloat(cfg.Pricing.PerTBUSD)
	genSvc := generator.NewService(registry, engine, store, pricePerTB)

	if store != nil && cfg.Taxonomy.RestoreSource != "" {
		if err := genSvc.RestoreTaxonomy(context.Background(), cfg.Taxonomy.RestoreSource); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				slog.Info("No persisted taxonomy to restore", "source_id", cfg.Taxonomy.RestoreSource)
			} else {
				slog.Error("Failed to restore taxonomy snapshot", "error", err)
				os.Exit(1)
			}
		}
	}

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), db, cfg.Server.Mode)
	genSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler -> triggers the shutdown sequence below.
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
