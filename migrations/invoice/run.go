package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/invoiceledger/pkg/config"
	"github.com/ghuser/invoiceledger/pkg/logger"
	"github.com/ghuser/invoiceledger/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	version, err := migrator.RunMigrations(context.Background(), cfg.DatabaseURL, MigrationsFS)
	if err != nil {
		log.Error("invoice migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("invoice migrations applied", "version", version)
}
