// Command cleanup deletes wordbook snapshots older than
// wordbook.snapshot_retention_days. Run it from cron; the daemon never
// prunes on its own.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/lexilens/internal/app"
	"github.com/heartmarshall/lexilens/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	days := cfg.Wordbook.SnapshotRetentionDays
	if days <= 0 {
		logger.Info("snapshot retention disabled, nothing to do")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open wordbook store: %w", err)
	}
	defer store.Close()

	deleted, err := store.Wordbook.CleanupSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("delete snapshots older than %d days: %w", days, err)
	}
	logger.Info("snapshot cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Int("retention_days", days),
		slog.String("driver", cfg.Database.Driver),
	)
	return nil
}
