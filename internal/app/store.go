package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/lexilens/internal/adapter/postgres"
	pgwordbook "github.com/heartmarshall/lexilens/internal/adapter/postgres/wordbook"
	"github.com/heartmarshall/lexilens/internal/adapter/sqlite"
	sqlitewordbook "github.com/heartmarshall/lexilens/internal/adapter/sqlite/wordbook"
	"github.com/heartmarshall/lexilens/internal/config"
	"github.com/heartmarshall/lexilens/internal/service/wordbook"
)

// Store is an opened wordbook database with its service.
type Store struct {
	Wordbook *wordbook.Service

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the database.
func (s *Store) Close() { s.close() }

// OpenStore connects the configured database driver, applies migrations and
// builds the wordbook service on top of it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	opts := wordbookOptions(cfg.Wordbook)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		results, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logMigrations(ctx, logger, results)

		repo := pgwordbook.New(pool)
		return &Store{
			Wordbook: wordbook.NewService(logger, repo, repo, repo, postgres.NewTxManager(pool), opts),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		results, err := sqlite.Migrate(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logMigrations(ctx, logger, results)

		repo := sqlitewordbook.New(db)
		return &Store{
			Wordbook: wordbook.NewService(logger, repo, repo, repo, sqlite.NewTxManager(db), opts),
			ping:     db.PingContext,
			close:    closeQuietly(db),
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

func wordbookOptions(cfg config.WordbookConfig) wordbook.Options {
	return wordbook.Options{
		MaxSnapshots:          cfg.MaxSnapshots,
		HistoryLimit:          cfg.HistoryLimit,
		RecentVocabularyLimit: cfg.RecentVocabularyLimit,
		SnapshotRetention:     time.Duration(cfg.SnapshotRetentionDays) * 24 * time.Hour,
	}
}

func closeQuietly(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

func logMigrations(ctx context.Context, logger *slog.Logger, results []*goose.MigrationResult) {
	for _, r := range results {
		logger.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration),
		)
	}
}
