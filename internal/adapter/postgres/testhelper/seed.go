package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedEntry creates a wordbook entry with a unique headword at the given stage.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, stage int) domain.WordbookEntry {
	t.Helper()
	ctx := context.Background()

	word := "word-" + uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := domain.WordbookEntry{
		ID:             uuid.New(),
		Word:           word,
		WordNormalized: word,
		Stage:          stage,
		LastReviewedAt: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO wordbook_entries (id, word, word_normalized, stage, is_favorite, last_reviewed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, false, $5, $6, $7)`,
		entry.ID, entry.Word, entry.WordNormalized, entry.Stage, entry.LastReviewedAt, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seed entry: %v", err)
	}

	return entry
}
