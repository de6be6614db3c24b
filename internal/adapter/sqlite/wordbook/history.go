package wordbook

import (
	"context"
	"fmt"

	"github.com/heartmarshall/lexilens/internal/adapter/sqlite"
	"github.com/heartmarshall/lexilens/internal/domain"
)

// AppendHistory records one lookup.
func (r *Repo) AppendHistory(ctx context.Context, h *domain.LearningHistoryEntry) error {
	query, args, err := sq.Insert(historyTable).
		Columns("id", "word", "context", "created_at").
		Values(h.ID.String(), h.Word, h.Context, toMillis(h.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "learning_history", h.ID.String())
	}
	return nil
}

// ListHistory returns the latest lookups, newest first.
func (r *Repo) ListHistory(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error) {
	query, args, err := sq.Select("id", "word", "context", "created_at").
		From(historyTable).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list learning_history: %w", err)
	}
	defer rows.Close()

	items := []domain.LearningHistoryEntry{}
	for rows.Next() {
		var (
			h         domain.LearningHistoryEntry
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &h.Word, &h.Context, &createdAt); err != nil {
			return nil, fmt.Errorf("scan learning_history: %w", err)
		}
		h.CreatedAt = fromMillis(createdAt)
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list learning_history: %w", err)
	}
	return items, nil
}

// RecentWords returns distinct looked-up words (case-insensitive), ordered by
// their latest lookup, newest first. SQLite takes the bare word column from
// the row holding max(created_at), so the latest spelling wins.
func (r *Repo) RecentWords(ctx context.Context, limit int) ([]string, error) {
	query, args, err := sq.Select("word", "max(created_at) AS last_at").
		From(historyTable).
		GroupBy("lower(word)").
		OrderBy("last_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent words: %w", err)
	}
	defer rows.Close()

	words := []string{}
	for rows.Next() {
		var (
			word   string
			lastAt int64
		)
		if err := rows.Scan(&word, &lastAt); err != nil {
			return nil, fmt.Errorf("scan recent word: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent words: %w", err)
	}
	return words, nil
}
