// Package wordbook implements the wordbook repositories on SQLite. Times are
// stored as unix milliseconds and the analysis as JSON text.
package wordbook

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/lexilens/internal/adapter/sqlite"
	"github.com/heartmarshall/lexilens/internal/domain"
)

const (
	entriesTable   = "wordbook_entries"
	snapshotsTable = "wordbook_snapshots"
	historyTable   = "learning_history"
)

var entryColumns = []string{
	"id", "word", "word_normalized", "stage", "is_favorite",
	"last_reviewed_at", "created_at", "updated_at",
}

// sq builds statements with ? placeholders.
var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Repo provides wordbook persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new wordbook repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// GetByWord returns the entry for a normalized headword.
// Returns domain.ErrNotFound if the word has never been persisted.
func (r *Repo) GetByWord(ctx context.Context, wordNormalized string) (*domain.WordbookEntry, error) {
	query, args, err := sq.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"word_normalized": wordNormalized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entry, err := scanEntry(sqlite.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, sqlite.MapError(err, "wordbook_entry", wordNormalized)
	}
	return entry, nil
}

// Create inserts a new entry and returns it as stored.
func (r *Repo) Create(ctx context.Context, entry *domain.WordbookEntry) (*domain.WordbookEntry, error) {
	var reviewed sql.NullInt64
	if entry.LastReviewedAt != nil {
		reviewed = sql.NullInt64{Int64: toMillis(*entry.LastReviewedAt), Valid: true}
	}

	query, args, err := sq.Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			entry.ID.String(), entry.Word, entry.WordNormalized, entry.Stage, entry.IsFavorite,
			reviewed, toMillis(entry.CreatedAt), toMillis(entry.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return nil, sqlite.MapError(err, "wordbook_entry", entry.WordNormalized)
	}
	return r.GetByWord(ctx, entry.WordNormalized)
}

// UpdateProgress sets the mastery stage and the review time.
func (r *Repo) UpdateProgress(ctx context.Context, id uuid.UUID, stage int, reviewedAt time.Time) error {
	ms := toMillis(reviewedAt)
	query, args, err := sq.Update(entriesTable).
		Set("stage", stage).
		Set("last_reviewed_at", ms).
		Set("updated_at", ms).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return sqlite.MapError(err, "wordbook_entry", id.String())
	}
	return requireAffected(res, "wordbook_entry", id.String())
}

// SetFavorite marks or unmarks a headword.
// Returns domain.ErrNotFound if the word has never been persisted.
func (r *Repo) SetFavorite(ctx context.Context, wordNormalized string, favorite bool) error {
	query, args, err := sq.Update(entriesTable).
		Set("is_favorite", favorite).
		Set("updated_at", toMillis(time.Now())).
		Where(squirrel.Eq{"word_normalized": wordNormalized}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return sqlite.MapError(err, "wordbook_entry", wordNormalized)
	}
	return requireAffected(res, "wordbook_entry", wordNormalized)
}

// List returns entries ordered by last review, most recent first. Entries
// never reviewed come last.
func (r *Repo) List(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error) {
	builder := sq.Select(entryColumns...).
		From(entriesTable).
		OrderBy("last_reviewed_at IS NULL", "last_reviewed_at DESC", "word_normalized ASC")
	if filter.FavoritesOnly {
		builder = builder.Where(squirrel.Eq{"is_favorite": true})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wordbook_entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.WordbookEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wordbook_entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wordbook_entries: %w", err)
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.WordbookEntry, error) {
	var (
		e                domain.WordbookEntry
		reviewed         sql.NullInt64
		created, updated int64
	)
	if err := row.Scan(
		&e.ID, &e.Word, &e.WordNormalized, &e.Stage, &e.IsFavorite,
		&reviewed, &created, &updated,
	); err != nil {
		return nil, err
	}
	if reviewed.Valid {
		t := fromMillis(reviewed.Int64)
		e.LastReviewedAt = &t
	}
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	return &e, nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func requireAffected(res sql.Result, entity, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", entity, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}
	return nil
}
