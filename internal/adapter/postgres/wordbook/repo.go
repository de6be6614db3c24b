// Package wordbook implements the wordbook repositories (entries, snapshots
// and learning history) on PostgreSQL.
package wordbook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/lexilens/internal/adapter/postgres"
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

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides wordbook persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new wordbook repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// GetByWord returns the entry for a normalized headword.
// Returns domain.ErrNotFound if the word has never been persisted.
func (r *Repo) GetByWord(ctx context.Context, wordNormalized string) (*domain.WordbookEntry, error) {
	query, args, err := psql.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"word_normalized": wordNormalized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entry, err := scanEntry(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "wordbook_entry", wordNormalized)
	}
	return entry, nil
}

// Create inserts a new entry and returns the persisted row.
func (r *Repo) Create(ctx context.Context, entry *domain.WordbookEntry) (*domain.WordbookEntry, error) {
	query, args, err := psql.Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			entry.ID, entry.Word, entry.WordNormalized, entry.Stage, entry.IsFavorite,
			entry.LastReviewedAt, entry.CreatedAt, entry.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(entryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	created, err := scanEntry(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "wordbook_entry", entry.WordNormalized)
	}
	return created, nil
}

// UpdateProgress sets the mastery stage and the review time.
func (r *Repo) UpdateProgress(ctx context.Context, id uuid.UUID, stage int, reviewedAt time.Time) error {
	query, args, err := psql.Update(entriesTable).
		Set("stage", stage).
		Set("last_reviewed_at", reviewedAt).
		Set("updated_at", reviewedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "wordbook_entry", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wordbook_entry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetFavorite marks or unmarks a headword.
// Returns domain.ErrNotFound if the word has never been persisted.
func (r *Repo) SetFavorite(ctx context.Context, wordNormalized string, favorite bool) error {
	query, args, err := psql.Update(entriesTable).
		Set("is_favorite", favorite).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"word_normalized": wordNormalized}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "wordbook_entry", wordNormalized)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wordbook_entry %s: %w", wordNormalized, domain.ErrNotFound)
	}
	return nil
}

// List returns entries ordered by last review, most recent first.
func (r *Repo) List(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error) {
	builder := psql.Select(entryColumns...).
		From(entriesTable).
		OrderBy("last_reviewed_at DESC NULLS LAST", "word_normalized ASC")
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

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
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

func scanEntry(row pgx.Row) (*domain.WordbookEntry, error) {
	var e domain.WordbookEntry
	if err := row.Scan(
		&e.ID, &e.Word, &e.WordNormalized, &e.Stage, &e.IsFavorite,
		&e.LastReviewedAt, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
