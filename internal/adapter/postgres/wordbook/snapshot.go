package wordbook

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/lexilens/internal/adapter/postgres"
	"github.com/heartmarshall/lexilens/internal/domain"
)

var snapshotColumns = []string{
	"id", "entry_id", "context", "page_category", "source_url", "analysis", "created_at",
}

// CreateSnapshot appends an analysis snapshot to an entry. The analysis is
// stored as JSONB.
func (r *Repo) CreateSnapshot(ctx context.Context, snap *domain.WordbookSnapshot) error {
	query, args, err := psql.Insert(snapshotsTable).
		Columns(snapshotColumns...).
		Values(
			snap.ID, snap.EntryID, snap.Context, string(snap.PageCategory),
			snap.SourceURL, snap.Analysis, snap.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "wordbook_snapshot", snap.ID.String())
	}
	return nil
}

// ListSnapshots returns the snapshots of an entry, newest first.
func (r *Repo) ListSnapshots(ctx context.Context, entryID uuid.UUID) ([]domain.WordbookSnapshot, error) {
	query, args, err := psql.Select(snapshotColumns...).
		From(snapshotsTable).
		Where(squirrel.Eq{"entry_id": entryID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wordbook_snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []domain.WordbookSnapshot{}
	for rows.Next() {
		var s domain.WordbookSnapshot
		var category string
		if err := rows.Scan(&s.ID, &s.EntryID, &s.Context, &category, &s.SourceURL, &s.Analysis, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wordbook_snapshot: %w", err)
		}
		s.PageCategory = domain.PageCategory(category)
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wordbook_snapshots: %w", err)
	}
	return snaps, nil
}

// TrimSnapshots keeps the newest keep snapshots of an entry and deletes the
// rest. Returns the number of deleted rows.
func (r *Repo) TrimSnapshots(ctx context.Context, entryID uuid.UUID, keep int) (int64, error) {
	query, args, err := psql.Delete(snapshotsTable).
		Where(squirrel.Eq{"entry_id": entryID}).
		Where(squirrel.Expr(
			"id NOT IN (SELECT id FROM "+snapshotsTable+" WHERE entry_id = ? ORDER BY created_at DESC, id DESC LIMIT ?)",
			entryID, keep,
		)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "wordbook_snapshot", entryID.String())
	}
	return tag.RowsAffected(), nil
}

// DeleteSnapshotsBefore removes snapshots created before the cutoff.
func (r *Repo) DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := psql.Delete(snapshotsTable).
		Where(squirrel.Lt{"created_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete wordbook_snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
