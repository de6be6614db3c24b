package wordbook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/lexilens/internal/adapter/sqlite"
	"github.com/heartmarshall/lexilens/internal/domain"
)

var snapshotColumns = []string{
	"id", "entry_id", "context", "page_category", "source_url", "analysis", "created_at",
}

// CreateSnapshot appends an analysis snapshot to an entry.
func (r *Repo) CreateSnapshot(ctx context.Context, snap *domain.WordbookSnapshot) error {
	analysis, err := json.Marshal(snap.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	query, args, err := sq.Insert(snapshotsTable).
		Columns(snapshotColumns...).
		Values(
			snap.ID.String(), snap.EntryID.String(), snap.Context, string(snap.PageCategory),
			snap.SourceURL, string(analysis), toMillis(snap.CreatedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "wordbook_snapshot", snap.ID.String())
	}
	return nil
}

// ListSnapshots returns the snapshots of an entry, newest first.
func (r *Repo) ListSnapshots(ctx context.Context, entryID uuid.UUID) ([]domain.WordbookSnapshot, error) {
	query, args, err := sq.Select(snapshotColumns...).
		From(snapshotsTable).
		Where(squirrel.Eq{"entry_id": entryID.String()}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wordbook_snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []domain.WordbookSnapshot{}
	for rows.Next() {
		var (
			s         domain.WordbookSnapshot
			category  string
			analysis  string
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.EntryID, &s.Context, &category, &s.SourceURL, &analysis, &createdAt); err != nil {
			return nil, fmt.Errorf("scan wordbook_snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(analysis), &s.Analysis); err != nil {
			return nil, fmt.Errorf("decode wordbook_snapshot %s: %w", s.ID, err)
		}
		s.PageCategory = domain.PageCategory(category)
		s.CreatedAt = fromMillis(createdAt)
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
	id := entryID.String()
	query, args, err := sq.Delete(snapshotsTable).
		Where(squirrel.Eq{"entry_id": id}).
		Where(squirrel.Expr(
			"id NOT IN (SELECT id FROM "+snapshotsTable+" WHERE entry_id = ? ORDER BY created_at DESC, id DESC LIMIT ?)",
			id, keep,
		)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, sqlite.MapError(err, "wordbook_snapshot", id)
	}
	return res.RowsAffected()
}

// DeleteSnapshotsBefore removes snapshots created before the cutoff.
func (r *Repo) DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := sq.Delete(snapshotsTable).
		Where(squirrel.Lt{"created_at": toMillis(before)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete wordbook_snapshots: %w", err)
	}
	return res.RowsAffected()
}
