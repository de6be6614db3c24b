package wordbook

import (
	"context"
	"fmt"
	"log/slog"
)

// CleanupSnapshots deletes snapshots older than the retention period. A zero
// retention keeps everything.
func (s *Service) CleanupSnapshots(ctx context.Context) (int64, error) {
	if s.opts.SnapshotRetention <= 0 {
		return 0, nil
	}

	cutoff := s.now().Add(-s.opts.SnapshotRetention)
	deleted, err := s.snapshots.DeleteSnapshotsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}

	s.log.InfoContext(ctx, "snapshots cleaned up",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
	return deleted, nil
}
