package wordbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// Persist records one completed analysis: the entry for the headword is
// created or advanced by one stage, a snapshot of the result is appended
// (older snapshots beyond the limit are dropped) and the lookup is added to
// the learning history. Results without any layer are rejected.
func (s *Service) Persist(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult) (*domain.WordbookEntry, error) {
	if result == nil || !result.HasAnalysis() {
		return nil, domain.NewValidationError("result", "no analysis to persist")
	}

	word := domain.CollapseSpace(req.Word)
	normalized := domain.NormalizeText(req.Word)
	if normalized == "" {
		return nil, domain.NewValidationError("word", "required")
	}

	now := s.now()
	var saved *domain.WordbookEntry

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		entry, err := s.entries.GetByWord(ctx, normalized)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			entry, err = s.entries.Create(ctx, &domain.WordbookEntry{
				ID:             uuid.New(),
				Word:           word,
				WordNormalized: normalized,
				Stage:          domain.MinStage,
				LastReviewedAt: &now,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return fmt.Errorf("create entry: %w", err)
			}
		case err != nil:
			return fmt.Errorf("get entry: %w", err)
		default:
			entry.Stage = entry.NextStage()
			entry.LastReviewedAt = &now
			entry.UpdatedAt = now
			if err := s.entries.UpdateProgress(ctx, entry.ID, entry.Stage, now); err != nil {
				return fmt.Errorf("update entry progress: %w", err)
			}
		}

		if err := s.snapshots.CreateSnapshot(ctx, &domain.WordbookSnapshot{
			ID:           uuid.New(),
			EntryID:      entry.ID,
			Context:      strings.TrimSpace(req.Context),
			PageCategory: req.PageCategory,
			SourceURL:    req.SourceURL,
			Analysis:     *result.Clone(),
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}

		if _, err := s.snapshots.TrimSnapshots(ctx, entry.ID, s.opts.MaxSnapshots); err != nil {
			return fmt.Errorf("trim snapshots: %w", err)
		}

		if err := s.history.AppendHistory(ctx, &domain.LearningHistoryEntry{
			ID:        uuid.New(),
			Word:      word,
			Context:   strings.TrimSpace(req.Context),
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		saved = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "analysis persisted",
		slog.String("entry_id", saved.ID.String()),
		slog.String("word", saved.Word),
		slog.Int("stage", saved.Stage),
	)

	return saved, nil
}
