package wordbook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// RecentVocabulary returns the most recently looked-up distinct words,
// newest first.
func (s *Service) RecentVocabulary(ctx context.Context) ([]string, error) {
	words, err := s.history.RecentWords(ctx, s.opts.RecentVocabularyLimit)
	if err != nil {
		return nil, fmt.Errorf("recent words: %w", err)
	}
	return words, nil
}

// FavoriteWords returns the headwords marked as favorite.
func (s *Service) FavoriteWords(ctx context.Context) ([]string, error) {
	entries, err := s.entries.List(ctx, domain.WordbookFilter{FavoritesOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		words = append(words, e.Word)
	}
	return words, nil
}

// SetFavorite marks or unmarks a headword. Returns domain.ErrNotFound if the
// word has never been analyzed.
func (s *Service) SetFavorite(ctx context.Context, word string, favorite bool) error {
	normalized := domain.NormalizeText(word)
	if normalized == "" {
		return domain.NewValidationError("word", "required")
	}
	if err := s.entries.SetFavorite(ctx, normalized, favorite); err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}

	s.log.InfoContext(ctx, "favorite updated",
		slog.String("word", normalized),
		slog.Bool("favorite", favorite),
	)
	return nil
}

// History returns learning history entries, newest first. A non-positive
// limit uses the configured default.
func (s *Service) History(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error) {
	if limit <= 0 || limit > s.opts.HistoryLimit {
		limit = s.opts.HistoryLimit
	}
	items, err := s.history.ListHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// Entry returns one headword with its snapshots, newest first.
func (s *Service) Entry(ctx context.Context, word string) (*domain.WordbookEntry, error) {
	normalized := domain.NormalizeText(word)
	if normalized == "" {
		return nil, domain.NewValidationError("word", "required")
	}

	entry, err := s.entries.GetByWord(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	snaps, err := s.snapshots.ListSnapshots(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	entry.Snapshots = snaps
	return entry, nil
}

// Entries lists wordbook entries, most recently reviewed first.
func (s *Service) Entries(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error) {
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}
