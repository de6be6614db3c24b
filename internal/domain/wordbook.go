package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mastery stages of a wordbook entry. Every completed explanation counts as
// one exposure and advances the stage by one.
const (
	MinStage = 1
	MaxStage = 5
)

// WordbookEntry is the durable record of a looked-up headword.
type WordbookEntry struct {
	ID             uuid.UUID
	Word           string
	WordNormalized string
	Stage          int
	IsFavorite     bool
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Snapshots []WordbookSnapshot
}

// NextStage returns the stage after one more exposure, capped at MaxStage.
func (e *WordbookEntry) NextStage() int {
	if e.Stage < MinStage {
		return MinStage
	}
	if e.Stage >= MaxStage {
		return MaxStage
	}
	return e.Stage + 1
}

// WordbookSnapshot freezes one completed analysis together with the
// selection context that produced it.
type WordbookSnapshot struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	Context      string
	PageCategory PageCategory
	SourceURL    string
	Analysis     AnalysisResult
	CreatedAt    time.Time
}

// LearningHistoryEntry records one accepted lookup for personalization.
type LearningHistoryEntry struct {
	ID        uuid.UUID
	Word      string
	Context   string
	CreatedAt time.Time
}

// WordbookFilter narrows a wordbook listing. A zero Limit means no limit.
type WordbookFilter struct {
	FavoritesOnly bool
	Limit         int
}
