package wordbook

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// Defaults used when Options leave a limit at zero.
const (
	DefaultMaxSnapshots          = 5
	DefaultHistoryLimit          = 100
	DefaultRecentVocabularyLimit = 20
)

type entryRepo interface {
	GetByWord(ctx context.Context, wordNormalized string) (*domain.WordbookEntry, error)
	Create(ctx context.Context, entry *domain.WordbookEntry) (*domain.WordbookEntry, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, stage int, reviewedAt time.Time) error
	SetFavorite(ctx context.Context, wordNormalized string, favorite bool) error
	List(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error)
}

type snapshotRepo interface {
	CreateSnapshot(ctx context.Context, snap *domain.WordbookSnapshot) error
	ListSnapshots(ctx context.Context, entryID uuid.UUID) ([]domain.WordbookSnapshot, error)
	TrimSnapshots(ctx context.Context, entryID uuid.UUID, keep int) (int64, error)
	DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)
}

type historyRepo interface {
	AppendHistory(ctx context.Context, h *domain.LearningHistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error)
	RecentWords(ctx context.Context, limit int) ([]string, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options holds the wordbook limits.
type Options struct {
	MaxSnapshots          int
	HistoryLimit          int
	RecentVocabularyLimit int
	SnapshotRetention     time.Duration
}

// Service is the persistence boundary of completed analyses.
type Service struct {
	entries   entryRepo
	snapshots snapshotRepo
	history   historyRepo
	tx        txManager
	opts      Options
	now       func() time.Time
	log       *slog.Logger
}

// NewService creates a new Wordbook service.
func NewService(
	log *slog.Logger,
	entries entryRepo,
	snapshots snapshotRepo,
	history historyRepo,
	tx txManager,
	opts Options,
) *Service {
	if opts.MaxSnapshots <= 0 {
		opts.MaxSnapshots = DefaultMaxSnapshots
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.RecentVocabularyLimit <= 0 {
		opts.RecentVocabularyLimit = DefaultRecentVocabularyLimit
	}
	return &Service{
		entries:   entries,
		snapshots: snapshots,
		history:   history,
		tx:        tx,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With("service", "wordbook"),
	}
}
