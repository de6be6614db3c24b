package wordbook

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexilens/internal/domain"
)

var _ entryRepo = &entryRepoMock{}

type entryRepoMock struct {
	GetByWordFunc      func(ctx context.Context, wordNormalized string) (*domain.WordbookEntry, error)
	CreateFunc         func(ctx context.Context, entry *domain.WordbookEntry) (*domain.WordbookEntry, error)
	UpdateProgressFunc func(ctx context.Context, id uuid.UUID, stage int, reviewedAt time.Time) error
	SetFavoriteFunc    func(ctx context.Context, wordNormalized string, favorite bool) error
	ListFunc           func(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error)

	mu    sync.Mutex
	calls struct {
		GetByWord      []string
		Create         []*domain.WordbookEntry
		UpdateProgress []struct {
			ID    uuid.UUID
			Stage int
		}
		SetFavorite []struct {
			Word     string
			Favorite bool
		}
		List []domain.WordbookFilter
	}
}

func (m *entryRepoMock) GetByWord(ctx context.Context, wordNormalized string) (*domain.WordbookEntry, error) {
	if m.GetByWordFunc == nil {
		panic("entryRepoMock.GetByWordFunc: method is nil but entryRepo.GetByWord was just called")
	}
	m.mu.Lock()
	m.calls.GetByWord = append(m.calls.GetByWord, wordNormalized)
	m.mu.Unlock()
	return m.GetByWordFunc(ctx, wordNormalized)
}

func (m *entryRepoMock) Create(ctx context.Context, entry *domain.WordbookEntry) (*domain.WordbookEntry, error) {
	if m.CreateFunc == nil {
		panic("entryRepoMock.CreateFunc: method is nil but entryRepo.Create was just called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, entry)
	m.mu.Unlock()
	return m.CreateFunc(ctx, entry)
}

func (m *entryRepoMock) CreateCalls() []*domain.WordbookEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *entryRepoMock) UpdateProgress(ctx context.Context, id uuid.UUID, stage int, reviewedAt time.Time) error {
	if m.UpdateProgressFunc == nil {
		panic("entryRepoMock.UpdateProgressFunc: method is nil but entryRepo.UpdateProgress was just called")
	}
	m.mu.Lock()
	m.calls.UpdateProgress = append(m.calls.UpdateProgress, struct {
		ID    uuid.UUID
		Stage int
	}{id, stage})
	m.mu.Unlock()
	return m.UpdateProgressFunc(ctx, id, stage, reviewedAt)
}

func (m *entryRepoMock) UpdateProgressCalls() []struct {
	ID    uuid.UUID
	Stage int
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpdateProgress
}

func (m *entryRepoMock) SetFavorite(ctx context.Context, wordNormalized string, favorite bool) error {
	if m.SetFavoriteFunc == nil {
		panic("entryRepoMock.SetFavoriteFunc: method is nil but entryRepo.SetFavorite was just called")
	}
	m.mu.Lock()
	m.calls.SetFavorite = append(m.calls.SetFavorite, struct {
		Word     string
		Favorite bool
	}{wordNormalized, favorite})
	m.mu.Unlock()
	return m.SetFavoriteFunc(ctx, wordNormalized, favorite)
}

func (m *entryRepoMock) SetFavoriteCalls() []struct {
	Word     string
	Favorite bool
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.SetFavorite
}

func (m *entryRepoMock) List(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error) {
	if m.ListFunc == nil {
		panic("entryRepoMock.ListFunc: method is nil but entryRepo.List was just called")
	}
	m.mu.Lock()
	m.calls.List = append(m.calls.List, filter)
	m.mu.Unlock()
	return m.ListFunc(ctx, filter)
}

func (m *entryRepoMock) ListCalls() []domain.WordbookFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.List
}

var _ snapshotRepo = &snapshotRepoMock{}

type snapshotRepoMock struct {
	CreateSnapshotFunc        func(ctx context.Context, snap *domain.WordbookSnapshot) error
	ListSnapshotsFunc         func(ctx context.Context, entryID uuid.UUID) ([]domain.WordbookSnapshot, error)
	TrimSnapshotsFunc         func(ctx context.Context, entryID uuid.UUID, keep int) (int64, error)
	DeleteSnapshotsBeforeFunc func(ctx context.Context, before time.Time) (int64, error)

	mu    sync.Mutex
	calls struct {
		CreateSnapshot []*domain.WordbookSnapshot
		TrimSnapshots  []struct {
			EntryID uuid.UUID
			Keep    int
		}
		DeleteSnapshotsBefore []time.Time
	}
}

func (m *snapshotRepoMock) CreateSnapshot(ctx context.Context, snap *domain.WordbookSnapshot) error {
	if m.CreateSnapshotFunc == nil {
		panic("snapshotRepoMock.CreateSnapshotFunc: method is nil but snapshotRepo.CreateSnapshot was just called")
	}
	m.mu.Lock()
	m.calls.CreateSnapshot = append(m.calls.CreateSnapshot, snap)
	m.mu.Unlock()
	return m.CreateSnapshotFunc(ctx, snap)
}

func (m *snapshotRepoMock) CreateSnapshotCalls() []*domain.WordbookSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.CreateSnapshot
}

func (m *snapshotRepoMock) ListSnapshots(ctx context.Context, entryID uuid.UUID) ([]domain.WordbookSnapshot, error) {
	if m.ListSnapshotsFunc == nil {
		panic("snapshotRepoMock.ListSnapshotsFunc: method is nil but snapshotRepo.ListSnapshots was just called")
	}
	return m.ListSnapshotsFunc(ctx, entryID)
}

func (m *snapshotRepoMock) TrimSnapshots(ctx context.Context, entryID uuid.UUID, keep int) (int64, error) {
	if m.TrimSnapshotsFunc == nil {
		panic("snapshotRepoMock.TrimSnapshotsFunc: method is nil but snapshotRepo.TrimSnapshots was just called")
	}
	m.mu.Lock()
	m.calls.TrimSnapshots = append(m.calls.TrimSnapshots, struct {
		EntryID uuid.UUID
		Keep    int
	}{entryID, keep})
	m.mu.Unlock()
	return m.TrimSnapshotsFunc(ctx, entryID, keep)
}

func (m *snapshotRepoMock) TrimSnapshotsCalls() []struct {
	EntryID uuid.UUID
	Keep    int
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.TrimSnapshots
}

func (m *snapshotRepoMock) DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteSnapshotsBeforeFunc == nil {
		panic("snapshotRepoMock.DeleteSnapshotsBeforeFunc: method is nil but snapshotRepo.DeleteSnapshotsBefore was just called")
	}
	m.mu.Lock()
	m.calls.DeleteSnapshotsBefore = append(m.calls.DeleteSnapshotsBefore, before)
	m.mu.Unlock()
	return m.DeleteSnapshotsBeforeFunc(ctx, before)
}

func (m *snapshotRepoMock) DeleteSnapshotsBeforeCalls() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.DeleteSnapshotsBefore
}

var _ historyRepo = &historyRepoMock{}

type historyRepoMock struct {
	AppendHistoryFunc func(ctx context.Context, h *domain.LearningHistoryEntry) error
	ListHistoryFunc   func(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error)
	RecentWordsFunc   func(ctx context.Context, limit int) ([]string, error)

	mu    sync.Mutex
	calls struct {
		AppendHistory []*domain.LearningHistoryEntry
		ListHistory   []int
		RecentWords   []int
	}
}

func (m *historyRepoMock) AppendHistory(ctx context.Context, h *domain.LearningHistoryEntry) error {
	if m.AppendHistoryFunc == nil {
		panic("historyRepoMock.AppendHistoryFunc: method is nil but historyRepo.AppendHistory was just called")
	}
	m.mu.Lock()
	m.calls.AppendHistory = append(m.calls.AppendHistory, h)
	m.mu.Unlock()
	return m.AppendHistoryFunc(ctx, h)
}

func (m *historyRepoMock) AppendHistoryCalls() []*domain.LearningHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.AppendHistory
}

func (m *historyRepoMock) ListHistory(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error) {
	if m.ListHistoryFunc == nil {
		panic("historyRepoMock.ListHistoryFunc: method is nil but historyRepo.ListHistory was just called")
	}
	m.mu.Lock()
	m.calls.ListHistory = append(m.calls.ListHistory, limit)
	m.mu.Unlock()
	return m.ListHistoryFunc(ctx, limit)
}

func (m *historyRepoMock) ListHistoryCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.ListHistory
}

func (m *historyRepoMock) RecentWords(ctx context.Context, limit int) ([]string, error) {
	if m.RecentWordsFunc == nil {
		panic("historyRepoMock.RecentWordsFunc: method is nil but historyRepo.RecentWords was just called")
	}
	m.mu.Lock()
	m.calls.RecentWords = append(m.calls.RecentWords, limit)
	m.mu.Unlock()
	return m.RecentWordsFunc(ctx, limit)
}

func (m *historyRepoMock) RecentWordsCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.RecentWords
}

var _ txManager = &txManagerMock{}

// txManagerMock runs fn inline unless RunInTxFunc is set.
type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	mu    sync.Mutex
	count int
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

func (m *txManagerMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
