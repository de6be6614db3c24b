package surface

import (
	"context"
	"sync"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/engine"
)

var _ analyzer = &analyzerMock{}

type analyzerMock struct {
	StartFunc    func(ctx context.Context, req domain.AnalysisRequest) (*engine.Run, error)
	SnapshotFunc func() engine.State

	mu         sync.Mutex
	startCalls []domain.AnalysisRequest
}

func (m *analyzerMock) Start(ctx context.Context, req domain.AnalysisRequest) (*engine.Run, error) {
	m.mu.Lock()
	m.startCalls = append(m.startCalls, req)
	m.mu.Unlock()
	if m.StartFunc == nil {
		return &engine.Run{}, nil
	}
	return m.StartFunc(ctx, req)
}

func (m *analyzerMock) Snapshot() engine.State {
	if m.SnapshotFunc == nil {
		return engine.State{}
	}
	return m.SnapshotFunc()
}

func (m *analyzerMock) StartCalls() []domain.AnalysisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AnalysisRequest(nil), m.startCalls...)
}

var _ learnerContext = &learnerContextMock{}

type learnerContextMock struct {
	RecentVocabularyFunc func(ctx context.Context) ([]string, error)
	FavoriteWordsFunc    func(ctx context.Context) ([]string, error)
}

func (m *learnerContextMock) RecentVocabulary(ctx context.Context) ([]string, error) {
	if m.RecentVocabularyFunc == nil {
		panic("learnerContextMock.RecentVocabularyFunc: method is nil but RecentVocabulary was just called")
	}
	return m.RecentVocabularyFunc(ctx)
}

func (m *learnerContextMock) FavoriteWords(ctx context.Context) ([]string, error) {
	if m.FavoriteWordsFunc == nil {
		panic("learnerContextMock.FavoriteWordsFunc: method is nil but FavoriteWords was just called")
	}
	return m.FavoriteWordsFunc(ctx)
}

var _ persister = &persisterMock{}

type persisterMock struct {
	PersistFunc func(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult) (*domain.WordbookEntry, error)

	mu    sync.Mutex
	calls []domain.AnalysisRequest
}

func (m *persisterMock) Persist(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult) (*domain.WordbookEntry, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.PersistFunc == nil {
		panic("persisterMock.PersistFunc: method is nil but Persist was just called")
	}
	return m.PersistFunc(ctx, req, result)
}

func (m *persisterMock) PersistCalls() []domain.AnalysisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AnalysisRequest(nil), m.calls...)
}
