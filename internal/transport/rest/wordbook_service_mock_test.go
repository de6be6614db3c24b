package rest

import (
	"context"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// wordbookServiceMock is a moq-style mock of wordbookService.
type wordbookServiceMock struct {
	EntriesFunc     func(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error)
	EntryFunc       func(ctx context.Context, word string) (*domain.WordbookEntry, error)
	SetFavoriteFunc func(ctx context.Context, word string, favorite bool) error
	HistoryFunc     func(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error)
}

func (m *wordbookServiceMock) Entries(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error) {
	if m.EntriesFunc == nil {
		panic("wordbookServiceMock.EntriesFunc: method is nil but Entries was just called")
	}
	return m.EntriesFunc(ctx, filter)
}

func (m *wordbookServiceMock) Entry(ctx context.Context, word string) (*domain.WordbookEntry, error) {
	if m.EntryFunc == nil {
		panic("wordbookServiceMock.EntryFunc: method is nil but Entry was just called")
	}
	return m.EntryFunc(ctx, word)
}

func (m *wordbookServiceMock) SetFavorite(ctx context.Context, word string, favorite bool) error {
	if m.SetFavoriteFunc == nil {
		panic("wordbookServiceMock.SetFavoriteFunc: method is nil but SetFavorite was just called")
	}
	return m.SetFavoriteFunc(ctx, word, favorite)
}

func (m *wordbookServiceMock) History(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error) {
	if m.HistoryFunc == nil {
		panic("wordbookServiceMock.HistoryFunc: method is nil but History was just called")
	}
	return m.HistoryFunc(ctx, limit)
}
