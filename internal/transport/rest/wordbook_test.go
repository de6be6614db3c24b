package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexilens/internal/domain"
)

func TestWordbook_List(t *testing.T) {
	t.Parallel()
	var gotFilter domain.WordbookFilter
	svc := &wordbookServiceMock{
		EntriesFunc: func(_ context.Context, f domain.WordbookFilter) ([]domain.WordbookEntry, error) {
			gotFilter = f
			return []domain.WordbookEntry{{Word: "precarious", Stage: 2, IsFavorite: true}}, nil
		},
	}
	h := NewWordbookHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/v1/wordbook?favorites=true&limit=5", "", 0))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.WordbookFilter{FavoritesOnly: true, Limit: 5}, gotFilter)

	var got []entryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "precarious", got[0].Word)
	assert.True(t, got[0].IsFavorite)
}

func TestWordbook_Get(t *testing.T) {
	t.Parallel()
	svc := &wordbookServiceMock{
		EntryFunc: func(_ context.Context, word string) (*domain.WordbookEntry, error) {
			if word != "precarious" {
				return nil, fmt.Errorf("entry: %w", domain.ErrNotFound)
			}
			return &domain.WordbookEntry{
				Word:  "precarious",
				Stage: 3,
				Snapshots: []domain.WordbookSnapshot{{
					Context:      "ctx",
					PageCategory: domain.PageCategoryNews,
					Analysis:     domain.AnalysisResult{Headword: "precarious"},
					CreatedAt:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
				}},
			}, nil
		},
	}
	h := NewWordbookHandler(svc, discardLogger())

	req := newRequest(http.MethodGet, "/v1/wordbook/precarious", "", 0)
	req.SetPathValue("word", "precarious")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got entryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Snapshots, 1)
	assert.Equal(t, "precarious", got.Snapshots[0].Analysis.Headword)

	missing := newRequest(http.MethodGet, "/v1/wordbook/nope", "", 0)
	missing.SetPathValue("word", "nope")
	rec = httptest.NewRecorder()
	h.Get(rec, missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWordbook_SetFavorite(t *testing.T) {
	t.Parallel()
	var (
		gotWord string
		gotFav  bool
	)
	svc := &wordbookServiceMock{
		SetFavoriteFunc: func(_ context.Context, word string, fav bool) error {
			gotWord, gotFav = word, fav
			return nil
		},
	}
	h := NewWordbookHandler(svc, discardLogger())

	req := newRequest(http.MethodPut, "/v1/wordbook/Serendipity/favorite", `{"favorite":true}`, 0)
	req.SetPathValue("word", "Serendipity")
	rec := httptest.NewRecorder()
	h.SetFavorite(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Serendipity", gotWord)
	assert.True(t, gotFav)
}

func TestWordbook_History(t *testing.T) {
	t.Parallel()
	svc := &wordbookServiceMock{
		HistoryFunc: func(_ context.Context, limit int) ([]domain.LearningHistoryEntry, error) {
			assert.Equal(t, 0, limit, "invalid limit falls back to the service default")
			return []domain.LearningHistoryEntry{{Word: "alpha", Context: "a"}}, nil
		},
	}
	h := NewWordbookHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.History(rec, newRequest(http.MethodGet, "/v1/history?limit=abc", "", 0))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []historyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Word)
}

func TestWordbook_InternalError(t *testing.T) {
	t.Parallel()
	svc := &wordbookServiceMock{
		HistoryFunc: func(context.Context, int) ([]domain.LearningHistoryEntry, error) {
			return nil, errors.New("disk on fire")
		},
	}
	h := NewWordbookHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.History(rec, newRequest(http.MethodGet, "/v1/history", "", 0))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}
