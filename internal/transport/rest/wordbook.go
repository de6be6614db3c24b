package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
)

type wordbookService interface {
	Entries(ctx context.Context, filter domain.WordbookFilter) ([]domain.WordbookEntry, error)
	Entry(ctx context.Context, word string) (*domain.WordbookEntry, error)
	SetFavorite(ctx context.Context, word string, favorite bool) error
	History(ctx context.Context, limit int) ([]domain.LearningHistoryEntry, error)
}

// WordbookHandler serves read access to the wordbook and favorite toggling.
type WordbookHandler struct {
	svc wordbookService
	log *slog.Logger
}

// NewWordbookHandler creates a WordbookHandler.
func NewWordbookHandler(svc wordbookService, logger *slog.Logger) *WordbookHandler {
	return &WordbookHandler{svc: svc, log: logger.With("handler", "wordbook")}
}

type entryResponse struct {
	Word           string             `json:"word"`
	Stage          int                `json:"stage"`
	IsFavorite     bool               `json:"isFavorite"`
	LastReviewedAt *time.Time         `json:"lastReviewedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	Snapshots      []snapshotResponse `json:"snapshots,omitempty"`
}

type snapshotResponse struct {
	Context      string                `json:"context"`
	PageCategory domain.PageCategory   `json:"pageCategory"`
	SourceURL    string                `json:"sourceUrl,omitempty"`
	Analysis     domain.AnalysisResult `json:"analysis"`
	CreatedAt    time.Time             `json:"createdAt"`
}

type historyResponse struct {
	Word      string    `json:"word"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// List handles GET /v1/wordbook?favorites=true&limit=50.
func (h *WordbookHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.WordbookFilter{
		FavoritesOnly: r.URL.Query().Get("favorites") == "true",
		Limit:         queryInt(r, "limit", 0),
	}

	entries, err := h.svc.Entries(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /v1/wordbook/{word}.
func (h *WordbookHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Entry(r.Context(), r.PathValue("word"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// SetFavorite handles PUT /v1/wordbook/{word}/favorite.
func (h *WordbookHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if err := h.svc.SetFavorite(r.Context(), r.PathValue("word"), req.Favorite); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /v1/history?limit=20.
func (h *WordbookHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.History(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]historyResponse, 0, len(items))
	for _, it := range items {
		out = append(out, historyResponse{Word: it.Word, Context: it.Context, CreatedAt: it.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func toEntryResponse(e *domain.WordbookEntry) entryResponse {
	resp := entryResponse{
		Word:           e.Word,
		Stage:          e.Stage,
		IsFavorite:     e.IsFavorite,
		LastReviewedAt: e.LastReviewedAt,
		CreatedAt:      e.CreatedAt,
	}
	for _, s := range e.Snapshots {
		resp.Snapshots = append(resp.Snapshots, snapshotResponse{
			Context:      s.Context,
			PageCategory: s.PageCategory,
			SourceURL:    s.SourceURL,
			Analysis:     s.Analysis,
			CreatedAt:    s.CreatedAt,
		})
	}
	return resp
}

// queryInt returns a positive integer query parameter or def.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
