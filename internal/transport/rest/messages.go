package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
	"github.com/heartmarshall/lexilens/pkg/ctxutil"
)

// coordinatorPort is the coordinator as seen by page-facing handlers.
type coordinatorPort interface {
	Send(ctx context.Context, msg protocol.Message) error
	Ask(ctx context.Context, msg protocol.Message) (protocol.Message, error)
}

// MessageHandler translates page and command requests into protocol messages.
type MessageHandler struct {
	coord coordinatorPort
	log   *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(coord coordinatorPort, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{coord: coord, log: logger.With("handler", "messages")}
}

type commandRequest struct {
	TabID     domain.TabID `json:"tabId"`
	Text      string       `json:"text"`
	SourceURL string       `json:"sourceUrl"`
}

// ReportSelection handles POST /v1/selections. The sending tab comes from
// the X-Tab-Id header.
func (h *MessageHandler) ReportSelection(w http.ResponseWriter, r *http.Request) {
	tab, ok := ctxutil.TabIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "X-Tab-Id header is required")
		return
	}

	var sel domain.SelectionEvent
	if err := decodeBody(w, r, &sel); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	msg := protocol.SelectionReported{TabID: domain.TabID(tab), Selection: sel}
	if err := msg.Validate(); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if err := h.coord.Send(r.Context(), msg); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// FocusTab handles POST /v1/tabs/{id}/focus.
func (h *MessageHandler) FocusTab(w http.ResponseWriter, r *http.Request) {
	tab, err := domain.ParseTabID(r.PathValue("id"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if err := h.coord.Send(r.Context(), protocol.TabFocusChanged{TabID: tab}); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TriggerCommand handles POST /v1/commands. The tab may be given in the body
// or in the X-Tab-Id header.
func (h *MessageHandler) TriggerCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if req.TabID == 0 {
		if tab, ok := ctxutil.TabIDFromCtx(r.Context()); ok {
			req.TabID = domain.TabID(tab)
		}
	}

	msg := protocol.ContextCommandTriggered{TabID: req.TabID, Text: req.Text, SourceURL: req.SourceURL}
	if err := msg.Validate(); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if err := h.coord.Send(r.Context(), msg); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SurfaceOpen handles GET /v1/surface/open.
func (h *MessageHandler) SurfaceOpen(w http.ResponseWriter, r *http.Request) {
	reply, err := h.coord.Ask(r.Context(), protocol.SurfaceIsOpen{})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	status, _ := reply.(protocol.SurfaceOpenStatus)
	writeJSON(w, http.StatusOK, status)
}

// LastSelection handles GET /v1/surface/last-selection?tabId=N. Without a
// tab id the frontmost tab is used.
func (h *MessageHandler) LastSelection(w http.ResponseWriter, r *http.Request) {
	var query protocol.SurfaceQueryLastSelection
	if raw := r.URL.Query().Get("tabId"); raw != "" {
		tab, err := domain.ParseTabID(raw)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		query.TabID = tab
	}

	reply, err := h.coord.Ask(r.Context(), query)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	last, _ := reply.(protocol.LastSelection)
	writeJSON(w, http.StatusOK, last)
}

// Dispatch handles POST /v1/messages: a raw protocol envelope. Page messages
// are queued and answered with 202, queries with the reply envelope. Surface
// lifecycle messages belong to the WebSocket port and are rejected.
func (h *MessageHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := protocol.Decode(raw)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	switch msg.(type) {
	case protocol.SelectionReported, protocol.TabFocusChanged, protocol.ContextCommandTriggered:
		if err := h.coord.Send(r.Context(), msg); err != nil {
			handleError(h.log, w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	case protocol.SurfaceIsOpen, protocol.SurfaceQueryLastSelection:
	default:
		writeError(w, http.StatusBadRequest, "message "+string(msg.Kind())+" is not accepted on this route")
		return
	}

	reply, err := h.coord.Ask(r.Context(), msg)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out, err := protocol.Encode(reply)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out) //nolint:errcheck
}
