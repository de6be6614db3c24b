package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexilens/internal/coordinator"
	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
	"github.com/heartmarshall/lexilens/pkg/ctxutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(method, target, body string, tab int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if tab > 0 {
		req = req.WithContext(ctxutil.WithTabID(req.Context(), tab))
	}
	return req
}

func TestReportSelection_Accepted(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{}
	h := NewMessageHandler(coord, discardLogger())

	body := `{"word":"precarious","context":"A precarious peace.","pageCategory":"news","sourceUrl":"https://bbc.com/n","interactionStrength":"strong"}`
	rec := httptest.NewRecorder()
	h.ReportSelection(rec, newRequest(http.MethodPost, "/v1/selections", body, 7))

	require.Equal(t, http.StatusAccepted, rec.Code)
	calls := coord.SendCalls()
	require.Len(t, calls, 1)
	msg, ok := calls[0].(protocol.SelectionReported)
	require.True(t, ok)
	assert.Equal(t, domain.TabID(7), msg.TabID)
	assert.Equal(t, "precarious", msg.Selection.Word)
	assert.Equal(t, domain.InteractionStrong, msg.Selection.Strength)
}

func TestReportSelection_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		tab    int
		status int
	}{
		{name: "missing tab", body: `{"word":"x","interactionStrength":"weak"}`, tab: 0, status: http.StatusBadRequest},
		{name: "bad json", body: `{`, tab: 1, status: http.StatusBadRequest},
		{name: "empty word", body: `{"word":" ","interactionStrength":"weak"}`, tab: 1, status: http.StatusBadRequest},
		{name: "bad strength", body: `{"word":"x","interactionStrength":"medium"}`, tab: 1, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			coord := &coordinatorPortMock{}
			h := NewMessageHandler(coord, discardLogger())

			rec := httptest.NewRecorder()
			h.ReportSelection(rec, newRequest(http.MethodPost, "/v1/selections", tt.body, tt.tab))

			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, coord.SendCalls())
		})
	}
}

func TestReportSelection_ValidationFieldsInBody(t *testing.T) {
	t.Parallel()
	h := NewMessageHandler(&coordinatorPortMock{}, discardLogger())

	rec := httptest.NewRecorder()
	h.ReportSelection(rec, newRequest(http.MethodPost, "/v1/selections", `{"word":"","interactionStrength":"weak"}`, 3))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "word", resp.Fields[0].Field)
}

func TestReportSelection_CoordinatorStopped(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{
		SendFunc: func(context.Context, protocol.Message) error { return coordinator.ErrStopped },
	}
	h := NewMessageHandler(coord, discardLogger())

	rec := httptest.NewRecorder()
	h.ReportSelection(rec, newRequest(http.MethodPost, "/v1/selections", `{"word":"x","interactionStrength":"weak"}`, 3))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFocusTab(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{}
	h := NewMessageHandler(coord, discardLogger())

	req := newRequest(http.MethodPost, "/v1/tabs/12/focus", "", 0)
	req.SetPathValue("id", "12")
	rec := httptest.NewRecorder()
	h.FocusTab(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, coord.SendCalls(), 1)
	assert.Equal(t, protocol.TabFocusChanged{TabID: 12}, coord.SendCalls()[0])

	bad := newRequest(http.MethodPost, "/v1/tabs/zero/focus", "", 0)
	bad.SetPathValue("id", "zero")
	rec = httptest.NewRecorder()
	h.FocusTab(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerCommand_TabFromHeader(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{}
	h := NewMessageHandler(coord, discardLogger())

	rec := httptest.NewRecorder()
	h.TriggerCommand(rec, newRequest(http.MethodPost, "/v1/commands", `{"text":"  break   down ","sourceUrl":"https://x.test"}`, 4))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, coord.SendCalls(), 1)
	msg := coord.SendCalls()[0].(protocol.ContextCommandTriggered)
	assert.Equal(t, domain.TabID(4), msg.TabID)
	assert.Equal(t, "break down", msg.Selection().Word)
}

func TestTriggerCommand_MissingTab(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{}
	h := NewMessageHandler(coord, discardLogger())

	rec := httptest.NewRecorder()
	h.TriggerCommand(rec, newRequest(http.MethodPost, "/v1/commands", `{"text":"word"}`, 0))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, coord.SendCalls())
}

func TestSurfaceOpen(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{
		AskFunc: func(_ context.Context, msg protocol.Message) (protocol.Message, error) {
			assert.Equal(t, protocol.SurfaceIsOpen{}, msg)
			return protocol.SurfaceOpenStatus{Open: true}, nil
		},
	}
	h := NewMessageHandler(coord, discardLogger())

	rec := httptest.NewRecorder()
	h.SurfaceOpen(rec, newRequest(http.MethodGet, "/v1/surface/open", "", 0))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"open":true}`, rec.Body.String())
}

func TestLastSelection(t *testing.T) {
	t.Parallel()
	sel := domain.SelectionEvent{Word: "w", Context: "c", PageCategory: domain.PageCategoryOther, Strength: domain.InteractionStrong}
	coord := &coordinatorPortMock{
		AskFunc: func(_ context.Context, msg protocol.Message) (protocol.Message, error) {
			q := msg.(protocol.SurfaceQueryLastSelection)
			if q.TabID == 9 {
				return protocol.LastSelection{Selection: &sel}, nil
			}
			return protocol.LastSelection{}, nil
		},
	}
	h := NewMessageHandler(coord, discardLogger())

	rec := httptest.NewRecorder()
	h.LastSelection(rec, newRequest(http.MethodGet, "/v1/surface/last-selection?tabId=9", "", 0))
	require.Equal(t, http.StatusOK, rec.Code)
	var got protocol.LastSelection
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.NotNil(t, got.Selection)
	assert.Equal(t, "w", got.Selection.Word)

	rec = httptest.NewRecorder()
	h.LastSelection(rec, newRequest(http.MethodGet, "/v1/surface/last-selection", "", 0))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selection":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.LastSelection(rec, newRequest(http.MethodGet, "/v1/surface/last-selection?tabId=-1", "", 0))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatch(t *testing.T) {
	t.Parallel()
	coord := &coordinatorPortMock{
		AskFunc: func(context.Context, protocol.Message) (protocol.Message, error) {
			return protocol.SurfaceOpenStatus{Open: false}, nil
		},
	}
	h := NewMessageHandler(coord, discardLogger())

	t.Run("page message is queued", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Dispatch(rec, newRequest(http.MethodPost, "/v1/messages", `{"type":"tab-focus-changed","data":{"tabId":3}}`, 0))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("query returns reply envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Dispatch(rec, newRequest(http.MethodPost, "/v1/messages", `{"type":"surface-is-open"}`, 0))
		require.Equal(t, http.StatusOK, rec.Code)
		reply, err := protocol.Decode(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, protocol.SurfaceOpenStatus{Open: false}, reply)
	})

	t.Run("unknown kind", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Dispatch(rec, newRequest(http.MethodPost, "/v1/messages", `{"type":"teleport"}`, 0))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("surface lifecycle rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Dispatch(rec, newRequest(http.MethodPost, "/v1/messages", `{"type":"surface-connected"}`, 0))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Len(t, coord.SendCalls(), 1)
}
