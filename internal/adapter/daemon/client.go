// Package daemon is the client side of the lexilensd ports: the REST routes
// used to report page activity and the surface WebSocket.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

const (
	pathSelections    = "/v1/selections"
	pathCommands      = "/v1/commands"
	pathSurfaceOpen   = "/v1/surface/open"
	pathLastSelection = "/v1/surface/last-selection"

	tabHeader    = "X-Tab-Id"
	maxErrorBody = 512
)

// ErrUnavailable is returned when the daemon cannot be reached.
var ErrUnavailable = errors.New("daemon unavailable")

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the daemon REST routes. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger.With("adapter", "daemon"),
	}
}

// StatusError is returned for non-2xx responses. Message is the "error"
// field of the daemon's JSON body when present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon: %d %s", e.StatusCode, e.Message)
}

// ReportSelection posts a coalesced selection on behalf of a tab.
func (c *Client) ReportSelection(ctx context.Context, msg protocol.SelectionReported) error {
	header := http.Header{}
	header.Set(tabHeader, msg.TabID.String())
	return c.do(ctx, http.MethodPost, pathSelections, header, msg.Selection, nil)
}

// FocusTab reports that tab became the frontmost tab.
func (c *Client) FocusTab(ctx context.Context, tab domain.TabID) error {
	return c.do(ctx, http.MethodPost, "/v1/tabs/"+tab.String()+"/focus", nil, nil, nil)
}

// TriggerCommand sends an explicit analyze command.
func (c *Client) TriggerCommand(ctx context.Context, msg protocol.ContextCommandTriggered) error {
	return c.do(ctx, http.MethodPost, pathCommands, nil, msg, nil)
}

// SurfaceOpen reports whether a display surface is connected.
func (c *Client) SurfaceOpen(ctx context.Context) (bool, error) {
	var out protocol.SurfaceOpenStatus
	if err := c.do(ctx, http.MethodGet, pathSurfaceOpen, nil, nil, &out); err != nil {
		return false, err
	}
	return out.Open, nil
}

// LastSelection returns the selection a surface opened for tab should show.
// A zero tab asks for the frontmost tab.
func (c *Client) LastSelection(ctx context.Context, tab domain.TabID) (*domain.SelectionEvent, error) {
	path := pathLastSelection
	if tab > 0 {
		path += "?" + url.Values{"tabId": {tab.String()}}.Encode()
	}
	var out protocol.LastSelection
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Selection, nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("daemon: encode json: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("daemon: create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.DebugContext(ctx, "daemon request failed", slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("daemon: decode json: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
