// Package analysis is the HTTP client of the remote analysis service: the
// layered event stream, the deferred layer endpoints and pronunciation.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
)

const (
	pathAnalyze       = "/api/analyze"
	pathMistakes      = "/api/analyze/mistakes"
	pathLexicalMap    = "/api/lexical-map/text"
	pathPronunciation = "/api/pronunciation/"

	// maxErrorBody bounds how much of an error response is kept for logs.
	maxErrorBody = 512
)

// Config configures a Client.
type Config struct {
	BaseURL string
	// StreamTimeout bounds a whole analysis stream. Zero means no limit.
	StreamTimeout  time.Duration
	RequestTimeout time.Duration
}

// Client talks to the analysis service. It is safe for concurrent use.
type Client struct {
	baseURL string
	stream  *http.Client
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		stream:  &http.Client{Timeout: cfg.StreamTimeout},
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		log:     logger.With("adapter", "analysis"),
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// OpenStream starts the layered analysis stream. The caller must close the
// returned body; cancelling ctx aborts the stream.
func (c *Client) OpenStream(ctx context.Context, req domain.AnalysisRequest) (io.ReadCloser, error) {
	c.log.DebugContext(ctx, "analysis stream request",
		slog.String("word", req.Word),
		slog.Any("layers", req.RequestedLayers()),
	)

	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, pathAnalyze, newAnalyzeRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis: open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("analysis: open stream: %w", statusError(resp))
	}
	return resp.Body, nil
}

// FetchMistakes requests Layer 3 on its own.
func (c *Client) FetchMistakes(ctx context.Context, req domain.AnalysisRequest) ([]domain.CommonMistake, error) {
	var out mistakesResponse
	if err := c.postJSON(ctx, pathMistakes, newAnalyzeRequest(req, false), &out); err != nil {
		return nil, fmt.Errorf("analysis: fetch mistakes: %w", err)
	}

	mistakes := make([]domain.CommonMistake, 0, len(out.Mistakes))
	for _, m := range out.Mistakes {
		mistakes = append(mistakes, domain.CommonMistake(m))
	}
	return mistakes, nil
}

// FetchLexicalMap requests Layer 4 on its own.
func (c *Client) FetchLexicalMap(ctx context.Context, req domain.AnalysisRequest) (*domain.LexicalMap, error) {
	var out lexicalMapResponse
	if err := c.postJSON(ctx, pathLexicalMap, newAnalyzeRequest(req, false), &out); err != nil {
		return nil, fmt.Errorf("analysis: fetch lexical map: %w", err)
	}

	lm := &domain.LexicalMap{RelatedItems: make([]domain.RelatedWord, 0, len(out.RelatedWords))}
	for _, rw := range out.RelatedWords {
		lm.RelatedItems = append(lm.RelatedItems, domain.RelatedWord{
			Word:          rw.Word,
			Relationship:  rw.Relationship,
			KeyDifference: rw.Difference,
			WhenToUse:     rw.WhenToUse,
		})
	}
	if out.Personalized != nil {
		lm.PersonalizedNote = strings.TrimSpace(*out.Personalized)
	}
	return lm, nil
}

// FetchPronunciation looks up the headword through the service.
// Returns nil, nil if the service has no data for the word.
func (c *Client) FetchPronunciation(ctx context.Context, word string) (*domain.Pronunciation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathPronunciation+url.PathEscape(word), nil)
	if err != nil {
		return nil, fmt.Errorf("analysis: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: fetch pronunciation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis: fetch pronunciation: %w", statusError(resp))
	}

	var out pronunciationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("analysis: decode pronunciation: %w", err)
	}

	p := &domain.Pronunciation{IPA: strings.Trim(out.IPA, "/")}
	if p.IPA == "N/A" {
		p.IPA = ""
	}
	if out.AudioURL != nil {
		p.AudioURL = *out.AudioURL
	}
	if p.IPA == "" && p.AudioURL == "" {
		return nil, nil
	}
	return p, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
