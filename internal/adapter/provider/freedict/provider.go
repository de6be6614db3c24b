package freedict

import (
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

const defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// dictEntry is one element of the response array; the API returns one per
// etymology and only the phonetic fields are read.
type dictEntry struct {
	Word      string         `json:"word"`
	Phonetic  string         `json:"phonetic"`
	Phonetics []dictPhonetic `json:"phonetics"`
}

type dictPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

// Provider fetches pronunciation data from the FreeDictionary API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	log        *slog.Logger
}

// NewProvider creates a Provider with the default FreeDictionary API URL.
func NewProvider(logger *slog.Logger) *Provider {
	return NewProviderWithURL(defaultBaseURL, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL.
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retryDelay: 500 * time.Millisecond,
		log:        logger.With("adapter", "freedict"),
	}
}

// FetchPronunciation returns the first IPA transcription and the first audio
// URL of the word's first entry. Returns nil, nil if the word is not found
// (HTTP 404) or has no phonetic data.
func (p *Provider) FetchPronunciation(ctx context.Context, word string) (*domain.Pronunciation, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, word)
	if err != nil {
		p.log.WarnContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freedict: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []dictEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}

	result := pickPronunciation(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Bool("found", result != nil),
	)

	return result, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, ctx.Err()
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "freedict retry", slog.String("word", word), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.retryDelay):
	}

	return p.httpClient.Do(req)
}

// pickPronunciation picks pronunciation data from the first entry: the first
// non-empty transcription and the first non-empty audio URL, falling back to
// the entry-level phonetic when no phonetics item carries text.
func pickPronunciation(entries []dictEntry) *domain.Pronunciation {
	if len(entries) == 0 {
		return nil
	}
	entry := entries[0]

	var ipa, audio string
	for _, ph := range entry.Phonetics {
		if ipa == "" && ph.Text != "" {
			ipa = ph.Text
		}
		if audio == "" && ph.Audio != "" {
			audio = ph.Audio
		}
		if ipa != "" && audio != "" {
			break
		}
	}
	if ipa == "" {
		ipa = entry.Phonetic
	}

	ipa = strings.Trim(strings.TrimSpace(ipa), "/")
	if ipa == "" && audio == "" {
		return nil
	}

	return &domain.Pronunciation{
		IPA:      ipa,
		AudioURL: audio,
		Region:   inferRegion(audio),
	}
}

// inferRegion attempts to determine the pronunciation region from the audio URL.
func inferRegion(audioURL string) string {
	lower := strings.ToLower(audioURL)
	if strings.Contains(lower, "-us.") || strings.Contains(lower, "-us-") {
		return "US"
	}
	if strings.Contains(lower, "-uk.") || strings.Contains(lower, "-uk-") {
		return "UK"
	}
	return ""
}
