// Package surface implements the display-surface side of the system: it turns
// accepted selections into analysis requests, drops duplicates, replays the
// last selection when the surface opens and persists finished analyses.
package surface

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/engine"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

// analyzer is the streaming engine as driven by the surface.
type analyzer interface {
	Start(ctx context.Context, req domain.AnalysisRequest) (*engine.Run, error)
	Snapshot() engine.State
}

// learnerContext supplies the personalization read from the wordbook.
type learnerContext interface {
	RecentVocabulary(ctx context.Context) ([]string, error)
	FavoriteWords(ctx context.Context) ([]string, error)
}

// Feed delivers selections to an open surface.
type Feed interface {
	// LastSelection asks which selection the surface should show on open.
	LastSelection(ctx context.Context, tab domain.TabID) (*domain.SelectionEvent, error)
	// Next blocks until the coordinator pushes a freshly accepted selection.
	Next(ctx context.Context) (protocol.SelectionAccepted, error)
}

// Options configures a Controller.
type Options struct {
	Profile domain.LearnerProfile
	// Layers overrides the layers requested from the stream. Empty means
	// the request default.
	Layers []int
}

// Controller owns the engine of one display surface. It is safe for
// concurrent use.
type Controller struct {
	log     *slog.Logger
	engine  analyzer
	learner learnerContext
	opts    Options

	mu      sync.Mutex
	shown   *domain.SelectionEvent
	lastReq *domain.AnalysisRequest
}

// New creates a Controller. learner may be nil when no wordbook is configured.
func New(log *slog.Logger, eng analyzer, learner learnerContext, opts Options) *Controller {
	return &Controller{
		log:     log.With("service", "surface"),
		engine:  eng,
		learner: learner,
		opts:    opts,
	}
}

// Show analyzes evt unless it carries the same word and context as the
// selection already shown and that analysis has not failed. It reports
// whether a new analysis was started.
func (c *Controller) Show(ctx context.Context, evt domain.SelectionEvent) (*engine.Run, bool, error) {
	evt = evt.Normalized()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shown != nil && c.shown.SameContent(evt) && resumable(c.engine.Snapshot()) {
		c.log.DebugContext(ctx, "duplicate selection ignored", slog.String("word", evt.Word))
		return nil, false, nil
	}

	req := c.BuildRequest(ctx, evt)
	run, err := c.engine.Start(ctx, req)
	if err != nil {
		return nil, false, fmt.Errorf("start analysis: %w", err)
	}

	c.shown = &evt
	c.lastReq = &req
	return run, true, nil
}

// resumable reports whether the current run still stands for its selection:
// it is streaming or has finished without an error or an interruption.
func resumable(s engine.State) bool {
	return s.Error == "" && !s.Interrupted
}

// Retry re-issues the last request exactly as it was sent.
func (c *Controller) Retry(ctx context.Context) (*engine.Run, error) {
	c.mu.Lock()
	req := c.lastReq
	c.mu.Unlock()
	if req == nil {
		return nil, domain.ErrNoRequest
	}

	run, err := c.engine.Start(ctx, *req)
	if err != nil {
		return nil, fmt.Errorf("retry analysis: %w", err)
	}
	c.log.InfoContext(ctx, "analysis retried", slog.String("word", req.Word))
	return run, nil
}

// BuildRequest derives the outbound request from a selection, the learner
// profile and the wordbook. Wordbook failures are logged and leave the
// personalization lists empty.
func (c *Controller) BuildRequest(ctx context.Context, evt domain.SelectionEvent) domain.AnalysisRequest {
	req := c.opts.Profile.Apply(domain.NewAnalysisRequest(evt))
	req.Layers = slices.Clone(c.opts.Layers)

	if c.learner == nil {
		return req
	}
	if words, err := c.learner.RecentVocabulary(ctx); err != nil {
		c.log.WarnContext(ctx, "recent vocabulary unavailable", slog.String("error", err.Error()))
	} else {
		req.RecentVocabulary = words
	}
	if words, err := c.learner.FavoriteWords(ctx); err != nil {
		c.log.WarnContext(ctx, "favorite words unavailable", slog.String("error", err.Error()))
	} else {
		req.FavoriteWords = words
	}
	return req
}

// Serve replays the last selection for tab, then analyzes every selection
// the feed delivers until ctx is done or the feed fails.
func (c *Controller) Serve(ctx context.Context, feed Feed, tab domain.TabID) error {
	last, err := feed.LastSelection(ctx, tab)
	if err != nil {
		return fmt.Errorf("query last selection: %w", err)
	}
	if last != nil {
		c.show(ctx, *last)
	}

	for {
		msg, err := feed.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive selection: %w", err)
		}
		c.show(ctx, msg.Selection)
	}
}

func (c *Controller) show(ctx context.Context, evt domain.SelectionEvent) {
	if _, _, err := c.Show(ctx, evt); err != nil {
		c.log.WarnContext(ctx, "selection not analyzed",
			slog.String("word", evt.Word),
			slog.String("error", err.Error()),
		)
	}
}
