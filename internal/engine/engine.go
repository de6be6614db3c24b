// Package engine consumes the analysis event stream and assembles the layered
// AnalysisResult. At most one stream is active per Engine: starting a new
// analysis supersedes the previous one, and every merge is applied only if
// the stream that produced it is still current.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// Client opens the analysis stream and fetches deferred layers.
type Client interface {
	OpenStream(ctx context.Context, req domain.AnalysisRequest) (io.ReadCloser, error)
	FetchMistakes(ctx context.Context, req domain.AnalysisRequest) ([]domain.CommonMistake, error)
	FetchLexicalMap(ctx context.Context, req domain.AnalysisRequest) (*domain.LexicalMap, error)
}

// Pronouncer looks up pronunciation data for a headword.
type Pronouncer interface {
	FetchPronunciation(ctx context.Context, word string) (*domain.Pronunciation, error)
}

// CompletionFunc is called once per stream that ends naturally, with the
// request and the result as of stream end.
type CompletionFunc func(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult)

// UpdateFunc receives a snapshot after every state change, in order. It must
// not call back into the Engine.
type UpdateFunc func(State)

// State is the public engine state handed to renderers.
type State struct {
	Seq               uint64
	Request           *domain.AnalysisRequest
	Result            *domain.AnalysisResult
	Loading           bool
	MistakesLoading   bool
	LexicalMapLoading bool
	Error             string
	// Interrupted is set when the current stream ended because the caller's
	// context was cancelled rather than by a newer request or Stop.
	Interrupted bool
}

// Options configures an Engine. All fields are optional.
type Options struct {
	OnUpdate   UpdateFunc
	OnComplete CompletionFunc
	Now        func() time.Time
}

type cursor struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
	req    domain.AnalysisRequest

	layer1     strings.Builder
	layer4Note strings.Builder
}

// Engine is safe for concurrent use.
type Engine struct {
	log        *slog.Logger
	client     Client
	pronouncer Pronouncer
	onUpdate   UpdateFunc
	onComplete CompletionFunc
	now        func() time.Time

	mu    sync.Mutex
	seq   uint64
	cur   *cursor
	state State

	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

// New creates an Engine. pronouncer may be nil.
func New(log *slog.Logger, client Client, pronouncer Pronouncer, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		log:        log.With("service", "engine"),
		client:     client,
		pronouncer: pronouncer,
		onUpdate:   opts.OnUpdate,
		onComplete: opts.OnComplete,
		now:        now,
	}
}

// Run is a handle to one started analysis.
type Run struct {
	Seq  uint64
	done chan struct{}
}

// Done is closed when the stream has ended and its completion callback, if
// any, has returned.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the stream has ended or ctx is done.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start supersedes the current analysis, if any, and starts streaming req.
// The result is seeded with the headword before Start returns.
func (e *Engine) Start(ctx context.Context, req domain.AnalysisRequest) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.cur != nil {
		e.cur.cancel()
	}
	e.seq++
	c := &cursor{seq: e.seq, ctx: runCtx, cancel: cancel, req: req}
	e.cur = c
	reqCopy := req
	e.state = State{
		Seq:     c.seq,
		Request: &reqCopy,
		Result:  &domain.AnalysisResult{Headword: req.Word},
		Loading: true,
	}
	snap := e.snapshotLocked()
	e.notifyMu.Lock()
	e.mu.Unlock()
	e.emit(snap)

	e.log.DebugContext(ctx, "analysis started",
		slog.Uint64("seq", c.seq),
		slog.String("word", req.Word),
	)

	run := &Run{Seq: c.seq, done: make(chan struct{})}

	if e.pronouncer != nil {
		e.wg.Add(1)
		go e.fetchPronunciation(c)
	}

	e.wg.Add(1)
	go e.stream(c, run.done)

	return run, nil
}

// Stop cancels the current analysis without reporting an error.
func (e *Engine) Stop() {
	e.mu.Lock()
	c := e.cur
	if c == nil {
		e.mu.Unlock()
		return
	}
	c.cancel()
	e.cur = nil
	e.state.Loading = false
	e.state.MistakesLoading = false
	e.state.LexicalMapLoading = false
	snap := e.snapshotLocked()
	e.notifyMu.Lock()
	e.mu.Unlock()
	e.emit(snap)
}

// Close stops the current analysis and waits for background work to finish.
func (e *Engine) Close() {
	e.Stop()
	e.wg.Wait()
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// RequestMistakes fetches Layer 3 for the current request on demand.
func (e *Engine) RequestMistakes(ctx context.Context) error {
	c, err := e.beginDeferred(func(s *State) { s.MistakesLoading = true })
	if err != nil {
		return err
	}

	ctx, stop := withCursor(ctx, c)
	defer stop()

	mistakes, err := e.client.FetchMistakes(ctx, c.req)
	if err != nil {
		e.failDeferred(c, err, func(s *State) { s.MistakesLoading = false })
		return fmt.Errorf("fetch mistakes: %w", err)
	}

	e.apply(c, func(s *State) {
		s.Result.Layer3 = mistakes
		s.MistakesLoading = false
	})
	return nil
}

// RequestLexicalMap fetches Layer 4 for the current request on demand. A
// personalized note already streamed for this request is kept.
func (e *Engine) RequestLexicalMap(ctx context.Context) error {
	c, err := e.beginDeferred(func(s *State) { s.LexicalMapLoading = true })
	if err != nil {
		return err
	}

	ctx, stop := withCursor(ctx, c)
	defer stop()

	lm, err := e.client.FetchLexicalMap(ctx, c.req)
	if err != nil {
		e.failDeferred(c, err, func(s *State) { s.LexicalMapLoading = false })
		return fmt.Errorf("fetch lexical map: %w", err)
	}

	e.apply(c, func(s *State) {
		if lm != nil {
			e.mergeLexicalMap(c, s, lm.RelatedItems, lm.PersonalizedNote)
		}
		s.LexicalMapLoading = false
	})
	return nil
}

func (e *Engine) beginDeferred(mark func(*State)) (*cursor, error) {
	e.mu.Lock()
	c := e.cur
	if c == nil {
		e.mu.Unlock()
		return nil, domain.ErrNoRequest
	}
	mark(&e.state)
	snap := e.snapshotLocked()
	e.notifyMu.Lock()
	e.mu.Unlock()
	e.emit(snap)
	return c, nil
}

func (e *Engine) failDeferred(c *cursor, err error, clear func(*State)) {
	if isCancellation(c, err) {
		e.apply(c, clear)
		return
	}
	e.log.Warn("deferred layer failed", slog.Uint64("seq", c.seq), slog.String("error", err.Error()))
	e.apply(c, func(s *State) {
		clear(s)
		s.Error = defaultLayerErrorMessage
	})
}

// withCursor derives a context that is also cancelled when c is superseded.
func withCursor(ctx context.Context, c *cursor) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (e *Engine) fetchPronunciation(c *cursor) {
	defer e.wg.Done()

	p, err := e.pronouncer.FetchPronunciation(c.ctx, c.req.Word)
	if err != nil {
		if !isCancellation(c, err) {
			e.log.Debug("pronunciation unavailable",
				slog.String("word", c.req.Word),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if p == nil {
		return
	}
	e.apply(c, func(s *State) { s.Result.Pronunciation = p })
}

func (e *Engine) stream(c *cursor, done chan struct{}) {
	defer e.wg.Done()
	defer close(done)

	body, err := e.client.OpenStream(c.ctx, c.req)
	if err != nil {
		e.fail(c, err)
		return
	}
	defer body.Close()
	stopClose := context.AfterFunc(c.ctx, func() { _ = body.Close() })
	defer stopClose()

	dec := NewDecoder(body, e.log.With("seq", c.seq))
	for {
		evt, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.fail(c, err)
			return
		}
		if !e.apply(c, func(s *State) { e.dispatch(c, s, evt) }) {
			return
		}
	}
	if err := c.ctx.Err(); err != nil {
		e.fail(c, err)
		return
	}

	if !e.apply(c, func(s *State) { s.Loading = false }) {
		return
	}

	e.log.Debug("analysis completed", slog.Uint64("seq", c.seq), slog.String("word", c.req.Word))

	if e.onComplete != nil {
		snap := e.Snapshot()
		if snap.Seq == c.seq {
			e.onComplete(context.WithoutCancel(c.ctx), c.req, snap.Result)
		}
	}
}

// fail handles a transport error. Cancellation reports no error; a cursor
// that is still current only has its loading flag cleared.
func (e *Engine) fail(c *cursor, err error) {
	if isCancellation(c, err) {
		e.apply(c, func(s *State) {
			s.Loading = false
			s.Interrupted = true
		})
		return
	}
	e.log.Warn("analysis stream failed",
		slog.Uint64("seq", c.seq),
		slog.String("word", c.req.Word),
		slog.String("error", err.Error()),
	)
	e.apply(c, func(s *State) {
		s.Error = transportErrorMessage
		s.Loading = false
	})
}

func isCancellation(c *cursor, err error) bool {
	return errors.Is(err, context.Canceled) || c.ctx.Err() != nil
}

// dispatch merges one event into s. Called with e.mu held.
func (e *Engine) dispatch(c *cursor, s *State, evt Event) {
	r := s.Result

	switch evt.Name {
	case EventLayer1Chunk:
		var p contentPayload
		if !decode(evt.Data, &p) {
			return
		}
		c.layer1.WriteString(p.Content)
		r.Layer1 = &domain.BehaviorPattern{Text: c.layer1.String(), LastUpdatedAt: e.now()}

	case EventLayer1Complete:
		if c.layer1.Len() == 0 {
			var p contentPayload
			if decode(evt.Data, &p) {
				c.layer1.WriteString(p.Content)
			}
		}
		if c.layer1.Len() > 0 {
			r.Layer1 = &domain.BehaviorPattern{Text: c.layer1.String(), LastUpdatedAt: e.now()}
		}

	case EventLayer2:
		var p layer2Payload
		if !decode(evt.Data, &p) {
			return
		}
		r.Layer2 = toLiveContexts(p, c.req.Word)

	case EventLayer3:
		var p layer3Payload
		if !decode(evt.Data, &p) {
			return
		}
		r.Layer3 = toMistakes(p)

	case EventLayer4PersonalizedChunk:
		var p contentPayload
		if !decode(evt.Data, &p) || p.Content == "" {
			return
		}
		c.layer4Note.WriteString(p.Content)
		var items []domain.RelatedWord
		if r.Layer4 != nil {
			items = r.Layer4.RelatedItems
		}
		r.Layer4 = &domain.LexicalMap{RelatedItems: items, PersonalizedNote: c.layer4Note.String()}

	case EventLayer4:
		var p layer4Payload
		if !decode(evt.Data, &p) {
			return
		}
		note := ""
		if p.Personalized != nil {
			note = *p.Personalized
		}
		e.mergeLexicalMap(c, s, toRelatedWords(p), note)

	case EventLayer2Error, EventLayer3Error, EventLayer4Error, EventError:
		msg := defaultLayerErrorMessage
		var p errorPayload
		if decode(evt.Data, &p) && p.Error != "" {
			msg = p.Error
		}
		e.log.Warn("analysis layer error", slog.Uint64("seq", c.seq), slog.String("event", evt.Name))
		s.Error = msg

	case EventDone:
		s.Loading = false

	default:
		e.log.Debug("ignoring unknown event", slog.String("event", evt.Name))
	}
}

// mergeLexicalMap replaces the related items and picks the personalized note:
// streamed text first, then a note already present, then the given fallback.
func (e *Engine) mergeLexicalMap(c *cursor, s *State, items []domain.RelatedWord, fallback string) {
	note := c.layer4Note.String()
	if note == "" && s.Result.Layer4 != nil {
		note = strings.TrimSpace(s.Result.Layer4.PersonalizedNote)
	}
	if note == "" {
		note = fallback
	}
	s.Result.Layer4 = &domain.LexicalMap{RelatedItems: items, PersonalizedNote: note}
}

// apply runs fn on the state if c is still the current cursor, then notifies
// the listener. It reports whether fn ran.
func (e *Engine) apply(c *cursor, fn func(*State)) bool {
	e.mu.Lock()
	if e.cur != c {
		e.mu.Unlock()
		return false
	}
	fn(&e.state)
	snap := e.snapshotLocked()
	e.notifyMu.Lock()
	e.mu.Unlock()
	e.emit(snap)
	return true
}

// emit delivers snap and releases notifyMu, which the caller acquired while
// still holding mu so that listeners observe changes in order.
func (e *Engine) emit(snap State) {
	defer e.notifyMu.Unlock()
	if e.onUpdate != nil {
		e.onUpdate(snap)
	}
}

func (e *Engine) snapshotLocked() State {
	s := e.state
	s.Result = e.state.Result.Clone()
	if e.state.Request != nil {
		req := *e.state.Request
		s.Request = &req
	}
	return s
}
