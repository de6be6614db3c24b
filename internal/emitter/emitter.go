// Package emitter turns raw page gestures into selection reports, coalescing
// bursts of gestures into one report per quiet window.
package emitter

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

// GestureKind is the user interaction that produced a selection.
type GestureKind int

const (
	// PointerUp is a plain mouse-up after dragging a selection.
	PointerUp GestureKind = iota
	// DoubleClick selects a word with a double click.
	DoubleClick
	// Retrigger is an explicit re-request by the user (context menu, retry).
	Retrigger
)

// Gesture is one raw interaction observed on a page.
type Gesture struct {
	Kind     GestureKind
	Text     string
	PageText string
	URL      string
}

// Sender delivers a selection report to the coordinator.
type Sender interface {
	ReportSelection(ctx context.Context, msg protocol.SelectionReported) error
}

// Options configures an Emitter.
type Options struct {
	TabID         domain.TabID
	Debounce      time.Duration
	WeakMaxLength int
	ContextWindow int
	SendTimeout   time.Duration
}

// Emitter builds selection payloads for one page and sends at most one per
// quiescence window. It is safe for concurrent use.
type Emitter struct {
	log    *slog.Logger
	sender Sender
	opts   Options

	mu      sync.Mutex
	timer   *time.Timer
	pending *domain.SelectionEvent
	stopped bool
	wg      sync.WaitGroup
}

// New creates an Emitter.
func New(log *slog.Logger, sender Sender, opts Options) *Emitter {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	return &Emitter{
		log:    log.With("service", "emitter", "tab_id", opts.TabID.String()),
		sender: sender,
		opts:   opts,
	}
}

// Build derives a SelectionEvent from g. It reports false when the gesture
// carries no usable selection: empty text, or a pointer-up selection of
// WeakMaxLength characters or more.
func (e *Emitter) Build(g Gesture) (domain.SelectionEvent, bool) {
	text := strings.TrimSpace(g.Text)
	if text == "" {
		return domain.SelectionEvent{}, false
	}

	strength := domain.InteractionStrong
	if g.Kind == PointerUp {
		strength = domain.InteractionWeak
		if e.opts.WeakMaxLength > 0 && utf8.RuneCountInString(text) >= e.opts.WeakMaxLength {
			return domain.SelectionEvent{}, false
		}
	}

	sentence := SentenceContaining(text, g.PageText)
	surrounding := sentence
	if e.opts.ContextWindow > 0 {
		surrounding = WidenContext(sentence, g.PageText, e.opts.ContextWindow)
	}

	return domain.SelectionEvent{
		Word:         text,
		Context:      surrounding,
		PageCategory: DetectPageCategory(g.URL),
		SourceURL:    g.URL,
		Strength:     strength,
	}, true
}

// Observe schedules g for emission. A gesture observed before the window of
// the previous one elapses replaces it. Observe never blocks on the network.
func (e *Emitter) Observe(g Gesture) {
	evt, ok := e.Build(g)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}
	e.pending = &evt
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.opts.Debounce, e.fire)
}

// Flush sends the pending selection now, if any, and waits for in-flight sends.
func (e *Emitter) Flush() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	evt := e.takePendingLocked()
	e.mu.Unlock()

	if evt != nil {
		e.send(*evt)
	}
	e.wg.Wait()
}

// Stop discards the pending selection and waits for in-flight sends.
func (e *Emitter) Stop() {
	e.mu.Lock()
	e.stopped = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Emitter) fire() {
	e.mu.Lock()
	evt := e.takePendingLocked()
	e.timer = nil
	e.mu.Unlock()

	if evt != nil {
		e.send(*evt)
	}
}

func (e *Emitter) takePendingLocked() *domain.SelectionEvent {
	evt := e.pending
	e.pending = nil
	if evt != nil {
		e.wg.Add(1)
	}
	return evt
}

// send reports evt. Failures are logged and swallowed.
func (e *Emitter) send(evt domain.SelectionEvent) {
	defer e.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.SendTimeout)
	defer cancel()

	err := e.sender.ReportSelection(ctx, protocol.SelectionReported{TabID: e.opts.TabID, Selection: evt})
	if err != nil {
		e.log.Warn("report selection failed",
			slog.String("word", evt.Word),
			slog.String("error", err.Error()),
		)
	}
}
