// Package coordinator implements the selection lifecycle coordinator: a single
// actor that owns State, applies messages through Reduce and executes the
// resulting effects.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

// ErrStopped is returned by Send and Ask after Run has returned.
var ErrStopped = errors.New("coordinator stopped")

const effectTimeout = 5 * time.Second

// Surface receives accepted selections while the display surface is open.
type Surface interface {
	Deliver(ctx context.Context, msg protocol.SelectionAccepted) error
}

// Opener opens the display surface for a tab's window.
type Opener interface {
	OpenSurface(ctx context.Context, tab domain.TabID) error
}

type request struct {
	msg   protocol.Message
	reply chan protocol.Message
}

// Coordinator serialises every message through one goroutine started by Run.
type Coordinator struct {
	log     *slog.Logger
	surface Surface
	opener  Opener

	inbox chan request
	done  chan struct{}

	state State
}

// New creates a Coordinator. inboxSize bounds the number of queued messages.
func New(log *slog.Logger, surface Surface, opener Opener, inboxSize int) *Coordinator {
	if inboxSize <= 0 {
		inboxSize = 1
	}
	return &Coordinator{
		log:     log.With("service", "coordinator"),
		surface: surface,
		opener:  opener,
		inbox:   make(chan request, inboxSize),
		done:    make(chan struct{}),
	}
}

// Run processes messages until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)

	c.log.InfoContext(ctx, "coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("coordinator stopped")
			return nil
		case req := <-c.inbox:
			c.handle(ctx, req)
		}
	}
}

// Send enqueues msg without waiting for it to be applied.
func (c *Coordinator) Send(ctx context.Context, msg protocol.Message) error {
	return c.enqueue(ctx, request{msg: msg})
}

// Ask enqueues msg and waits for its reply. Messages that produce no reply
// return nil once they have been applied.
func (c *Coordinator) Ask(ctx context.Context, msg protocol.Message) (protocol.Message, error) {
	reply := make(chan protocol.Message, 1)
	if err := c.enqueue(ctx, request{msg: msg, reply: reply}); err != nil {
		return nil, err
	}

	select {
	case m := <-reply:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrStopped
	}
}

func (c *Coordinator) enqueue(ctx context.Context, req request) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}

	select {
	case c.inbox <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

func (c *Coordinator) handle(ctx context.Context, req request) {
	next, effects := Reduce(c.state, req.msg)
	c.logTransition(ctx, req.msg, c.state, next)
	c.state = next

	var reply protocol.Message
	for _, eff := range effects {
		switch e := eff.(type) {
		case ReplyEffect:
			reply = e.Message
		case DeliverEffect:
			c.run(ctx, "deliver selection", func(ctx context.Context) error {
				return c.surface.Deliver(ctx, protocol.SelectionAccepted{TabID: e.TabID, Selection: e.Selection})
			})
		case OpenSurfaceEffect:
			c.run(ctx, "open surface", func(ctx context.Context) error {
				return c.opener.OpenSurface(ctx, e.TabID)
			})
		}
	}

	if req.reply != nil {
		req.reply <- reply
	}
}

// run executes one effect. Channel failures are logged, never propagated:
// the page or surface on the other end may already be gone.
func (c *Coordinator) run(ctx context.Context, op string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, effectTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		c.log.WarnContext(ctx, "effect failed",
			slog.String("effect", op),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Coordinator) logTransition(ctx context.Context, msg protocol.Message, prev, next State) {
	switch m := msg.(type) {
	case protocol.SelectionReported:
		if next.Last == prev.Last {
			c.log.DebugContext(ctx, "selection dropped",
				slog.String("tab_id", m.TabID.String()),
				slog.String("strength", m.Selection.Strength.String()),
			)
			return
		}
		c.log.DebugContext(ctx, "selection accepted",
			slog.String("tab_id", m.TabID.String()),
			slog.Bool("surface_open", next.SurfaceOpen),
		)
	case protocol.SurfaceConnected, protocol.SurfaceDisconnected:
		if prev.SurfaceOpen != next.SurfaceOpen {
			c.log.InfoContext(ctx, "surface state changed", slog.Bool("open", next.SurfaceOpen))
		}
	}
}
