package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startCoordinator runs a coordinator until the test ends.
func startCoordinator(t *testing.T, surface Surface, opener Opener) *Coordinator {
	t.Helper()

	c := New(newTestLogger(), surface, opener, 8)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-errc
	})
	return c
}

func okSurface() *surfaceMock {
	return &surfaceMock{DeliverFunc: func(context.Context, protocol.SelectionAccepted) error { return nil }}
}

func okOpener() *openerMock {
	return &openerMock{OpenSurfaceFunc: func(context.Context, domain.TabID) error { return nil }}
}

func ask(t *testing.T, c *Coordinator, msg protocol.Message) protocol.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := c.Ask(ctx, msg)
	if err != nil {
		t.Fatalf("Ask(%s): %v", msg.Kind(), err)
	}
	return reply
}

func TestCoordinator_StrongIntentBypass(t *testing.T) {
	t.Parallel()

	surface := okSurface()
	c := startCoordinator(t, surface, okOpener())

	ask(t, c, protocol.SelectionReported{TabID: 1, Selection: sel("ephemeral", domain.InteractionStrong)})
	ask(t, c, protocol.SurfaceConnected{})

	reply := ask(t, c, protocol.SurfaceQueryLastSelection{TabID: 1}).(protocol.LastSelection)
	if reply.Selection == nil || reply.Selection.Word != "ephemeral" {
		t.Fatalf("reply = %+v, want the strong selection", reply.Selection)
	}
	if len(surface.DeliverCalls()) != 0 {
		t.Errorf("Deliver calls = %d, want 0 (surface was closed)", len(surface.DeliverCalls()))
	}
}

func TestCoordinator_WeakIntentSuppression(t *testing.T) {
	t.Parallel()

	c := startCoordinator(t, okSurface(), okOpener())

	ask(t, c, protocol.SelectionReported{TabID: 1, Selection: sel("mundane", domain.InteractionWeak)})
	ask(t, c, protocol.SurfaceConnected{})

	reply := ask(t, c, protocol.SurfaceQueryLastSelection{TabID: 1}).(protocol.LastSelection)
	if reply.Selection != nil {
		t.Errorf("weak selection while closed replayed: %+v", reply.Selection)
	}
}

func TestCoordinator_DeliversWhileOpen(t *testing.T) {
	t.Parallel()

	surface := okSurface()
	c := startCoordinator(t, surface, okOpener())

	ask(t, c, protocol.SurfaceConnected{})
	ask(t, c, protocol.SelectionReported{TabID: 4, Selection: sel("lucid", domain.InteractionWeak)})

	calls := surface.DeliverCalls()
	if len(calls) != 1 {
		t.Fatalf("Deliver calls = %d, want 1", len(calls))
	}
	if calls[0].Msg.TabID != 4 || calls[0].Msg.Selection.Word != "lucid" {
		t.Errorf("delivered %+v", calls[0].Msg)
	}
}

func TestCoordinator_ChannelErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	surface := &surfaceMock{DeliverFunc: func(context.Context, protocol.SelectionAccepted) error {
		return domain.ErrSurfaceClosed
	}}
	opener := &openerMock{OpenSurfaceFunc: func(context.Context, domain.TabID) error {
		return errors.New("no window")
	}}
	c := startCoordinator(t, surface, opener)

	ask(t, c, protocol.SurfaceConnected{})
	ask(t, c, protocol.ContextCommandTriggered{TabID: 2, Text: "gregarious"})

	if len(opener.OpenSurfaceCalls()) != 1 || len(surface.DeliverCalls()) != 1 {
		t.Fatalf("open calls = %d, deliver calls = %d", len(opener.OpenSurfaceCalls()), len(surface.DeliverCalls()))
	}

	// The coordinator keeps serving after failed effects.
	status := ask(t, c, protocol.SurfaceIsOpen{}).(protocol.SurfaceOpenStatus)
	if !status.Open {
		t.Error("expected surface open")
	}
	reply := ask(t, c, protocol.SurfaceQueryLastSelection{}).(protocol.LastSelection)
	if reply.Selection == nil || reply.Selection.Word != "gregarious" {
		t.Errorf("reply = %+v, want the command selection", reply.Selection)
	}
}

func TestCoordinator_SendAfterStop(t *testing.T) {
	t.Parallel()

	c := New(newTestLogger(), okSurface(), okOpener(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if err := c.Send(context.Background(), protocol.SurfaceConnected{}); !errors.Is(err, ErrStopped) {
		t.Errorf("Send after stop = %v, want ErrStopped", err)
	}
}

func TestCoordinator_AskRespectsContext(t *testing.T) {
	t.Parallel()

	c := New(newTestLogger(), okSurface(), okOpener(), 1)
	// Run is never started: the first message fills the inbox, the second blocks.
	_ = c.Send(context.Background(), protocol.SurfaceIsOpen{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Ask(ctx, protocol.SurfaceIsOpen{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Ask = %v, want deadline exceeded", err)
	}
}
