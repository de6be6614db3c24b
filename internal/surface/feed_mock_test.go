package surface

import (
	"context"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

var _ Feed = &feedMock{}

// feedMock replays a fixed list of pushed selections, then blocks until ctx is done.
type feedMock struct {
	LastSelectionFunc func(ctx context.Context, tab domain.TabID) (*domain.SelectionEvent, error)
	pushed            chan protocol.SelectionAccepted
}

func newFeedMock(pushed ...protocol.SelectionAccepted) *feedMock {
	ch := make(chan protocol.SelectionAccepted, len(pushed))
	for _, p := range pushed {
		ch <- p
	}
	return &feedMock{pushed: ch}
}

func (m *feedMock) LastSelection(ctx context.Context, tab domain.TabID) (*domain.SelectionEvent, error) {
	if m.LastSelectionFunc == nil {
		return nil, nil
	}
	return m.LastSelectionFunc(ctx, tab)
}

func (m *feedMock) Next(ctx context.Context) (protocol.SelectionAccepted, error) {
	select {
	case p := <-m.pushed:
		return p, nil
	case <-ctx.Done():
		return protocol.SelectionAccepted{}, ctx.Err()
	}
}
