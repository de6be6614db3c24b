package coordinator

import (
	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

// Accepted is the last selection the coordinator accepted and the tab it came from.
type Accepted struct {
	Selection domain.SelectionEvent
	Owner     domain.TabID
}

// State is the whole coordinator state. The zero value is a closed surface
// with no known tab and nothing accepted. Every field is last-write-wins.
type State struct {
	Last        *Accepted
	Frontmost   domain.TabID
	SurfaceOpen bool
}

// Effect is a side effect requested by Reduce. The actor executes effects in
// order after the state has been committed.
type Effect interface {
	effect()
}

// OpenSurfaceEffect asks the host to open the display surface for a tab's window.
type OpenSurfaceEffect struct {
	TabID domain.TabID
}

// DeliverEffect pushes an accepted selection to the open surface.
type DeliverEffect struct {
	TabID     domain.TabID
	Selection domain.SelectionEvent
}

// ReplyEffect carries the answer to a query message.
type ReplyEffect struct {
	Message protocol.Message
}

func (OpenSurfaceEffect) effect() {}
func (DeliverEffect) effect()     {}
func (ReplyEffect) effect()       {}

// Reduce applies one message to s. It never mutates its input and performs no I/O.
//
// A user gesture on a page implies that its tab is frontmost, so selections
// and commands also move Frontmost to the sending tab.
func Reduce(s State, msg protocol.Message) (State, []Effect) {
	switch m := msg.(type) {
	case protocol.SurfaceConnected:
		s.SurfaceOpen = true
		return s, nil

	case protocol.SurfaceDisconnected:
		s.SurfaceOpen = false
		return s, nil

	case protocol.TabFocusChanged:
		s.Frontmost = m.TabID
		return s, nil

	case protocol.SelectionReported:
		s.Frontmost = m.TabID
		evt := m.Selection.Normalized()
		if !s.SurfaceOpen && evt.Strength != domain.InteractionStrong {
			return s, nil
		}
		s.Last = &Accepted{Selection: evt, Owner: m.TabID}
		if s.SurfaceOpen {
			return s, []Effect{DeliverEffect{TabID: m.TabID, Selection: evt}}
		}
		return s, nil

	case protocol.ContextCommandTriggered:
		s.Frontmost = m.TabID
		evt := m.Selection()
		s.Last = &Accepted{Selection: evt, Owner: m.TabID}
		effects := []Effect{OpenSurfaceEffect{TabID: m.TabID}}
		if s.SurfaceOpen {
			effects = append(effects, DeliverEffect{TabID: m.TabID, Selection: evt})
		}
		return s, effects

	case protocol.SurfaceQueryLastSelection:
		return s, []Effect{ReplyEffect{Message: LastSelectionFor(s, m.TabID)}}

	case protocol.SurfaceIsOpen:
		return s, []Effect{ReplyEffect{Message: protocol.SurfaceOpenStatus{Open: s.SurfaceOpen}}}
	}

	return s, nil
}

// LastSelectionFor answers a surface query. The surface is associated with
// requesting when it is known, else with the frontmost tab. The last accepted
// selection is returned only when its owner is that tab.
func LastSelectionFor(s State, requesting domain.TabID) protocol.LastSelection {
	tab := requesting
	if tab == 0 {
		tab = s.Frontmost
	}
	if s.Last == nil || tab == 0 || s.Last.Owner != tab {
		return protocol.LastSelection{}
	}
	sel := s.Last.Selection
	return protocol.LastSelection{Selection: &sel}
}
