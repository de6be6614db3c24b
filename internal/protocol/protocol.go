// Package protocol defines the closed set of messages exchanged between pages,
// the coordinator and the display surface, and the JSON envelope they travel in.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// Kind names a message on the wire.
type Kind string

// Messages addressed to the coordinator.
const (
	KindSelectionReported         Kind = "selection-reported"
	KindTabFocusChanged           Kind = "tab-focus-changed"
	KindContextCommandTriggered   Kind = "context-command-triggered"
	KindSurfaceConnected          Kind = "surface-connected"
	KindSurfaceDisconnected       Kind = "surface-disconnected"
	KindSurfaceQueryLastSelection Kind = "surface-query-last-selection"
	KindSurfaceIsOpen             Kind = "surface-is-open"
)

// Messages sent by the coordinator.
const (
	KindLastSelection     Kind = "last-selection"
	KindSurfaceOpenStatus Kind = "surface-open-status"
	KindSelectionAccepted Kind = "selection-accepted"
	KindOpenSurface       Kind = "open-surface"
	KindError             Kind = "error"
)

// Message is implemented by every message type in this package.
type Message interface {
	Kind() Kind
}

// SelectionReported carries one coalesced gesture from a page.
type SelectionReported struct {
	TabID     domain.TabID          `json:"tabId"`
	Selection domain.SelectionEvent `json:"selection"`
}

// TabFocusChanged reports that TabID became the frontmost tab.
type TabFocusChanged struct {
	TabID domain.TabID `json:"tabId"`
}

// ContextCommandTriggered is an explicit user command (context menu, toolbar
// icon) carrying the selected text.
type ContextCommandTriggered struct {
	TabID     domain.TabID `json:"tabId"`
	Text      string       `json:"text"`
	SourceURL string       `json:"sourceUrl,omitempty"`
}

// SurfaceConnected reports that the display surface became available.
type SurfaceConnected struct{}

// SurfaceDisconnected reports that the display surface went away.
type SurfaceDisconnected struct{}

// SurfaceQueryLastSelection asks for the selection the surface should show.
// TabID is zero when the surface has no intrinsic tab.
type SurfaceQueryLastSelection struct {
	TabID domain.TabID `json:"tabId,omitempty"`
}

// SurfaceIsOpen asks whether a display surface is connected.
type SurfaceIsOpen struct{}

// LastSelection answers SurfaceQueryLastSelection. Selection is nil when
// there is nothing to replay for the associated tab.
type LastSelection struct {
	Selection *domain.SelectionEvent `json:"selection"`
}

// SurfaceOpenStatus answers SurfaceIsOpen.
type SurfaceOpenStatus struct {
	Open bool `json:"open"`
}

// SelectionAccepted pushes a freshly accepted selection to an open surface.
type SelectionAccepted struct {
	TabID     domain.TabID          `json:"tabId"`
	Selection domain.SelectionEvent `json:"selection"`
}

// OpenSurface asks the host to open the display surface for a tab's window.
type OpenSurface struct {
	TabID domain.TabID `json:"tabId"`
}

// Error reports a rejected message back to its sender.
type Error struct {
	Message string `json:"message"`
}

func (SelectionReported) Kind() Kind         { return KindSelectionReported }
func (TabFocusChanged) Kind() Kind           { return KindTabFocusChanged }
func (ContextCommandTriggered) Kind() Kind   { return KindContextCommandTriggered }
func (SurfaceConnected) Kind() Kind          { return KindSurfaceConnected }
func (SurfaceDisconnected) Kind() Kind       { return KindSurfaceDisconnected }
func (SurfaceQueryLastSelection) Kind() Kind { return KindSurfaceQueryLastSelection }
func (SurfaceIsOpen) Kind() Kind             { return KindSurfaceIsOpen }
func (LastSelection) Kind() Kind             { return KindLastSelection }
func (SurfaceOpenStatus) Kind() Kind         { return KindSurfaceOpenStatus }
func (SelectionAccepted) Kind() Kind         { return KindSelectionAccepted }
func (OpenSurface) Kind() Kind               { return KindOpenSurface }
func (Error) Kind() Kind                     { return KindError }

// Validate checks the reported selection and the sender tab.
func (m SelectionReported) Validate() error {
	var errs []domain.FieldError
	if m.TabID <= 0 {
		errs = append(errs, domain.FieldError{Field: "tabId", Message: "must be a positive integer"})
	}
	if err := m.Selection.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve.Errors...)
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Validate checks the command payload.
func (m ContextCommandTriggered) Validate() error {
	var errs []domain.FieldError
	if m.TabID <= 0 {
		errs = append(errs, domain.FieldError{Field: "tabId", Message: "must be a positive integer"})
	}
	if domain.CollapseSpace(m.Text) == "" {
		errs = append(errs, domain.FieldError{Field: "text", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Validate checks the focused tab id.
func (m TabFocusChanged) Validate() error {
	if m.TabID <= 0 {
		return domain.NewValidationError("tabId", "must be a positive integer")
	}
	return nil
}

// Selection converts the command into the strong selection it stands for.
// The selected text doubles as its own context.
func (m ContextCommandTriggered) Selection() domain.SelectionEvent {
	text := domain.CollapseSpace(m.Text)
	return domain.SelectionEvent{
		Word:         text,
		Context:      text,
		PageCategory: domain.PageCategoryOther,
		SourceURL:    m.SourceURL,
		Strength:     domain.InteractionStrong,
	}
}

// Envelope is the wire form of every message.
type Envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps msg in an envelope and marshals it.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Kind(), err)
	}
	return json.Marshal(Envelope{Type: msg.Kind(), Data: data})
}

type validator interface {
	Validate() error
}

// Decode parses an envelope and returns the typed message. Unknown kinds
// return domain.ErrUnknownMessage; invalid payloads return a validation error.
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", domain.NewValidationError("envelope", err.Error()))
	}

	msg, err := newMessage(env.Type)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(env.Data)) > 0 && !bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		if err := json.Unmarshal(env.Data, msg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, domain.NewValidationError("data", err.Error()))
		}
	}

	out := deref(msg)
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
	}
	return out, nil
}

func newMessage(k Kind) (any, error) {
	switch k {
	case KindSelectionReported:
		return &SelectionReported{}, nil
	case KindTabFocusChanged:
		return &TabFocusChanged{}, nil
	case KindContextCommandTriggered:
		return &ContextCommandTriggered{}, nil
	case KindSurfaceConnected:
		return &SurfaceConnected{}, nil
	case KindSurfaceDisconnected:
		return &SurfaceDisconnected{}, nil
	case KindSurfaceQueryLastSelection:
		return &SurfaceQueryLastSelection{}, nil
	case KindSurfaceIsOpen:
		return &SurfaceIsOpen{}, nil
	case KindLastSelection:
		return &LastSelection{}, nil
	case KindSurfaceOpenStatus:
		return &SurfaceOpenStatus{}, nil
	case KindSelectionAccepted:
		return &SelectionAccepted{}, nil
	case KindOpenSurface:
		return &OpenSurface{}, nil
	case KindError:
		return &Error{}, nil
	}
	return nil, fmt.Errorf("kind %q: %w", k, domain.ErrUnknownMessage)
}

func deref(p any) Message {
	switch m := p.(type) {
	case *SelectionReported:
		return *m
	case *TabFocusChanged:
		return *m
	case *ContextCommandTriggered:
		return *m
	case *SurfaceConnected:
		return *m
	case *SurfaceDisconnected:
		return *m
	case *SurfaceQueryLastSelection:
		return *m
	case *SurfaceIsOpen:
		return *m
	case *LastSelection:
		return *m
	case *SurfaceOpenStatus:
		return *m
	case *SelectionAccepted:
		return *m
	case *OpenSurface:
		return *m
	case *Error:
		return *m
	}
	return nil
}
