package domain

import (
	"strconv"
	"strings"
)

// PageCategory is the inferred kind of page a selection was made on.
type PageCategory string

const (
	PageCategoryNews     PageCategory = "news"
	PageCategoryAcademic PageCategory = "academic"
	PageCategorySocial   PageCategory = "social"
	PageCategoryEmail    PageCategory = "email"
	PageCategoryOther    PageCategory = "other"
)

func (c PageCategory) String() string { return string(c) }

func (c PageCategory) IsValid() bool {
	switch c {
	case PageCategoryNews, PageCategoryAcademic, PageCategorySocial, PageCategoryEmail, PageCategoryOther:
		return true
	}
	return false
}

// InteractionStrength classifies how explicit the user's intent was.
type InteractionStrength string

const (
	// InteractionWeak is a plain pointer-up selection.
	InteractionWeak InteractionStrength = "weak"
	// InteractionStrong is a double-click or an explicit command (context menu, retry).
	InteractionStrong InteractionStrength = "strong"
)

func (s InteractionStrength) String() string { return string(s) }

func (s InteractionStrength) IsValid() bool {
	return s == InteractionWeak || s == InteractionStrong
}

// TabID identifies a browser tab. Tab ids are assigned by the browser and are
// always positive.
type TabID int

func (t TabID) String() string { return strconv.Itoa(int(t)) }

// ParseTabID parses a decimal tab id. Zero and negative values are rejected.
func ParseTabID(s string) (TabID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, NewValidationError("tab_id", "must be a positive integer")
	}
	return TabID(n), nil
}

// SelectionEvent is one coalesced user gesture reported by a page. It is never persisted.
type SelectionEvent struct {
	Word         string              `json:"word"`
	Context      string              `json:"context"`
	PageCategory PageCategory        `json:"pageCategory"`
	SourceURL    string              `json:"sourceUrl"`
	Strength     InteractionStrength `json:"interactionStrength"`
}

// Validate checks all fields and collects all errors.
func (e SelectionEvent) Validate() error {
	var errs []FieldError

	if strings.TrimSpace(e.Word) == "" {
		errs = append(errs, FieldError{Field: "word", Message: "required"})
	}
	if e.PageCategory != "" && !e.PageCategory.IsValid() {
		errs = append(errs, FieldError{Field: "pageCategory", Message: "unknown category"})
	}
	if !e.Strength.IsValid() {
		errs = append(errs, FieldError{Field: "interactionStrength", Message: "must be weak or strong"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Normalized returns a copy with word and context trimmed and a missing
// category defaulted to other.
func (e SelectionEvent) Normalized() SelectionEvent {
	e.Word = strings.TrimSpace(e.Word)
	e.Context = strings.TrimSpace(e.Context)
	if e.PageCategory == "" {
		e.PageCategory = PageCategoryOther
	}
	return e
}

// SameContent reports whether two selections carry the same word and context.
// Page, URL and strength are ignored: the same text selected twice is one request.
func (e SelectionEvent) SameContent(other SelectionEvent) bool {
	return strings.TrimSpace(e.Word) == strings.TrimSpace(other.Word) &&
		strings.TrimSpace(e.Context) == strings.TrimSpace(other.Context)
}
