package domain

import (
	"slices"
	"strings"
	"time"
)

// Layer numbers accepted by the analysis endpoint. Layer 1 is always streamed.
const (
	LayerBehavior   = 1
	LayerContexts   = 2
	LayerMistakes   = 3
	LayerLexicalMap = 4
)

// DefaultLayers is requested when the caller does not choose. Layer 3 is
// fetched lazily on demand.
var DefaultLayers = []int{LayerContexts, LayerLexicalMap}

// InterestTopic is a known learner interest used for personalization.
type InterestTopic struct {
	ID      string   `json:"id"      yaml:"id"`
	Title   string   `json:"title"   yaml:"title"`
	Summary string   `json:"summary" yaml:"summary"`
	URLs    []string `json:"urls"    yaml:"urls"`
}

// AnalysisRequest is derived from one accepted SelectionEvent plus learner
// context. It is immutable once built; the engine identifies runs by sequence
// number, never by word.
type AnalysisRequest struct {
	Word             string
	Context          string
	PageCategory     PageCategory
	SourceURL        string
	ProficiencyLevel string
	RecentVocabulary []string
	InterestTopics   []InterestTopic
	BlockedTopics    []string
	FavoriteWords    []string
	Layers           []int
}

// Validate checks all fields and collects all errors.
func (r AnalysisRequest) Validate() error {
	var errs []FieldError

	if strings.TrimSpace(r.Word) == "" {
		errs = append(errs, FieldError{Field: "word", Message: "required"})
	}
	if strings.TrimSpace(r.Context) == "" {
		errs = append(errs, FieldError{Field: "context", Message: "required"})
	}
	for _, l := range r.Layers {
		if l < LayerContexts || l > LayerLexicalMap {
			errs = append(errs, FieldError{Field: "layers", Message: "only layers 2, 3 and 4 can be requested"})
			break
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// RequestedLayers returns the explicit layers, or DefaultLayers when none were set.
func (r AnalysisRequest) RequestedLayers() []int {
	if len(r.Layers) > 0 {
		return slices.Clone(r.Layers)
	}
	return slices.Clone(DefaultLayers)
}

// NewAnalysisRequest builds a request from an accepted selection.
func NewAnalysisRequest(evt SelectionEvent) AnalysisRequest {
	evt = evt.Normalized()
	return AnalysisRequest{
		Word:         evt.Word,
		Context:      evt.Context,
		PageCategory: evt.PageCategory,
		SourceURL:    evt.SourceURL,
	}
}

// Pronunciation is the best-effort phonetic data for a headword.
type Pronunciation struct {
	IPA      string `json:"ipa"`
	AudioURL string `json:"audioUrl,omitempty"`
	Region   string `json:"region,omitempty"`
}

// BehaviorPattern is Layer 1: the streamed core explanation.
type BehaviorPattern struct {
	Text          string    `json:"text"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// LiveContext is one Layer 2 usage example.
type LiveContext struct {
	Source          string `json:"source"`
	Text            string `json:"text"`
	HighlightedWord string `json:"highlightedWord"`
}

// CommonMistake is one Layer 3 item.
type CommonMistake struct {
	Wrong   string `json:"wrong"`
	Why     string `json:"why"`
	Correct string `json:"correct"`
}

// RelatedWord is one node of the Layer 4 lexical map. KeyDifference and
// WhenToUse may be empty while details are still pending.
type RelatedWord struct {
	Word          string `json:"word"`
	Relationship  string `json:"relationship"`
	KeyDifference string `json:"keyDifference,omitempty"`
	WhenToUse     string `json:"whenToUse,omitempty"`
}

// LexicalMap is Layer 4.
type LexicalMap struct {
	RelatedItems     []RelatedWord `json:"relatedItems"`
	PersonalizedNote string        `json:"personalizedNote,omitempty"`
}

// AnalysisResult is the progressively assembled explanation. Each layer moves
// absent -> partial -> complete and is never unset once populated.
type AnalysisResult struct {
	Headword      string           `json:"headword"`
	Pronunciation *Pronunciation   `json:"pronunciation,omitempty"`
	Layer1        *BehaviorPattern `json:"layer1,omitempty"`
	Layer2        []LiveContext    `json:"layer2,omitempty"`
	Layer3        []CommonMistake  `json:"layer3,omitempty"`
	Layer4        *LexicalMap      `json:"layer4,omitempty"`
}

// HasAnalysis reports whether any layer has been populated.
func (r *AnalysisResult) HasAnalysis() bool {
	return r.Layer1 != nil || r.Layer2 != nil || r.Layer3 != nil || r.Layer4 != nil
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := &AnalysisResult{
		Headword: r.Headword,
		Layer2:   slices.Clone(r.Layer2),
		Layer3:   slices.Clone(r.Layer3),
	}
	if r.Pronunciation != nil {
		p := *r.Pronunciation
		out.Pronunciation = &p
	}
	if r.Layer1 != nil {
		l := *r.Layer1
		out.Layer1 = &l
	}
	if r.Layer4 != nil {
		out.Layer4 = &LexicalMap{
			RelatedItems:     slices.Clone(r.Layer4.RelatedItems),
			PersonalizedNote: r.Layer4.PersonalizedNote,
		}
	}
	return out
}
