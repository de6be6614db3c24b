package engine

import (
	"encoding/json"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// Event names of the analysis stream.
const (
	EventLayer1Chunk             = "layer1_chunk"
	EventLayer1Complete          = "layer1_complete"
	EventLayer2                  = "layer2"
	EventLayer3                  = "layer3"
	EventLayer4PersonalizedChunk = "layer4_personalized_chunk"
	EventLayer4                  = "layer4"
	EventLayer2Error             = "layer2_error"
	EventLayer3Error             = "layer3_error"
	EventLayer4Error             = "layer4_error"
	EventError                   = "error"
	EventDone                    = "done"
)

const (
	defaultLayerErrorMessage = "Something went wrong while analyzing this word."
	transportErrorMessage    = "Unable to contact the analysis service. Please try again."
)

type contentPayload struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type liveContextPayload struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type layer2Payload struct {
	Contexts []liveContextPayload `json:"contexts"`
}

type mistakePayload struct {
	Wrong   string `json:"wrong"`
	Why     string `json:"why"`
	Correct string `json:"correct"`
}

type layer3Payload struct {
	Mistakes []mistakePayload `json:"mistakes"`
}

type relatedWordPayload struct {
	Word         string `json:"word"`
	Relationship string `json:"relationship"`
	Difference   string `json:"difference"`
	WhenToUse    string `json:"when_to_use"`
}

type layer4Payload struct {
	RelatedWords []relatedWordPayload `json:"related_words"`
	Personalized *string              `json:"personalized"`
}

// decode unmarshals data into v. Missing or non-object payloads leave v zero
// and report false.
func decode(data json.RawMessage, v any) bool {
	if len(data) == 0 {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func toLiveContexts(p layer2Payload, headword string) []domain.LiveContext {
	out := make([]domain.LiveContext, 0, len(p.Contexts))
	for _, c := range p.Contexts {
		out = append(out, domain.LiveContext{Source: c.Source, Text: c.Text, HighlightedWord: headword})
	}
	return out
}

func toMistakes(p layer3Payload) []domain.CommonMistake {
	out := make([]domain.CommonMistake, 0, len(p.Mistakes))
	for _, m := range p.Mistakes {
		out = append(out, domain.CommonMistake(m))
	}
	return out
}

func toRelatedWords(p layer4Payload) []domain.RelatedWord {
	out := make([]domain.RelatedWord, 0, len(p.RelatedWords))
	for _, rw := range p.RelatedWords {
		out = append(out, domain.RelatedWord{
			Word:          rw.Word,
			Relationship:  rw.Relationship,
			KeyDifference: rw.Difference,
			WhenToUse:     rw.WhenToUse,
		})
	}
	return out
}
