package analysis

import "github.com/heartmarshall/lexilens/internal/domain"

type interestPayload struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	URLs    []string `json:"urls,omitempty"`
}

// analyzeRequest is the body shared by the stream and the deferred layer
// endpoints.
type analyzeRequest struct {
	Word            string            `json:"word"`
	Context         string            `json:"context"`
	PageType        string            `json:"page_type,omitempty"`
	URL             string            `json:"url,omitempty"`
	EnglishLevel    string            `json:"english_level,omitempty"`
	LearningHistory []string          `json:"learning_history"`
	Interests       []interestPayload `json:"interests"`
	BlockedTitles   []string          `json:"blocked_titles"`
	FavoriteWords   []string          `json:"favorite_words"`
	Layers          []int             `json:"layers,omitempty"`
}

func newAnalyzeRequest(req domain.AnalysisRequest, withLayers bool) analyzeRequest {
	out := analyzeRequest{
		Word:            req.Word,
		Context:         req.Context,
		PageType:        string(req.PageCategory),
		URL:             req.SourceURL,
		EnglishLevel:    req.ProficiencyLevel,
		LearningHistory: nonNil(req.RecentVocabulary),
		Interests:       make([]interestPayload, 0, len(req.InterestTopics)),
		BlockedTitles:   nonNil(req.BlockedTopics),
		FavoriteWords:   nonNil(req.FavoriteWords),
	}
	for _, t := range req.InterestTopics {
		out.Interests = append(out.Interests, interestPayload(t))
	}
	if withLayers {
		out.Layers = req.RequestedLayers()
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type mistakeResponse struct {
	Wrong   string `json:"wrong"`
	Why     string `json:"why"`
	Correct string `json:"correct"`
}

type mistakesResponse struct {
	Mistakes []mistakeResponse `json:"mistakes"`
}

type relatedWordResponse struct {
	Word         string `json:"word"`
	Relationship string `json:"relationship"`
	Difference   string `json:"difference"`
	WhenToUse    string `json:"when_to_use"`
}

type lexicalMapResponse struct {
	RelatedWords []relatedWordResponse `json:"related_words"`
	Personalized *string               `json:"personalized"`
}

type pronunciationResponse struct {
	Word     string  `json:"word"`
	IPA      string  `json:"ipa"`
	AudioURL *string `json:"audio_url"`
}
