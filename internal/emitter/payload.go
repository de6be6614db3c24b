package emitter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/lexilens/internal/domain"
)

var pageCategoryPatterns = []struct {
	category domain.PageCategory
	pattern  *regexp.Regexp
}{
	{domain.PageCategoryNews, regexp.MustCompile(`(?i)economist|nytimes|bbc|reuters|guardian|wsj|ft\.com`)},
	{domain.PageCategoryAcademic, regexp.MustCompile(`(?i)scholar\.google|arxiv|researchgate|jstor|sciencedirect`)},
	{domain.PageCategorySocial, regexp.MustCompile(`(?i)twitter|facebook|linkedin|reddit|instagram`)},
	{domain.PageCategoryEmail, regexp.MustCompile(`(?i)mail\.google|outlook`)},
}

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// DetectPageCategory infers the page category from its URL.
func DetectPageCategory(url string) domain.PageCategory {
	for _, p := range pageCategoryPatterns {
		if p.pattern.MatchString(url) {
			return p.category
		}
	}
	return domain.PageCategoryOther
}

// SentenceContaining returns the first sentence of text that contains word.
// Falls back to word itself.
func SentenceContaining(word, text string) string {
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for _, s := range sentences {
		if strings.Contains(s, word) {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return word
}

// WidenContext returns a window of at most window runes of fullText centred
// on snippet, with "..." marking truncated ends. If snippet does not occur in
// fullText it is returned unchanged.
func WidenContext(snippet, fullText string, window int) string {
	idx := strings.Index(fullText, snippet)
	if idx < 0 {
		return snippet
	}

	runes := []rune(fullText)
	startRune := utf8.RuneCountInString(fullText[:idx])
	endRune := startRune + utf8.RuneCountInString(snippet)

	half := window / 2
	start := max(0, startRune-half)
	end := min(len(runes), endRune+half)

	ctx := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		ctx = "..." + ctx
	}
	if end < len(runes) {
		ctx += "..."
	}
	return ctx
}
