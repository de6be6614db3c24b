package domain

import (
	"strings"
	"unicode"
)

// NormalizeText is the wordbook key of a headword: whitespace collapsed,
// lowercased, with punctuation picked up at the edges of a page selection
// ("Precarious," or “precarious”) removed. Inner hyphens, apostrophes and
// diacritics are part of the word and stay.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimFunc(CollapseSpace(text), isEdgePunct))
}

// CollapseSpace trims text and joins its words with single spaces, so line
// breaks and tabs copied from page text disappear. Case is kept.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r)
}
