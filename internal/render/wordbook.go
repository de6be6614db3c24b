package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// Entries renders a wordbook listing, one line per entry.
func Entries(entries []domain.WordbookEntry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("The wordbook is empty.")
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		star := " "
		if e.IsFavorite {
			star = favoriteStyle.Render("*")
		}
		reviewed := "never"
		if e.LastReviewedAt != nil {
			reviewed = e.LastReviewedAt.Local().Format(time.DateOnly)
		}
		fmt.Fprintf(&b, "%s %-24s %s %s", star, headwordStyle.Render(e.Word), stage(e.Stage), mutedStyle.Render(reviewed))
	}
	return b.String()
}

// History renders learning history, newest first.
func History(items []domain.LearningHistoryEntry) string {
	if len(items) == 0 {
		return mutedStyle.Render("No lookups yet.")
	}

	var b strings.Builder
	for i, h := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s", mutedStyle.Render(h.CreatedAt.Local().Format(time.DateTime)), headwordStyle.Render(h.Word))
		if h.Context != "" {
			fmt.Fprintf(&b, "  %s", mutedStyle.Render(truncate(h.Context, 60)))
		}
	}
	return b.String()
}

// stage draws mastery as filled and empty pips.
func stage(n int) string {
	n = min(max(n, 0), domain.MaxStage)
	return correctStyle.Render(strings.Repeat("●", n)) + mutedStyle.Render(strings.Repeat("○", domain.MaxStage-n))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
