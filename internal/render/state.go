package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/engine"
)

// State renders the current analysis. Width wraps the panel; zero leaves
// lines unwrapped.
func State(s engine.State, width int) string {
	var b strings.Builder

	switch {
	case s.Result != nil && s.Result.Headword != "":
		b.WriteString(header(s.Result))
	case s.Request != nil:
		b.WriteString(headwordStyle.Render(s.Request.Word))
	default:
		return mutedStyle.Render("Select a word on any page to see its explanation.")
	}

	if r := s.Result; r != nil {
		if r.Layer1 != nil {
			section(&b, "How it behaves")
			b.WriteString(r.Layer1.Text)
		}
		if len(r.Layer2) > 0 {
			section(&b, "Live contexts")
			for _, c := range r.Layer2 {
				fmt.Fprintf(&b, "\n- %s %s", highlight(c.Text, c.HighlightedWord), mutedStyle.Render("("+c.Source+")"))
			}
		}
		if len(r.Layer3) > 0 {
			section(&b, "Common mistakes")
			for _, m := range r.Layer3 {
				fmt.Fprintf(&b, "\n%s -> %s", wrongStyle.Render(m.Wrong), correctStyle.Render(m.Correct))
				if m.Why != "" {
					fmt.Fprintf(&b, "\n  %s", mutedStyle.Render(m.Why))
				}
			}
		}
		if r.Layer4 != nil && len(r.Layer4.RelatedItems) > 0 {
			section(&b, "Lexical map")
			for _, w := range r.Layer4.RelatedItems {
				fmt.Fprintf(&b, "\n- %s %s", correctStyle.Render(w.Word), mutedStyle.Render(w.Relationship))
				if w.KeyDifference != "" {
					fmt.Fprintf(&b, "\n  %s", w.KeyDifference)
				}
				if w.WhenToUse != "" {
					fmt.Fprintf(&b, "\n  %s", mutedStyle.Render("Use when: "+w.WhenToUse))
				}
			}
			if note := r.Layer4.PersonalizedNote; note != "" {
				fmt.Fprintf(&b, "\n%s", mutedStyle.Render(note))
			}
		}
	}

	var status []string
	if s.Loading {
		status = append(status, "analyzing...")
	}
	if s.MistakesLoading {
		status = append(status, "loading common mistakes...")
	}
	if s.LexicalMapLoading {
		status = append(status, "loading lexical map...")
	}
	if len(status) > 0 {
		b.WriteString("\n\n" + loadingStyle.Render(strings.Join(status, " ")))
	}
	if s.Error != "" {
		b.WriteString("\n\n" + errorStyle.Render(s.Error))
	}

	panel := panelStyle
	if width > 0 {
		panel = panel.Width(width)
	}
	return panel.Render(b.String())
}

func header(r *domain.AnalysisResult) string {
	out := headwordStyle.Render(r.Headword)
	if p := r.Pronunciation; p != nil && p.IPA != "" {
		ipa := "/" + p.IPA + "/"
		if p.Region != "" {
			ipa += " " + strings.ToUpper(p.Region)
		}
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, " ", ipaStyle.Render(ipa))
	}
	return out
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
}

// highlight bolds the first case-insensitive occurrence of word in text.
func highlight(text, word string) string {
	if word == "" {
		return text
	}
	i := strings.Index(strings.ToLower(text), strings.ToLower(word))
	if i < 0 {
		return text
	}
	return text[:i] + headwordStyle.Render(text[i:i+len(word)]) + text[i+len(word):]
}
