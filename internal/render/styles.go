// Package render draws engine state and wordbook listings for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#FF6B6B")
	colorAccent  = lipgloss.Color("#4ECDC4")
	colorMuted   = lipgloss.Color("#666666")
	colorWarn    = lipgloss.Color("#FFE66D")
	colorError   = lipgloss.Color("#E63946")
	colorBorder  = lipgloss.Color("#3D5A80")
)

var (
	headwordStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	ipaStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginTop(1)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	wrongStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(colorError)
	correctStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	loadingStyle  = lipgloss.NewStyle().Italic(true).Foreground(colorWarn)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	favoriteStyle = lipgloss.NewStyle().Foreground(colorWarn)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)
