// Package report renders run progress and summaries on the console using
// lipgloss styles, with a plain fallback for non-TTY output.
package report

import "github.com/charmbracelet/lipgloss"

// Step status glyphs.
const (
	GlyphPending = "○"
	GlyphCurrent = "▸"
	GlyphPassed  = "✓"
	GlyphFailed  = "✗"
	GlyphSkipped = "⏭"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var (
	featureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	scenarioStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	stepPassed = lipgloss.NewStyle().
			Foreground(colorGreen)

	stepFailed = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	stepSkipped = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	skipNoteStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	summaryPassedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	summaryFailedStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)
)
