package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/theme"
)

// Layout manages the terminal frame dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title on the left and
// a right-aligned note (the signed-in user).
func (l Layout) RenderHeader(title string, note string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	noteRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(note)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(noteRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		noteRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints, or
// with a notification when one is active.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// RenderTabs renders a single-line tab bar with the active tab highlighted.
func RenderTabs(tabs []string, active int) string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if i == active {
			rendered[i] = theme.ActiveTabStyle.Render(t)
		} else {
			rendered[i] = theme.TabStyle.Render(t)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Centered renders gray text centered in a width x height box. Views use
// it for loading and empty states.
func Centered(width, height int, lines ...string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(strings.Join(lines, "\n"))
}

// Separator renders a horizontal rule at most 80 cells wide.
func Separator(width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(0, min(width-4, 80))))
}
