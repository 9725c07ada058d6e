package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/theme"
)

// FileItem wraps a model.TranscriptFile so it can be used in a bubbles/list.
type FileItem struct {
	File model.TranscriptFile
}

// FilterValue returns the string used for fuzzy filtering.
func (i FileItem) FilterValue() string { return i.File.Filename }

// Title returns the file name for the list.
func (i FileItem) Title() string { return i.File.Filename }

// Description returns a short summary line for the list.
func (i FileItem) Description() string {
	return string(i.File.Status) + " | " + relativeTime(i.File.UploadedAt)
}

// FileDelegate implements list.ItemDelegate for rendering file rows.
type FileDelegate struct{}

// Height returns the number of lines each item takes.
func (d FileDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d FileDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d FileDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d FileDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	fi, ok := item.(FileItem)
	if !ok {
		return
	}
	f := fi.File

	status := theme.FileStatusStyle(string(f.Status)).Render(string(f.Status))
	date := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(f.UploadedAt.Format("Jan 2, 2006") + "  " + relativeTime(f.UploadedAt))

	line := fmt.Sprintf("%s %s  %s", f.Filename, status, date)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
