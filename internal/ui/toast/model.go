// Package toast shows short-lived notifications in the status bar.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/theme"
)

// DefaultDuration is how long a notification stays visible.
const DefaultDuration = 4 * time.Second

// Kind distinguishes success from error notifications.
type Kind int

const (
	Success Kind = iota
	Error
)

// ShowMsg asks the root model to display a notification. Views return it
// from their commands instead of rendering notifications themselves.
type ShowMsg struct {
	Kind Kind
	Text string
}

// expireMsg hides the notification with the given sequence number.
type expireMsg struct {
	seq int
}

// ShowSuccess returns a command that emits a success ShowMsg.
func ShowSuccess(text string) tea.Cmd {
	return func() tea.Msg { return ShowMsg{Kind: Success, Text: text} }
}

// ShowError returns a command that emits an error ShowMsg.
func ShowError(text string) tea.Cmd {
	return func() tea.Msg { return ShowMsg{Kind: Error, Text: text} }
}

// ShowFailure is ShowError for a failed service call. A rejected token
// adds a hint to the text.
func ShowFailure(text string, err error) tea.Cmd {
	if api.IsAuthError(err) {
		text += " (check the API token)"
	}
	return ShowError(text)
}

// Model holds at most one visible notification. A newer notification
// replaces the current one and restarts the timer.
type Model struct {
	kind     Kind
	text     string
	seq      int
	duration time.Duration
}

// New creates an empty notification area.
func New() Model {
	return Model{duration: DefaultDuration}
}

// Update handles ShowMsg and its expiry.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowMsg:
		m.seq++
		m.kind = msg.Kind
		m.text = msg.Text
		seq := m.seq
		return m, tea.Tick(m.duration, func(time.Time) tea.Msg {
			return expireMsg{seq: seq}
		})

	case expireMsg:
		if msg.seq == m.seq {
			m.text = ""
		}
	}
	return m, nil
}

// Visible reports whether a notification is showing.
func (m Model) Visible() bool { return m.text != "" }

// Text returns the current notification text.
func (m Model) Text() string { return m.text }

// View renders the notification, or "" when none is showing.
func (m Model) View() string {
	if m.text == "" {
		return ""
	}
	if m.kind == Error {
		return theme.ErrorStyle.Render("✗ " + m.text)
	}
	return theme.SuccessStyle.Render("✓ " + m.text)
}
