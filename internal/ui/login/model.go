package login

import (
	"context"
	"errors"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/auth"
	"github.com/nhle/transcript-insights/internal/theme"
	"github.com/nhle/transcript-insights/internal/ui"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

// LoggedInMsg is dispatched once the provider accepted the credentials.
type LoggedInMsg struct {
	Session auth.Session
}

// loginResultMsg carries the provider's answer.
type loginResultMsg struct {
	session auth.Session
	err     error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	password string
}

// Model is the login screen.
type Model struct {
	provider auth.Provider
	form     *huh.Form
	fb       *formBindings
	busy     bool
	width    int
	height   int
}

// New creates a login screen backed by provider.
func New(p auth.Provider, width, height int) Model {
	return Model{
		provider: p,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// Start resets the form, keeping the username of a failed attempt.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("your name").
				Value(&m.fb.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

// Busy reports whether a login is in flight.
func (m Model) Busy() bool { return m.busy }

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			log.Printf("login failed: %v", msg.err)
			start := m.Start()
			return m, tea.Batch(toast.ShowError("Invalid username or password"), start)
		}
		session := msg.session
		return m, tea.Batch(
			toast.ShowSuccess("Login successful"),
			func() tea.Msg { return LoggedInMsg{Session: session} },
		)
	}

	if m.busy || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		cmd := m.Start()
		return m, cmd
	}
	return m, cmd
}

// submit validates locally and starts the login.
func (m Model) submit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.fb.username)
	password := m.fb.password
	if username == "" || strings.TrimSpace(password) == "" {
		start := m.Start()
		return m, tea.Batch(toast.ShowError("Please enter both username and password"), start)
	}

	m.busy = true
	p := m.provider
	return m, func() tea.Msg {
		s, err := p.Login(context.Background(), username, password)
		if err != nil && !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("login provider error: %v", err)
		}
		return loginResultMsg{session: s, err: err}
	}
}

// View renders the login screen.
func (m Model) View() string {
	if m.busy {
		return ui.Centered(m.width, m.height, "Signing in...")
	}
	if m.form == nil {
		return ""
	}

	title := theme.TitleStyle.Render("Transcript Insights")
	sub := theme.HelpStyle.Render("Sign in to continue")
	content := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", m.form.View())

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		theme.PanelStyle.Render(content),
	)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	return min(max(m.width/2, 30), 60)
}
