package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/auth"
	"github.com/nhle/transcript-insights/internal/email"
	"github.com/nhle/transcript-insights/internal/insight"
	"github.com/nhle/transcript-insights/internal/store"
	"github.com/nhle/transcript-insights/internal/transcript"
	"github.com/nhle/transcript-insights/internal/ui/command"
	"github.com/nhle/transcript-insights/internal/ui/login"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	s := store.NewMemoryStore()
	c := api.NewClient("http://127.0.0.1:0", "", 0)
	m := New(Services{
		Auth:      auth.NewMockProvider(0),
		Files:     transcript.NewService(c, s),
		Insights:  insight.NewService(c, s),
		Email:     email.NewService(c, s),
		ExportDir: t.TempDir(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func signIn(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(m, login.LoggedInMsg{Session: auth.Session{Username: "Ada Lovelace", LoggedInAt: time.Now()}})
	if m.CurrentView() != ViewDashboard {
		t.Fatalf("view = %d, want dashboard", m.CurrentView())
	}
	return m
}

func TestStartsOnLogin(t *testing.T) {
	m := newTestModel(t)
	if m.CurrentView() != ViewLogin || m.Session() != nil {
		t.Errorf("view = %d, session = %v", m.CurrentView(), m.Session())
	}
	if m.Init() == nil {
		t.Error("Init should focus the login form")
	}
}

func TestLoginShowsDashboard(t *testing.T) {
	m := signIn(t, newTestModel(t))
	if got := m.Session().DisplayName(); got != "Ada" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestHelpToggle(t *testing.T) {
	m := signIn(t, newTestModel(t))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if m.CurrentView() != ViewHelp {
		t.Fatalf("view = %d, want help", m.CurrentView())
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.CurrentView() != ViewDashboard {
		t.Errorf("view = %d, want dashboard", m.CurrentView())
	}
}

func TestToastShownInStatusBar(t *testing.T) {
	m := signIn(t, newTestModel(t))
	m, cmd := update(m, toast.ShowMsg{Kind: toast.Error, Text: "Failed to upload file"})
	if cmd == nil {
		t.Error("toast should schedule its expiry")
	}
	if !m.toast.Visible() {
		t.Error("toast not visible")
	}
}

// palette opens the command palette and executes name.
func palette(t *testing.T, m Model, name string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	if m.CurrentView() != ViewCommand {
		t.Fatalf("view = %d, want command palette", m.CurrentView())
	}
	return update(m, command.CommandMsg(name))
}

func TestCommands(t *testing.T) {
	m := signIn(t, newTestModel(t))

	_, cmd := palette(t, m, "bogus")
	if msg, ok := cmd().(toast.ShowMsg); !ok || msg.Kind != toast.Error {
		t.Errorf("unknown command result = %#v", msg)
	}

	_, cmd = palette(t, m, "insights")
	if msg, ok := cmd().(toast.ShowMsg); !ok || msg.Text != "Select a transcript first" {
		t.Errorf("insights without files = %#v", msg)
	}

	_, cmd = palette(t, m, "quit")
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should quit")
	}

	m, _ = palette(t, m, "logout")
	if m.CurrentView() != ViewLogin || m.Session() != nil {
		t.Errorf("after logout view = %d, session = %v", m.CurrentView(), m.Session())
	}
}
