package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/transcript-insights/internal/auth"
	"github.com/nhle/transcript-insights/internal/email"
	"github.com/nhle/transcript-insights/internal/insight"
	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/transcript"
	"github.com/nhle/transcript-insights/internal/ui"
	"github.com/nhle/transcript-insights/internal/ui/command"
	"github.com/nhle/transcript-insights/internal/ui/compose"
	"github.com/nhle/transcript-insights/internal/ui/dashboard"
	helpview "github.com/nhle/transcript-insights/internal/ui/help"
	"github.com/nhle/transcript-insights/internal/ui/insights"
	"github.com/nhle/transcript-insights/internal/ui/login"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewInsights
	ViewEmail
	ViewHelp
	ViewCommand
)

// Services are the collaborators the views operate on.
type Services struct {
	Auth     auth.Provider
	Files    *transcript.Service
	Insights *insight.Service
	Email    *email.Service

	// Drafts is nil when no IMAP mailbox is configured.
	Drafts compose.DraftSaver

	// ExportDir receives CSV and .eml exports.
	ExportDir string

	// DefaultFrom prefills the sender of the send form.
	DefaultFrom string
}

// Model is the root Bubble Tea model that manages view routing,
// layout and notifications.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	session      *auth.Session

	login       login.Model
	dashboard   dashboard.Model
	insights    insights.Model
	compose     compose.Model
	helpView    helpview.Model
	commandView command.Model
	toast       toast.Model

	initCmd tea.Cmd
	ready   bool
}

// New creates the root application model.
func New(s Services) Model {
	k := keys.DefaultKeyMap()
	lm := login.New(s.Auth, 80, 24)
	initCmd := lm.Start()
	return Model{
		currentView: ViewLogin,
		keys:        k,
		initCmd:     initCmd,
		login:       lm,
		dashboard:   dashboard.New(s.Files, k, 80, 24),
		insights:    insights.New(s.Insights, s.Files, k, s.ExportDir, 80, 24),
		compose:     compose.New(s.Email, s.Drafts, k, s.ExportDir, s.DefaultFrom, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		toast:       toast.New(),
	}
}

// Init starts on the login screen.
func (m Model) Init() tea.Cmd {
	return m.initCmd
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Session returns the signed-in session, or nil.
func (m Model) Session() *auth.Session { return m.session }

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.login.SetSize(w, h)
		m.dashboard.SetSize(w, h)
		m.insights.SetSize(w, h)
		m.compose.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case toast.ShowMsg:
		var cmd tea.Cmd
		m.toast, cmd = m.toast.Update(msg)
		return m, cmd

	case login.LoggedInMsg:
		session := msg.Session
		m.session = &session
		m.dashboard.SetUser(session.DisplayName())
		m.currentView = ViewDashboard
		return m, m.dashboard.Init()

	case dashboard.OpenInsightsMsg:
		cmd := m.openInsights(msg.File, false)
		return m, cmd

	case dashboard.OpenEmailMsg:
		m.currentView = ViewEmail
		cmd := m.compose.Load(msg.File)
		return m, cmd

	case insights.OpenEmailMsg:
		m.currentView = ViewEmail
		cmd := m.compose.Load(msg.File)
		return m, cmd

	case insights.BackMsg, compose.BackMsg:
		m.currentView = ViewDashboard
		return m, m.dashboard.LoadFiles()

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.currentView == ViewDashboard && !m.capturing() {
				return m, tea.Quit
			}

		case "?":
			if m.capturing() || m.currentView == ViewCommand {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.helpView.SetContext(m.contextName(), m.contextBindings())
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			if m.capturing() || m.currentView == ViewHelp {
				break
			}
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			cmd := m.commandView.Focus()
			return m, cmd

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		return m.updateActiveView(msg)
	}
	// Results of async commands reach their view even when another view
	// is active, so busy flags are always cleared.
	return m.broadcast(msg)
}

// broadcast forwards a non-key message to the active view, the toast and
// any background view with a request in flight.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.toast, cmd = m.toast.Update(msg)
	cmds = append(cmds, cmd)

	if m.currentView != ViewDashboard && m.dashboard.Uploading() {
		m.dashboard, cmd = m.dashboard.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView != ViewInsights && m.insights.Busy() {
		m.insights, cmd = m.insights.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView != ViewEmail && m.compose.Busy() {
		m.compose, cmd = m.compose.Update(msg)
		cmds = append(cmds, cmd)
	}

	next, cmd := m.updateActiveView(msg)
	cmds = append(cmds, cmd)
	return next, tea.Batch(cmds...)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewInsights:
		m.insights, cmd = m.insights.Update(msg)
	case ViewEmail:
		m.compose, cmd = m.compose.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// capturing reports whether the active view is taking text input.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewLogin:
		return true
	case ViewDashboard:
		return m.dashboard.FormActive()
	case ViewInsights:
		return m.insights.Capturing()
	case ViewEmail:
		return m.compose.Capturing()
	}
	return false
}

func (m *Model) openInsights(file model.TranscriptFile, tasks bool) tea.Cmd {
	m.currentView = ViewInsights
	cmd := m.insights.Load(file)
	m.insights.ShowTasks(tasks)
	return cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	note := ""
	if m.session != nil {
		note = "Welcome, " + m.session.DisplayName()
	}
	header := m.layout.RenderHeader("Transcript Insights", note)
	content := m.renderContent()

	hints := m.keyHints()
	if m.toast.Visible() {
		hints = m.toast.View()
	}
	statusBar := m.layout.RenderStatusBar(hints)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.login.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewInsights:
		return m.insights.View()
	case ViewEmail:
		return m.compose.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewInsights:
		if m.insights.Capturing() {
			return "ctrl+s save | esc cancel"
		}
		return "tab category | t task | x done | v tasks | e edit | s suggest | E export | m email | esc back"
	case ViewEmail:
		if m.compose.Capturing() {
			return "ctrl+s apply | esc cancel"
		}
		return "tab version | e edit | f feedback | S send | w save .eml | D draft | r refresh | esc back"
	default:
		if m.dashboard.FormActive() {
			return "enter upload | esc cancel"
		}
		return "q quit | ? help | : command | u upload | enter insights | m email | r refresh"
	}
}

func (m Model) contextName() string {
	switch m.currentView {
	case ViewInsights:
		return "Insights"
	case ViewEmail:
		return "Email"
	case ViewDashboard:
		return "Dashboard"
	}
	return ""
}

func (m Model) contextBindings() []key.Binding {
	k := m.keys
	switch m.currentView {
	case ViewInsights:
		return []key.Binding{k.NextTab, k.ToggleTask, k.ToggleDone, k.TaskView, k.Edit, k.SuggestAll, k.Export, k.Refresh, k.Email}
	case ViewEmail:
		return []key.Binding{k.NextTab, k.Edit, k.Feedback, k.Send, k.SaveEML, k.SaveDraft, k.Refresh}
	case ViewDashboard:
		return []key.Binding{k.Upload, k.Insights, k.Email, k.Refresh}
	}
	return nil
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	if m.session == nil {
		if cmd == "quit" || cmd == "q" {
			return tea.Quit
		}
		return nil
	}

	switch cmd {
	case "dashboard", "home":
		m.currentView = ViewDashboard
		return m.dashboard.LoadFiles()
	case "upload":
		m.currentView = ViewDashboard
		return m.dashboard.StartUpload()
	case "insights", "tasks":
		file, ok := m.commandFile()
		if !ok {
			return toast.ShowError("Select a transcript first")
		}
		return m.openInsights(file, cmd == "tasks")
	case "email":
		file, ok := m.commandFile()
		if !ok {
			return toast.ShowError("Select a transcript first")
		}
		m.currentView = ViewEmail
		return m.compose.Load(file)
	case "refresh":
		switch m.currentView {
		case ViewInsights:
			return m.insights.Refresh()
		case ViewEmail:
			return m.compose.Refresh()
		default:
			return m.dashboard.LoadFiles()
		}
	case "export":
		switch m.currentView {
		case ViewInsights:
			return m.insights.Export()
		case ViewEmail:
			return m.compose.ExportEML()
		}
		return nil
	case "logout":
		m.session = nil
		m.dashboard.SetUser("")
		m.currentView = ViewLogin
		return m.login.Start()
	case "quit", "q":
		return tea.Quit
	default:
		return toast.ShowError("Unknown command: " + cmd)
	}
}

// commandFile returns the transcript a palette command applies to: the
// one on screen, or the one highlighted on the dashboard.
func (m Model) commandFile() (model.TranscriptFile, bool) {
	switch m.currentView {
	case ViewInsights:
		return m.insights.File(), m.insights.File().ID != ""
	case ViewEmail:
		return m.compose.File(), m.compose.File().ID != ""
	}
	return m.dashboard.Selected()
}
