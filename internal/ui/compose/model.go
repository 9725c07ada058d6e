package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/email"
	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/mailbox"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/theme"
	"github.com/nhle/transcript-insights/internal/ui"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

// BackMsg signals the parent to navigate back.
type BackMsg struct{}

// DraftSaver stores a message in the user's drafts mailbox.
type DraftSaver interface {
	Save(ctx context.Context, m email.Message) error
	Mailbox() string
}

type draftMsg struct {
	fileID string
	state  email.State
	err    error
	op     operation
}

type sentMsg struct{ err error }

type savedMsg struct {
	where string
	err   error
}

type operation int

const (
	opLoad operation = iota
	opRefresh
	opRegenerate
)

type formBindings struct {
	feedback string
	to       string
	from     string
}

// Model shows the follow-up email draft of a transcript with its version
// history, an editor for the latest version and send/save actions.
type Model struct {
	svc       *email.Service
	drafts    DraftSaver
	keys      *keys.KeyMap
	exportDir string

	file    model.TranscriptFile
	viewer  *email.Viewer
	editor  textarea.Model
	editing bool

	form     *huh.Form
	sendForm bool
	fb       *formBindings

	loading      bool
	refreshing   bool
	regenerating bool
	sending      bool
	saving       bool

	width  int
	height int
}

// New creates the email view. drafts may be nil when no mailbox is
// configured. defaultFrom prefills the sender address.
func New(svc *email.Service, drafts DraftSaver, k *keys.KeyMap, exportDir, defaultFrom string, width, height int) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(max(height-8, 5))

	return Model{
		svc:       svc,
		drafts:    drafts,
		keys:      k,
		exportDir: exportDir,
		editor:    ta,
		fb:        &formBindings{from: defaultFrom},
		width:     width,
		height:    height,
	}
}

// Load switches to file and fetches its draft.
func (m *Model) Load(file model.TranscriptFile) tea.Cmd {
	m.file = file
	m.viewer = nil
	m.editing = false
	m.form = nil
	m.loading = true
	m.refreshing = false
	m.regenerating = false
	m.fb.feedback = ""
	m.fb.to = ""
	return m.request(opLoad, "")
}

// File returns the transcript being shown.
func (m Model) File() model.TranscriptFile { return m.file }

// Viewer returns the draft display state, or nil before the first load.
func (m Model) Viewer() *email.Viewer { return m.viewer }

// Busy reports whether any request is in flight.
func (m Model) Busy() bool {
	return m.loading || m.refreshing || m.regenerating || m.sending || m.saving
}

// fetching reports whether a draft request is in flight. Draft requests
// rewrite the version history, so only one may run at a time.
func (m Model) fetching() bool { return m.loading || m.refreshing || m.regenerating }

// Capturing reports whether an editor or form has keyboard focus.
func (m Model) Capturing() bool { return m.editing || m.form != nil }

func (m *Model) request(op operation, feedback string) tea.Cmd {
	svc, fileID := m.svc, m.file.ID
	return func() tea.Msg {
		ctx := context.Background()
		var (
			state email.State
			err   error
		)
		switch op {
		case opRegenerate:
			state, err = svc.Regenerate(ctx, fileID, feedback)
		case opRefresh:
			state, err = svc.Refresh(ctx, fileID)
		default:
			state, err = svc.Load(ctx, fileID)
		}
		return draftMsg{fileID: fileID, state: state, err: err, op: op}
	}
}

// Refresh refetches the draft unless a request is already running.
func (m *Model) Refresh() tea.Cmd {
	if m.fetching() || m.file.ID == "" {
		return nil
	}
	m.refreshing = true
	return m.request(opRefresh, "")
}

// ExportEML writes the displayed draft to an .eml file.
func (m *Model) ExportEML() tea.Cmd {
	if m.viewer == nil || m.saving {
		return nil
	}
	m.saving = true
	msg := m.message()
	path := filepath.Join(m.exportDir, email.ExportFilename(m.file.ID))
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := email.Render(&buf, msg); err != nil {
			return savedMsg{err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return savedMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}
		return savedMsg{where: path}
	}
}

func (m *Model) saveDraft() tea.Cmd {
	if m.viewer == nil || m.saving {
		return nil
	}
	if m.drafts == nil {
		return toast.ShowError("No mailbox configured")
	}
	m.saving = true
	drafts, msg := m.drafts, m.message()
	return func() tea.Msg {
		if err := drafts.Save(context.Background(), msg); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{where: drafts.Mailbox()}
	}
}

// message builds an outgoing message from the displayed draft.
func (m Model) message() email.Message {
	return email.Message{
		From:    strings.TrimSpace(m.fb.from),
		To:      strings.TrimSpace(m.fb.to),
		Subject: m.viewer.Draft().Subject,
		Content: m.viewer.Content(),
		Date:    time.Now(),
	}
}

// Update handles messages for the email view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftMsg:
		if msg.fileID != m.file.ID {
			return m, nil
		}
		return m.handleDraft(msg)

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			log.Printf("sending email: %v", msg.err)
			if errors.Is(msg.err, email.ErrInvalidRequest) {
				return m, toast.ShowError("Please provide valid email addresses")
			}
			return m, toast.ShowFailure("Failed to send email", msg.err)
		}
		return m, toast.ShowSuccess("Email sent successfully")

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			log.Printf("saving email draft: %v", msg.err)
			if mailbox.IsAuthError(msg.err) {
				return m, toast.ShowError("Failed to save email draft (check the IMAP password)")
			}
			return m, toast.ShowError("Failed to save email draft")
		}
		return m, toast.ShowSuccess("Email draft saved to " + msg.where)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.editing {
		return m.updateEditor(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(keyMsg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}
	if m.viewer == nil {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.NextTab):
		m.selectTab(1)

	case key.Matches(keyMsg, m.keys.PrevTab):
		m.selectTab(-1)

	case key.Matches(keyMsg, m.keys.Edit), key.Matches(keyMsg, m.keys.Select):
		if !m.viewer.Editable() {
			return m, toast.ShowError("Switch to latest to edit the draft")
		}
		m.editing = true
		m.editor.SetValue(m.viewer.Content())
		cmd := m.editor.Focus()
		return m, cmd

	case key.Matches(keyMsg, m.keys.Feedback):
		if m.fetching() {
			return m, nil
		}
		cmd := m.startFeedback()
		return m, cmd

	case key.Matches(keyMsg, m.keys.Refresh):
		cmd := m.Refresh()
		return m, cmd

	case key.Matches(keyMsg, m.keys.Send):
		if m.sending {
			return m, nil
		}
		cmd := m.startSend()
		return m, cmd

	case key.Matches(keyMsg, m.keys.SaveEML):
		cmd := m.ExportEML()
		return m, cmd

	case key.Matches(keyMsg, m.keys.SaveDraft):
		cmd := m.saveDraft()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleDraft(msg draftMsg) (Model, tea.Cmd) {
	switch msg.op {
	case opRegenerate:
		m.regenerating = false
	case opRefresh:
		m.refreshing = false
	default:
		m.loading = false
	}

	if msg.err != nil {
		log.Printf("email draft for %s: %v", m.file.ID, msg.err)
		switch msg.op {
		case opRegenerate:
			return m, toast.ShowFailure("Failed to update email draft", msg.err)
		case opRefresh:
			return m, toast.ShowFailure("Failed to refresh email draft", msg.err)
		default:
			return m, toast.ShowFailure("Failed to load email draft", msg.err)
		}
	}

	if m.viewer == nil {
		m.viewer = email.NewViewer(msg.state.Draft, msg.state.Versions)
	} else {
		m.viewer.Reset(msg.state.Draft, msg.state.Versions)
	}
	m.editing = false

	switch msg.op {
	case opRegenerate:
		m.fb.feedback = ""
		return m, toast.ShowSuccess("Email draft updated successfully")
	case opRefresh:
		return m, toast.ShowSuccess("Email draft refreshed")
	}
	return m, nil
}

func (m *Model) selectTab(delta int) {
	tabs := m.viewer.Tabs()
	cur := 0
	for i, t := range tabs {
		if t == m.viewer.Selected() {
			cur = i
			break
		}
	}
	next := (cur + delta + len(tabs)) % len(tabs)
	if err := m.viewer.Select(tabs[next]); err != nil {
		log.Printf("selecting %s: %v", tabs[next], err)
	}
}

func (m Model) updateEditor(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			m.editing = false
			m.editor.Blur()
			return m, nil
		case key.Matches(keyMsg, m.keys.Save):
			if err := m.viewer.Edit(m.editor.Value()); err != nil {
				return m, toast.ShowError("Switch to latest to edit the draft")
			}
			m.editing = false
			m.editor.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) startFeedback() tea.Cmd {
	m.sendForm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("How should the draft change?").
				Placeholder("e.g. make it shorter and more formal").
				Value(&m.fb.feedback).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("feedback is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

func (m *Model) startSend() tea.Cmd {
	m.sendForm = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("From").
				Placeholder("you@example.com").
				Value(&m.fb.from),
			huh.NewInput().
				Title("To").
				Placeholder("customer@example.com").
				Value(&m.fb.to),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		if m.sendForm {
			cmd = m.send()
			return m, cmd
		}
		if m.fetching() {
			return m, nil
		}
		m.regenerating = true
		cmd = m.request(opRegenerate, m.fb.feedback)
		return m, cmd
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) send() tea.Cmd {
	if m.sending || m.viewer == nil {
		return nil
	}
	req := email.SendRequest{
		To:      m.fb.to,
		From:    m.fb.from,
		Subject: m.viewer.Draft().Subject,
		Content: m.viewer.Content(),
	}
	if err := req.Normalize().Validate(); err != nil {
		log.Printf("rejecting email: %v", err)
		return toast.ShowError("Please provide valid email addresses")
	}
	m.sending = true
	svc := m.svc
	return func() tea.Msg {
		return sentMsg{err: svc.Send(context.Background(), req)}
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// View renders the email view.
func (m Model) View() string {
	if m.loading {
		return ui.Centered(m.width, m.height, "Loading email draft...")
	}
	if m.viewer == nil {
		return ui.Centered(m.width, m.height, "No email draft.", theme.HelpStyle.Render("press r to retry"))
	}

	title := theme.TitleStyle.Render("Email · " + m.file.Filename)
	switch {
	case m.regenerating:
		title += theme.HelpStyle.Render("  regenerating...")
	case m.refreshing:
		title += theme.HelpStyle.Render("  refreshing...")
	case m.sending:
		title += theme.HelpStyle.Render("  sending...")
	case m.saving:
		title += theme.HelpStyle.Render("  saving...")
	}

	tabs := m.viewer.Tabs()
	active := 0
	for i, t := range tabs {
		if t == m.viewer.Selected() {
			active = i
		}
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		ui.RenderTabs(tabs, active),
		lipgloss.NewStyle().Bold(true).Render("Subject: ")+m.viewer.Draft().Subject,
	)

	if m.form != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, header, "", m.form.View())
	}
	if m.editing {
		hint := theme.HelpStyle.Render("ctrl+s apply · esc cancel")
		return lipgloss.JoinVertical(lipgloss.Left, title, header, m.editor.View(), hint)
	}

	body := m.viewer.Content()
	if !m.viewer.Editable() {
		body = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(body)
	}
	bodyHeight := max(m.height-lipgloss.Height(title)-lipgloss.Height(header)-1, 1)
	vp := viewport.New(m.width, bodyHeight)
	vp.SetContent(lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, title, header, "", vp.View())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editor.SetWidth(width - 4)
	m.editor.SetHeight(max(height-8, 5))
}
