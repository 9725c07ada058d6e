package dashboard

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/theme"
	"github.com/nhle/transcript-insights/internal/transcript"
	"github.com/nhle/transcript-insights/internal/ui"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

// FilesLoadedMsg carries the stored transcript list.
type FilesLoadedMsg struct {
	Files []model.TranscriptFile
}

// OpenInsightsMsg asks the parent to show the insights of a file.
type OpenInsightsMsg struct {
	File model.TranscriptFile
}

// OpenEmailMsg asks the parent to show the email draft of a file.
type OpenEmailMsg struct {
	File model.TranscriptFile
}

// uploadedMsg carries the result of an upload.
type uploadedMsg struct {
	file model.TranscriptFile
	err  error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	path string
}

// Model is the dashboard: recent transcripts and the upload form.
type Model struct {
	files     *transcript.Service
	keys      *keys.KeyMap
	list      list.Model
	form      *huh.Form
	fb        *formBindings
	uploading bool
	user      string
	width     int
	height    int
}

// New creates a dashboard backed by the transcript service.
func New(files *transcript.Service, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, FileDelegate{}, width, height-4)
	l.Title = "Recent Transcripts"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		files:  files,
		keys:   k,
		list:   l,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init loads the file list.
func (m Model) Init() tea.Cmd {
	return m.LoadFiles()
}

// SetUser sets the name used in the greeting.
func (m *Model) SetUser(name string) { m.user = name }

// Uploading reports whether an upload is in flight.
func (m Model) Uploading() bool { return m.uploading }

// FormActive reports whether the upload form has focus.
func (m Model) FormActive() bool { return m.form != nil }

// Selected returns the highlighted file.
func (m Model) Selected() (model.TranscriptFile, bool) {
	fi, ok := m.list.SelectedItem().(FileItem)
	return fi.File, ok
}

// LoadFiles returns a command that reads the stored list.
func (m Model) LoadFiles() tea.Cmd {
	svc := m.files
	return func() tea.Msg {
		return FilesLoadedMsg{Files: svc.List(context.Background())}
	}
}

// StartUpload opens the upload form.
func (m *Model) StartUpload() tea.Cmd {
	if m.uploading {
		return nil
	}
	m.fb.path = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Upload Transcript").
				Description("Path to a .txt or .pdf file (max 5MB)").
				Placeholder("~/calls/kickoff.txt").
				Value(&m.fb.path).
				Validate(validateUpload),
		),
	).WithWidth(min(max(m.width-4, 40), 100)).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FilesLoadedMsg:
		items := make([]list.Item, len(msg.Files))
		for i, f := range msg.Files {
			items[i] = FileItem{File: f}
		}
		return m, m.list.SetItems(items)

	case uploadedMsg:
		m.uploading = false
		if msg.err != nil {
			log.Printf("upload failed: %v", msg.err)
			return m, toast.ShowError(uploadErrorText(msg.err))
		}
		file := msg.file
		return m, tea.Batch(
			toast.ShowSuccess("File uploaded successfully"),
			tea.Sequence(m.LoadFiles(), func() tea.Msg { return selectMsg{id: file.ID} }),
		)

	case selectMsg:
		for i, it := range m.list.Items() {
			if fi, ok := it.(FileItem); ok && fi.File.ID == msg.id {
				m.list.Select(i)
			}
		}
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Insights):
			if f, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenInsightsMsg{File: f} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Email):
			if f, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenEmailMsg{File: f} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Upload):
			cmd := m.StartUpload()
			return m, cmd

		case key.Matches(msg, m.keys.Refresh):
			return m, m.LoadFiles()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// selectMsg moves the cursor to a file once the list has reloaded.
type selectMsg struct {
	id string
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		cmd = m.upload(expandHome(m.fb.path))
		return m, cmd
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// upload starts an upload unless one is already running.
func (m *Model) upload(path string) tea.Cmd {
	if m.uploading {
		return nil
	}
	m.uploading = true
	svc := m.files
	return func() tea.Msg {
		f, err := svc.Upload(context.Background(), path)
		return uploadedMsg{file: f, err: err}
	}
}

// View renders the dashboard.
func (m Model) View() string {
	name := m.user
	if name == "" {
		name = "User"
	}
	greeting := theme.TitleStyle.Render("Welcome back, " + name)
	sub := theme.HelpStyle.Render(
		"Upload a conversation transcript to get insights and professional email drafts",
	)

	var body string
	switch {
	case m.form != nil:
		body = m.form.View()
	case m.uploading:
		body = ui.Centered(m.width, m.height-4, "Uploading...")
	case len(m.list.Items()) == 0:
		body = ui.Centered(m.width, m.height-4,
			"No transcripts yet",
			"",
			"Press u to upload your first transcript.",
		)
	default:
		body = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, greeting, sub, body)
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-4)
}

// validateUpload rejects paths the service would refuse, before any
// network I/O.
func validateUpload(path string) error {
	path = expandHome(path)
	if path == "" {
		return errors.New("a file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return transcript.Validate(info.Name(), info.Size())
}

// uploadErrorText maps an upload failure to the notice shown to the user.
func uploadErrorText(err error) string {
	switch {
	case errors.Is(err, transcript.ErrUnsupportedType):
		return "Only .txt and .pdf files are supported"
	case errors.Is(err, transcript.ErrTooLarge):
		return "File size exceeds 5MB limit"
	default:
		return "Failed to upload file"
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
