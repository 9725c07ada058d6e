package insights

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/insight"
	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/theme"
	"github.com/nhle/transcript-insights/internal/ui"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

// BackMsg signals the parent to navigate back to the dashboard.
type BackMsg struct{}

// OpenEmailMsg asks the parent to show the email draft of the file.
type OpenEmailMsg struct {
	File model.TranscriptFile
}

// StatusSetter records a transcript's processing status.
type StatusSetter interface {
	SetStatus(ctx context.Context, id string, status model.TranscriptStatus) error
}

type loadedMsg struct {
	fileID  string
	items   []model.InsightWithTask
	err     error
	refresh bool
}

type updatedMsg struct {
	fileID string
	items  []model.InsightWithTask
	err    error
}

type suggestedMsg struct {
	fileID string
	items  []model.InsightWithTask
	err    error
}

type toggledMsg struct {
	fileID  string
	items   []model.InsightWithTask
	err     error
	message string
}

type exportedMsg struct {
	path string
	err  error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	suggestion string
}

// Model shows the insights of one transcript, grouped by category, with
// a task view and an inline editor.
type Model struct {
	svc       *insight.Service
	files     StatusSetter
	keys      *keys.KeyMap
	exportDir string

	file      model.TranscriptFile
	items     []model.InsightWithTask
	tab       int
	cursor    int
	showTasks bool

	editing  bool
	editor   textarea.Model
	editID   string
	original string

	suggest *huh.Form
	fb      *formBindings

	loading    bool
	refreshing bool
	saving     bool
	toggling   bool

	width  int
	height int
}

// New creates the insights view. Exports are written to exportDir.
func New(svc *insight.Service, files StatusSetter, k *keys.KeyMap, exportDir string, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe how this insight should change..."
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(6)

	return Model{
		svc:       svc,
		files:     files,
		keys:      k,
		exportDir: exportDir,
		editor:    ta,
		fb:        &formBindings{},
		width:     width,
		height:    height,
	}
}

// Load switches to file and fetches its insights.
func (m *Model) Load(file model.TranscriptFile) tea.Cmd {
	m.file = file
	m.items = nil
	m.tab = 0
	m.cursor = 0
	m.showTasks = false
	m.editing = false
	m.suggest = nil
	m.loading = true
	m.refreshing = false
	m.saving = false
	m.toggling = false
	return m.fetch(false)
}

// ShowTasks opens the task view.
func (m *Model) ShowTasks(on bool) {
	m.showTasks = on
	m.cursor = 0
}

// File returns the transcript being shown.
func (m Model) File() model.TranscriptFile { return m.file }

// Items returns the merged insights.
func (m Model) Items() []model.InsightWithTask { return m.items }

// Busy reports whether any request is in flight.
func (m Model) Busy() bool { return m.loading || m.refreshing || m.saving || m.toggling }

// Capturing reports whether an editor or form has keyboard focus.
func (m Model) Capturing() bool { return m.editing || m.suggest != nil }

func (m *Model) fetch(refresh bool) tea.Cmd {
	svc, files, fileID := m.svc, m.files, m.file.ID
	return func() tea.Msg {
		ctx := context.Background()
		items, err := svc.Fetch(ctx, fileID)
		if err != nil && api.IsNotFound(err) && files != nil {
			if serr := files.SetStatus(ctx, fileID, model.TranscriptError); serr != nil {
				log.Printf("marking %s as failed: %v", fileID, serr)
			}
		}
		return loadedMsg{fileID: fileID, items: items, err: err, refresh: refresh}
	}
}

// Refresh refetches the insights unless a request is already running.
func (m *Model) Refresh() tea.Cmd {
	if m.Busy() || m.file.ID == "" {
		return nil
	}
	m.refreshing = true
	return m.fetch(true)
}

// Export writes the task-flagged insights to a CSV file.
func (m Model) Export() tea.Cmd {
	if len(insight.Tasks(m.items)) == 0 {
		return toast.ShowError("No tasks to export")
	}
	items := m.items
	path := filepath.Join(m.exportDir, insight.ExportFilename(m.file.ID))
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := insight.ExportCSV(&buf, items); err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}
		return exportedMsg{path: path}
	}
}

// Update handles messages for the insights view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.fileID != m.file.ID {
			return m, nil
		}
		m.loading = false
		m.refreshing = false
		if msg.err != nil {
			log.Printf("loading insights: %v", msg.err)
			if msg.refresh {
				return m, toast.ShowFailure("Failed to refresh insights", msg.err)
			}
			return m, toast.ShowFailure("Failed to load insights", msg.err)
		}
		m.setItems(msg.items)
		if msg.refresh {
			return m, toast.ShowSuccess("Insights refreshed")
		}
		return m, nil

	case updatedMsg:
		if msg.fileID != m.file.ID {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			log.Printf("updating insight: %v", msg.err)
			m.editor.SetValue(m.original)
			return m, toast.ShowFailure("Failed to update insight", msg.err)
		}
		m.setItems(msg.items)
		m.editing = false
		m.editor.Blur()
		return m, toast.ShowSuccess("Insight updated successfully")

	case suggestedMsg:
		if msg.fileID != m.file.ID {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			log.Printf("updating insights: %v", msg.err)
			return m, toast.ShowFailure("Failed to update insights", msg.err)
		}
		m.setItems(msg.items)
		return m, toast.ShowSuccess("All insights updated successfully")

	case toggledMsg:
		if msg.fileID != m.file.ID {
			return m, nil
		}
		m.toggling = false
		if msg.err != nil {
			log.Printf("saving task state: %v", msg.err)
			return m, toast.ShowFailure("Failed to save task state", msg.err)
		}
		m.setItems(msg.items)
		if msg.message != "" {
			return m, toast.ShowSuccess(msg.message)
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			log.Printf("exporting tasks: %v", msg.err)
			if errors.Is(msg.err, insight.ErrNoTasks) {
				return m, toast.ShowError("No tasks to export")
			}
			return m, toast.ShowError("Failed to export tasks")
		}
		return m, toast.ShowSuccess("Tasks exported successfully: " + msg.path)
	}

	if m.suggest != nil {
		return m.updateSuggest(msg)
	}
	if m.editing {
		return m.updateEditor(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.NextTab):
		if n := len(insight.ByCategory(m.items)); n > 0 && !m.showTasks {
			m.tab = (m.tab + 1) % n
			m.cursor = 0
		}

	case key.Matches(keyMsg, m.keys.PrevTab):
		if n := len(insight.ByCategory(m.items)); n > 0 && !m.showTasks {
			m.tab = (m.tab - 1 + n) % n
			m.cursor = 0
		}

	case key.Matches(keyMsg, m.keys.TaskView):
		m.ShowTasks(!m.showTasks)

	case key.Matches(keyMsg, m.keys.ToggleTask):
		if it, ok := m.current(); ok && !m.Busy() {
			cmd := m.toggle(it, true)
			return m, cmd
		}

	case key.Matches(keyMsg, m.keys.ToggleDone):
		if it, ok := m.current(); ok && it.IsTask && !m.Busy() {
			cmd := m.toggle(it, false)
			return m, cmd
		}

	case key.Matches(keyMsg, m.keys.Edit), key.Matches(keyMsg, m.keys.Select):
		if it, ok := m.current(); ok && !m.Busy() {
			m.editing = true
			m.editID = it.ID
			m.original = it.Content
			m.editor.SetValue(it.Content)
			cmd := m.editor.Focus()
			return m, cmd
		}

	case key.Matches(keyMsg, m.keys.SuggestAll):
		if !m.Busy() && len(m.items) > 0 {
			cmd := m.startSuggest()
			return m, cmd
		}

	case key.Matches(keyMsg, m.keys.Refresh):
		cmd := m.Refresh()
		return m, cmd

	case key.Matches(keyMsg, m.keys.Export):
		return m, m.Export()

	case key.Matches(keyMsg, m.keys.Email):
		f := m.file
		return m, func() tea.Msg { return OpenEmailMsg{File: f} }
	}

	return m, nil
}

func (m Model) updateEditor(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			if m.saving {
				return m, nil
			}
			m.editing = false
			m.editor.Blur()
			return m, nil

		case key.Matches(keyMsg, m.keys.Save):
			content := m.editor.Value()
			if m.saving || strings.TrimSpace(content) == "" {
				return m, nil
			}
			m.saving = true
			svc, fileID, items, id := m.svc, m.file.ID, m.items, m.editID
			return m, func() tea.Msg {
				out, _, err := svc.UpdateOne(context.Background(), fileID, items, id, content)
				return updatedMsg{fileID: fileID, items: out, err: err}
			}
		}
	}
	if m.saving {
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) startSuggest() tea.Cmd {
	m.fb.suggestion = ""
	m.suggest = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Suggest improvements for all insights").
				Placeholder("e.g. focus on pricing concerns").
				Value(&m.fb.suggestion).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a suggestion is required")
					}
					return nil
				}),
		),
	).WithWidth(min(max(m.width-4, 40), 100)).WithShowHelp(false)
	return m.suggest.Init()
}

func (m Model) updateSuggest(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.suggest.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.suggest = f
	}

	switch m.suggest.State {
	case huh.StateCompleted:
		m.suggest = nil
		if m.Busy() {
			return m, nil
		}
		m.saving = true
		svc, fileID, changes := m.svc, m.file.ID, strings.TrimSpace(m.fb.suggestion)
		return m, func() tea.Msg {
			items, err := svc.UpdateAll(context.Background(), fileID, changes)
			return suggestedMsg{fileID: fileID, items: items, err: err}
		}
	case huh.StateAborted:
		m.suggest = nil
		return m, nil
	}
	return m, cmd
}

// toggle flips one flag of it. Each toggle writes the whole annotation
// mapping, so only one may run at a time.
func (m *Model) toggle(it model.InsightWithTask, task bool) tea.Cmd {
	m.toggling = true
	svc, fileID, items, id := m.svc, m.file.ID, m.items, it.ID
	return func() tea.Msg {
		ctx := context.Background()
		if task {
			out, err := svc.ToggleTask(ctx, fileID, items, id)
			msg := "Added to tasks"
			if it.IsTask {
				msg = "Removed from tasks"
			}
			return toggledMsg{fileID: fileID, items: out, err: err, message: msg}
		}
		out, err := svc.ToggleCompleted(ctx, fileID, items, id)
		return toggledMsg{fileID: fileID, items: out, err: err}
	}
}

// setItems replaces the list, keeping the tab and cursor in range.
func (m *Model) setItems(items []model.InsightWithTask) {
	m.items = items
	if n := len(insight.ByCategory(items)); m.tab >= n {
		m.tab = 0
	}
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// visible returns the insights shown under the current tab or view.
func (m Model) visible() []model.InsightWithTask {
	if m.showTasks {
		return insight.Tasks(m.items)
	}
	groups := insight.ByCategory(m.items)
	if len(groups) == 0 {
		return nil
	}
	return groups[m.tab].Items
}

func (m Model) current() (model.InsightWithTask, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return model.InsightWithTask{}, false
	}
	return v[m.cursor], true
}

// View renders the insights view.
func (m Model) View() string {
	if m.loading {
		return ui.Centered(m.width, m.height, "Loading insights...")
	}

	title := theme.TitleStyle.Render("Insights · " + m.file.Filename)
	if m.refreshing {
		title += theme.HelpStyle.Render("  refreshing...")
	}
	if m.saving || m.toggling {
		title += theme.HelpStyle.Render("  saving...")
	}

	if m.suggest != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, m.suggest.View())
	}

	header := m.renderTabs()
	bodyHeight := m.height - lipgloss.Height(title) - lipgloss.Height(header)

	if m.editing {
		editorTitle := lipgloss.NewStyle().Bold(true).Render("Edit insight")
		hint := theme.HelpStyle.Render("ctrl+s save · esc cancel")
		return lipgloss.JoinVertical(lipgloss.Left, title, header, editorTitle, m.editor.View(), hint)
	}

	items := m.visible()
	if len(items) == 0 {
		empty := "No insights for this transcript."
		if m.showTasks {
			empty = "No tasks yet. Press t on an insight to add it."
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, header,
			ui.Centered(m.width, bodyHeight, empty))
	}

	content, cursorLine := m.renderItems(items)
	vp := viewport.New(m.width, max(bodyHeight, 1))
	vp.SetContent(content)
	vp.SetYOffset(max(0, cursorLine-bodyHeight/3))

	return lipgloss.JoinVertical(lipgloss.Left, title, header, vp.View())
}

func (m Model) renderTabs() string {
	if m.showTasks {
		n := len(insight.Tasks(m.items))
		return ui.RenderTabs([]string{fmt.Sprintf("Tasks (%d)", n)}, 0)
	}
	groups := insight.ByCategory(m.items)
	tabs := make([]string, len(groups))
	for i, g := range groups {
		tabs[i] = fmt.Sprintf("%s (%d)", insight.CategoryLabel(g.Category), len(g.Items))
	}
	return ui.RenderTabs(tabs, m.tab)
}

// renderItems renders the list and returns the line the cursor item
// starts on.
func (m Model) renderItems(items []model.InsightWithTask) (string, int) {
	width := max(m.width-6, 20)
	var blocks []string
	cursorLine, line := 0, 0

	for i, it := range items {
		badge := "   "
		if it.IsTask {
			badge = theme.TaskBadgeStyle.Render("[ ]")
			if it.Completed {
				badge = theme.TaskBadgeStyle.Render("[✓]")
			}
		}
		meta := theme.CategoryStyle(string(it.Category)).Render(insight.CategoryLabel(it.Category)) +
			theme.PriorityStyle(it.Priority).Render(it.Priority)

		content := lipgloss.NewStyle().Width(width).Render(it.Content)
		if it.Completed {
			content = theme.DimmedStyle.Render(content)
		}
		block := lipgloss.JoinVertical(lipgloss.Left, badge+" "+meta, content, "")

		if i == m.cursor {
			cursorLine = line
			block = theme.SelectedItemStyle.Render(block)
		} else {
			block = theme.ListItemStyle.Render(block)
		}
		line += lipgloss.Height(block)
		blocks = append(blocks, block)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...), cursorLine
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editor.SetWidth(width - 4)
}
