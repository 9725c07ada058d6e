package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/theme"
)

// Model is the help overlay view. It lists the keys of the view it was
// opened from followed by every binding.
type Model struct {
	keys    *keys.KeyMap
	help    help.Model
	context string
	local   []key.Binding
	width   int
	height  int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetContext records the view the overlay was opened from and the
// bindings that view responds to.
func (m *Model) SetContext(name string, bindings []key.Binding) {
	m.context = name
	m.local = bindings
}

// View renders the help overlay.
func (m Model) View() string {
	m.help.Width = m.width - 4

	sections := []string{theme.TitleStyle.Render("Keyboard Shortcuts")}
	if m.context != "" && len(m.local) > 0 {
		sub := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		sections = append(sections,
			sub.Render(m.context),
			m.help.ShortHelpView(m.local),
			"",
			sub.Render("All keys"),
		)
	}

	m.help.ShowAll = true
	sections = append(sections, m.help.View(m.keys))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
