package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down    key.Binding
	Up      key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Dashboard
	Upload   key.Binding
	Insights key.Binding
	Email    key.Binding

	// Insights
	ToggleTask key.Binding
	ToggleDone key.Binding
	TaskView   key.Binding
	Edit       key.Binding
	SuggestAll key.Binding
	Export     key.Binding

	// Email
	Feedback  key.Binding
	Send      key.Binding
	SaveEML   key.Binding
	SaveDraft key.Binding

	// Editors
	Save key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab/l", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h"),
			key.WithHelp("shift+tab/h", "previous tab"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload transcript"),
		),
		Insights: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "insights"),
		),
		Email: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "email draft"),
		),
		ToggleTask: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle task"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle completed"),
		),
		TaskView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "insights/tasks view"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		SuggestAll: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "suggest changes"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export tasks"),
		),
		Feedback: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "feedback"),
		),
		Send: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "send email"),
		),
		SaveEML: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "write .eml"),
		),
		SaveDraft: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "save to drafts"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Command,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab, k.Select, k.Back, k.Quit},
		{k.Command, k.Help, k.Refresh, k.Upload, k.Insights, k.Email},
		{k.ToggleTask, k.ToggleDone, k.TaskView, k.Edit, k.SuggestAll, k.Export},
		{k.Feedback, k.Send, k.SaveEML, k.SaveDraft, k.Save},
	}
}
