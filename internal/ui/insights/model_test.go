package insights

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/insight"
	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

type fakeClient struct {
	getErr    error
	updateErr error
}

func (f *fakeClient) GetKeyInsights(context.Context, string) (*api.InsightsResponse, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &api.InsightsResponse{Insights: []api.KeyInsight{
		{Category: "Action Items", Content: []string{"Send the proposal"}},
		{Category: "Customer Emotion", Content: []string{"Positive"}},
	}}, nil
}

func (f *fakeClient) UpdateKeyInsights(context.Context, string, string) (*api.InsightsResponse, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.GetKeyInsights(context.Background(), "")
}

type recordingStatus struct {
	id     string
	status model.TranscriptStatus
}

func (r *recordingStatus) SetStatus(_ context.Context, id string, status model.TranscriptStatus) error {
	r.id, r.status = id, status
	return nil
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// drive runs cmd and feeds its message back into the model.
func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	m, next := m.Update(msg)
	if next == nil {
		return m, nil
	}
	return m, next()
}

func newLoaded(t *testing.T, c *fakeClient) (Model, *recordingStatus, string) {
	t.Helper()
	dir := t.TempDir()
	rs := &recordingStatus{}
	m := New(insight.NewService(c, store.NewMemoryStore()), rs, keys.DefaultKeyMap(), dir, 100, 30)
	cmd := m.Load(model.TranscriptFile{ID: "call", Filename: "call.txt"})
	if !m.Busy() {
		t.Fatal("Load should mark the view busy")
	}
	m, _ = drive(t, m, cmd)
	return m, rs, dir
}

func TestLoadGroupsByCategory(t *testing.T) {
	m, _, _ := newLoaded(t, &fakeClient{})
	if m.Busy() {
		t.Error("still busy after load")
	}
	if len(m.Items()) != 2 {
		t.Fatalf("items = %d, want 2", len(m.Items()))
	}
	if got := m.visible(); len(got) != 1 || got[0].Category != model.CategoryAction {
		t.Errorf("first tab = %+v", got)
	}

	m, _ = m.Update(runes("l"))
	if got := m.visible(); len(got) != 1 || got[0].Category != model.CategorySentiment {
		t.Errorf("second tab = %+v", got)
	}
}

func TestToggleTaskNotifies(t *testing.T) {
	m, _, _ := newLoaded(t, &fakeClient{})

	m, cmd := m.Update(runes("t"))
	m, msg := drive(t, m, cmd)
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Added to tasks" {
		t.Errorf("toast = %#v", msg)
	}
	if !m.Items()[0].IsTask {
		t.Error("first insight should be a task")
	}

	m.ShowTasks(true)
	if len(m.visible()) != 1 {
		t.Errorf("task view = %d items, want 1", len(m.visible()))
	}
}

func TestFailedEditRestoresContent(t *testing.T) {
	m, _, _ := newLoaded(t, &fakeClient{updateErr: errors.New("boom")})

	m, _ = m.Update(runes("e"))
	if !m.Capturing() {
		t.Fatal("editor should be open")
	}
	m, _ = m.Update(runes("!"))
	if m.editor.Value() == "Send the proposal" {
		t.Fatal("typing did not change the editor")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.Busy() {
		t.Error("save should mark the view busy")
	}
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); again != nil {
		t.Error("second save while busy should be ignored")
	}

	m, msg := drive(t, m, cmd)
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Failed to update insight" {
		t.Errorf("toast = %#v", msg)
	}
	if got := m.editor.Value(); got != "Send the proposal" {
		t.Errorf("editor = %q, want original content", got)
	}
	if m.Items()[0].Content != "Send the proposal" {
		t.Errorf("insight changed after failed update: %q", m.Items()[0].Content)
	}
}

func TestExportWithoutTasks(t *testing.T) {
	m, _, dir := newLoaded(t, &fakeClient{})

	msg := m.Export()()
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "No tasks to export" {
		t.Errorf("toast = %#v", msg)
	}
	if _, err := os.Stat(filepath.Join(dir, "tasks-call.csv")); !os.IsNotExist(err) {
		t.Errorf("export file exists: %v", err)
	}
}

func TestExportWritesFile(t *testing.T) {
	m, _, dir := newLoaded(t, &fakeClient{})
	m, cmd := m.Update(runes("t"))
	m, _ = drive(t, m, cmd)

	_, msg := drive(t, m, m.Export())
	if show, ok := msg.(toast.ShowMsg); !ok || show.Kind != toast.Success {
		t.Errorf("toast = %#v", msg)
	}
	data, err := os.ReadFile(filepath.Join(dir, "tasks-call.csv"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if want := "Task,Status,Category,Content\n1,Pending,Action,\"Send the proposal\"\n"; string(data) != want {
		t.Errorf("export = %q", data)
	}
}

func TestRefreshWhileBusyIsIgnored(t *testing.T) {
	m, _, _ := newLoaded(t, &fakeClient{})
	if cmd := m.Refresh(); cmd == nil {
		t.Fatal("first refresh should start")
	}
	if cmd := m.Refresh(); cmd != nil {
		t.Error("second refresh while busy should be ignored")
	}
}

func TestNotFoundMarksTranscriptFailed(t *testing.T) {
	c := &fakeClient{getErr: &api.Error{StatusCode: 404, Detail: "Text file not found"}}
	m, rs, _ := newLoaded(t, c)

	if rs.id != "call" || rs.status != model.TranscriptError {
		t.Errorf("SetStatus(%q, %q), want call/error", rs.id, rs.status)
	}
	if len(m.Items()) != 0 {
		t.Errorf("items = %d after failed load", len(m.Items()))
	}
}

func TestToggleWhileSavingIsIgnored(t *testing.T) {
	m, _, _ := newLoaded(t, &fakeClient{})

	m, first := m.Update(runes("t"))
	if first == nil || !m.Busy() {
		t.Fatal("toggle should start and mark the view busy")
	}

	// The second tab's insight cannot be toggled, refreshed or edited
	// until the first toggle is saved.
	m, _ = m.Update(runes("l"))
	for _, k := range []string{"t", "r", "s", "e"} {
		var cmd tea.Cmd
		m, cmd = m.Update(runes(k))
		if cmd != nil || m.Capturing() {
			t.Fatalf("%q accepted while a toggle is in flight", k)
		}
	}

	m, _ = drive(t, m, first)
	if m.Busy() {
		t.Fatal("still busy after the toggle was saved")
	}
	m, second := m.Update(runes("t"))
	m, _ = drive(t, m, second)

	for _, it := range m.Items() {
		if !it.IsTask {
			t.Errorf("%s lost its task flag", it.ID)
		}
	}
	tasks := 0
	for _, a := range m.svc.LoadAnnotations(context.Background(), "call") {
		if a.IsTask {
			tasks++
		}
	}
	if tasks != 2 {
		t.Errorf("stored %d tasks, want 2", tasks)
	}
}

func TestAuthFailureHintsAtToken(t *testing.T) {
	c := &fakeClient{}
	m, _, _ := newLoaded(t, c)
	c.getErr = &api.AuthError{BaseURL: "http://localhost:8000"}

	cmd := m.Refresh()
	_, msg := drive(t, m, cmd)
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Failed to refresh insights (check the API token)" {
		t.Errorf("toast = %#v", msg)
	}
}
