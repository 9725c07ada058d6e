package compose

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/email"
	"github.com/nhle/transcript-insights/internal/keys"
	"github.com/nhle/transcript-insights/internal/mailbox"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
	"github.com/nhle/transcript-insights/internal/ui/toast"
)

type fakeClient struct {
	body  string
	sends int
}

func (f *fakeClient) draft() *api.MailDraftResponse {
	return &api.MailDraftResponse{
		Subject: "Follow up", Greeting: "Hi", Body: f.body, Closing: "Best", Signature: "Me",
	}
}

func (f *fakeClient) GetMailDraft(context.Context, string) (*api.MailDraftResponse, error) {
	return f.draft(), nil
}

func (f *fakeClient) UpdateMailDraft(_ context.Context, _, changes string) (*api.MailDraftResponse, error) {
	f.body = "Thanks, " + changes
	return f.draft(), nil
}

func (f *fakeClient) SendEmail(context.Context, api.SendEmailRequest) error {
	f.sends++
	return nil
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, next := m.Update(cmd())
	if next == nil {
		return m, nil
	}
	return m, next()
}

func newLoaded(t *testing.T, c *fakeClient) (Model, string) {
	t.Helper()
	dir := t.TempDir()
	svc := email.NewService(c, store.NewMemoryStore())
	m := New(svc, nil, keys.DefaultKeyMap(), dir, "", 100, 30)
	cmd := m.Load(model.TranscriptFile{ID: "call", Filename: "call.txt"})
	m, _ = drive(t, m, cmd)
	if m.Viewer() == nil {
		t.Fatal("draft not loaded")
	}
	return m, dir
}

func TestVersionTabsAndLatestRestore(t *testing.T) {
	c := &fakeClient{body: "Thanks"}
	m, _ := newLoaded(t, c)
	if tabs := m.Viewer().Tabs(); len(tabs) != 1 {
		t.Fatalf("tabs = %v, want only latest", tabs)
	}
	original := m.Viewer().Content()

	m.regenerating = true
	m, msg := drive(t, m, m.request(opRegenerate, "shorter"))
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Email draft updated successfully" {
		t.Errorf("toast = %#v", msg)
	}
	if tabs := m.Viewer().Tabs(); strings.Join(tabs, ",") != "latest,v1,v2" {
		t.Fatalf("tabs = %v", tabs)
	}
	latest := m.Viewer().Content()

	m, _ = m.Update(runes("l"))
	if m.Viewer().Selected() != "v1" || m.Viewer().Content() != original {
		t.Errorf("v1 shows %q", m.Viewer().Content())
	}

	// Historical versions are read-only.
	m, cmd := m.Update(runes("e"))
	if m.Capturing() {
		t.Error("editor opened on a historical version")
	}
	if cmd == nil {
		t.Error("expected a notice")
	}

	m, _ = m.Update(runes("h"))
	if m.Viewer().Selected() != email.LatestTab || m.Viewer().Content() != latest {
		t.Errorf("latest shows %q, want %q", m.Viewer().Content(), latest)
	}
}

func TestSendRejectsInvalidAddresses(t *testing.T) {
	c := &fakeClient{body: "Thanks"}
	m, _ := newLoaded(t, c)
	m.fb.to = "not-an-address"
	m.fb.from = "me@example.com"

	msg := m.send()()
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Please provide valid email addresses" {
		t.Errorf("toast = %#v", msg)
	}
	if c.sends != 0 || m.sending {
		t.Errorf("sends = %d, sending = %v", c.sends, m.sending)
	}
}

func TestSendValidRequest(t *testing.T) {
	c := &fakeClient{body: "Thanks"}
	m, _ := newLoaded(t, c)
	m.fb.to = " you@example.com "
	m.fb.from = "me@example.com"

	cmd := m.send()
	if !m.Busy() {
		t.Error("send should mark the view busy")
	}
	if m.send() != nil {
		t.Error("second send while busy should be ignored")
	}
	_, msg := drive(t, m, cmd)
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Email sent successfully" {
		t.Errorf("toast = %#v", msg)
	}
	if c.sends != 1 {
		t.Errorf("sends = %d, want 1", c.sends)
	}
}

func TestEditAppliesToLatest(t *testing.T) {
	m, _ := newLoaded(t, &fakeClient{body: "Thanks"})

	m, _ = m.Update(runes("e"))
	if !m.Capturing() {
		t.Fatal("editor should be open on latest")
	}
	m.editor.SetValue("Edited")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.Capturing() || m.Viewer().Content() != "Edited" {
		t.Errorf("content = %q", m.Viewer().Content())
	}
}

func TestExportEML(t *testing.T) {
	m, dir := newLoaded(t, &fakeClient{body: "Thanks"})
	m.fb.to = "you@example.com"

	cmd := m.ExportEML()
	_, msg := drive(t, m, cmd)
	if show, ok := msg.(toast.ShowMsg); !ok || show.Kind != toast.Success {
		t.Errorf("toast = %#v", msg)
	}
	data, err := os.ReadFile(filepath.Join(dir, "email-call.eml"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "Subject: Follow up") {
		t.Errorf("message = %q", data)
	}
}

func TestSaveDraftWithoutMailbox(t *testing.T) {
	m, _ := newLoaded(t, &fakeClient{body: "Thanks"})
	msg := m.saveDraft()()
	if show, ok := msg.(toast.ShowMsg); !ok || show.Kind != toast.Error {
		t.Errorf("toast = %#v", msg)
	}
}

func TestFeedbackRefusedWhileRefreshing(t *testing.T) {
	m, _ := newLoaded(t, &fakeClient{body: "Thanks"})

	refresh := m.Refresh()
	if refresh == nil {
		t.Fatal("refresh should start")
	}
	m, cmd := m.Update(runes("f"))
	if m.Capturing() || cmd != nil {
		t.Fatal("feedback form opened while refreshing")
	}

	m, _ = drive(t, m, refresh)
	if m.Busy() {
		t.Fatal("still busy after refresh")
	}
	m, _ = m.Update(runes("f"))
	if !m.Capturing() {
		t.Error("feedback form should open once the refresh is done")
	}
}

func TestRefreshRefusedWhileRegenerating(t *testing.T) {
	m, _ := newLoaded(t, &fakeClient{body: "Thanks"})

	m.regenerating = true
	regen := m.request(opRegenerate, "shorter")
	if m.Refresh() != nil {
		t.Fatal("refresh started while regenerating")
	}
	if _, cmd := m.Update(runes("r")); cmd != nil {
		t.Fatal("r accepted while regenerating")
	}

	m, _ = drive(t, m, regen)
	if m.Busy() {
		t.Error("still busy after regeneration")
	}
	if tabs := m.Viewer().Tabs(); strings.Join(tabs, ",") != "latest,v1,v2" {
		t.Errorf("tabs = %v", tabs)
	}
}

func TestDraftResultClearsOnlyItsOwnFlag(t *testing.T) {
	m, _ := newLoaded(t, &fakeClient{body: "Thanks"})

	m.refreshing = true
	m.regenerating = true
	m, _ = m.Update(draftMsg{fileID: "call", op: opRegenerate, err: context.Canceled})
	if m.regenerating || !m.refreshing {
		t.Errorf("regenerating = %v, refreshing = %v", m.regenerating, m.refreshing)
	}
}

type rejectingDrafts struct{}

func (rejectingDrafts) Save(context.Context, email.Message) error {
	return &mailbox.AuthError{Username: "alex", Err: context.DeadlineExceeded}
}

func (rejectingDrafts) Mailbox() string { return "Drafts" }

func TestSaveDraftRejectedPassword(t *testing.T) {
	m, _ := newLoaded(t, &fakeClient{body: "Thanks"})
	m.drafts = rejectingDrafts{}

	cmd := m.saveDraft()
	m, msg := drive(t, m, cmd)
	if show, ok := msg.(toast.ShowMsg); !ok || show.Text != "Failed to save email draft (check the IMAP password)" {
		t.Errorf("toast = %#v", msg)
	}
	if m.Busy() {
		t.Error("still busy after a failed save")
	}
}
