package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/credential"
)

type fakeService struct {
	uploads atomic.Int32
	drafts  atomic.Int32
	subject string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/upload":
		f.uploads.Add(1)
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(api.UploadResponse{Filename: header.Filename, FileType: "txt"})
	case r.URL.Path == "/api/get-key-insights/call":
		_, _ = w.Write([]byte(`{"insights":[
			{"category":"Next Actions","content":["Send the proposal"]},
			{"category":"Customer Emotion","content":["Positive"]}
		]}`))
	case r.URL.Path == "/api/get-key-insights/gone":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Text file not found"}`))
	case r.URL.Path == "/api/get-mail-draft/call":
		f.drafts.Add(1)
		_ = json.NewEncoder(w).Encode(api.MailDraftResponse{
			Subject: f.subject, Greeting: "Hi", Body: "Thanks", Closing: "Best", Signature: "Me",
		})
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	t    *testing.T
	dir  string
	cfg  string
	opts *options
	svc  *fakeService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	svc := &fakeService{subject: "Follow up"}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	yaml := "api:\n  base_url: " + srv.URL + "\nstorage:\n  path: " + filepath.Join(dir, "state.db") + "\n"
	if err := os.WriteFile(cfg, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	vault := credential.NewVault(keyring.NewArrayKeyring(nil))
	opts := &options{openVault: func() (*credential.Vault, error) { return vault, nil }}
	return &harness{t: t, dir: dir, cfg: cfg, opts: opts, svc: svc}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd("test", h.opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", h.cfg, "--export-dir", h.dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestUploadAndList(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "call.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := h.mustRun("upload", path)
	if !strings.Contains(out, "File uploaded successfully") {
		t.Errorf("upload output = %q", out)
	}

	out = h.mustRun("files")
	if !strings.Contains(out, "call") || !strings.Contains(out, "processed") {
		t.Errorf("files output = %q", out)
	}
}

func TestUploadRejectsBeforeNetwork(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "report.docx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := h.run("upload", path); err == nil {
		t.Fatal("expected an error for .docx")
	}
	if n := h.svc.uploads.Load(); n != 0 {
		t.Errorf("uploads = %d, want 0", n)
	}
}

func TestTaskFlagsPersistAcrossRuns(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("tasks", "toggle", "call", "1")
	if !strings.Contains(out, "Added to tasks") {
		t.Errorf("toggle output = %q", out)
	}
	h.mustRun("tasks", "complete", "call", "1")

	out = h.mustRun("tasks", "list", "call")
	if !strings.Contains(out, "[x] Action") || strings.Contains(out, "Positive") {
		t.Errorf("tasks list = %q", out)
	}

	out = h.mustRun("tasks", "export", "call", "-o", "-")
	want := "Task,Status,Category,Content\n1,Completed,Action,\"Send the proposal\"\n"
	if out != want {
		t.Errorf("export = %q, want %q", out, want)
	}
}

func TestExportWithoutTasksWritesNothing(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("tasks", "export", "call"); err == nil {
		t.Fatal("expected an error without tasks")
	}
	if _, err := os.Stat(filepath.Join(h.dir, "tasks-call.csv")); !os.IsNotExist(err) {
		t.Errorf("export file exists: %v", err)
	}
}

func TestMissingTranscriptIsMarkedFailed(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "gone.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.mustRun("upload", path)

	if _, err := h.run("insights", "list", "gone"); err == nil {
		t.Fatal("expected an error for a missing transcript")
	}
	out := h.mustRun("files")
	if !strings.Contains(out, "error") {
		t.Errorf("files output = %q, want error status", out)
	}
}

func TestEmailRefreshKeepsHistory(t *testing.T) {
	h := newHarness(t)

	h.mustRun("email", "show", "call")
	out := h.mustRun("email", "refresh", "call")
	if !strings.Contains(out, "No changes since v1") {
		t.Errorf("refresh output = %q", out)
	}

	h.svc.subject = "Follow up, revised"
	out = h.mustRun("email", "refresh", "call")
	if !strings.Contains(out, "Saved as v2") {
		t.Errorf("refresh output = %q", out)
	}

	out = h.mustRun("email", "versions", "call")
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "v2") {
		t.Errorf("versions = %q", out)
	}
}

func TestEmailSendRejectsInvalidAddress(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("email", "send", "call", "--to", "nobody", "--from", "me@example.com"); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestEmailExportWritesMessage(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("email", "export", "call", "--to", "you@example.com", "-o", "-")
	if !strings.Contains(out, "Subject: Follow up") || !strings.Contains(out, "Thanks") {
		t.Errorf("message = %q", out)
	}
}

func TestSaveDraftNeedsMailbox(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("email", "save-draft", "call")
	if err == nil || !strings.Contains(err.Error(), "no mailbox configured") {
		t.Errorf("err = %v, want errMailboxDisabled", err)
	}
}

func TestAuthTokenSetAndDelete(t *testing.T) {
	h := newHarness(t)
	h.mustRun("auth", "token", "set", "secret")

	v, _ := h.opts.openVault()
	if got, _ := v.Get(credential.APITokenKey); got != "secret" {
		t.Errorf("token = %q", got)
	}

	h.mustRun("auth", "token", "delete")
	if got, _ := v.Lookup(credential.APITokenKey); got != "" {
		t.Errorf("token after delete = %q", got)
	}
}
