package toast

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nhle/transcript-insights/internal/api"
)

func TestShowAndExpire(t *testing.T) {
	m := New()

	m, cmd := m.Update(ShowMsg{Kind: Error, Text: "Failed to upload file"})
	if cmd == nil {
		t.Fatal("ShowMsg should schedule an expiry")
	}
	if !m.Visible() || m.Text() != "Failed to upload file" {
		t.Fatalf("toast = %q", m.Text())
	}

	// A newer toast survives the older one's expiry.
	m, _ = m.Update(ShowMsg{Kind: Success, Text: "File uploaded successfully"})
	m, _ = m.Update(expireMsg{seq: 1})
	if m.Text() != "File uploaded successfully" {
		t.Errorf("stale expiry hid the newer toast: %q", m.Text())
	}

	m, _ = m.Update(expireMsg{seq: 2})
	if m.Visible() {
		t.Error("toast still visible after expiry")
	}
	if m.View() != "" {
		t.Errorf("View = %q after expiry", m.View())
	}
}

func TestHelpersEmitShowMsg(t *testing.T) {
	msg := ShowSuccess("ok")()
	if got, ok := msg.(ShowMsg); !ok || got.Kind != Success || got.Text != "ok" {
		t.Errorf("ShowSuccess = %#v", msg)
	}
	msg = ShowError("bad")()
	if got, ok := msg.(ShowMsg); !ok || got.Kind != Error {
		t.Errorf("ShowError = %#v", msg)
	}
}

func TestShowFailureHintsAtToken(t *testing.T) {
	authErr := fmt.Errorf("fetching insights: %w", &api.AuthError{BaseURL: "http://localhost:8000"})
	msg := ShowFailure("Failed to load insights", authErr)()
	if got := msg.(ShowMsg); got.Kind != Error || got.Text != "Failed to load insights (check the API token)" {
		t.Errorf("ShowFailure(auth) = %#v", got)
	}

	msg = ShowFailure("Failed to load insights", errors.New("timeout"))()
	if got := msg.(ShowMsg); got.Text != "Failed to load insights" {
		t.Errorf("ShowFailure(other) = %#v", got)
	}
}
