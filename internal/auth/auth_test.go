package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockProviderLogin(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid", username: "alex", password: "x"},
		{name: "trimmed username", username: "  alex ", password: "x"},
		{name: "empty username", username: "", password: "x", wantErr: ErrInvalidCredentials},
		{name: "blank password", username: "alex", password: "   ", wantErr: ErrInvalidCredentials},
	}

	p := NewMockProvider(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := p.Login(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && s.Username != "alex" {
				t.Errorf("Username = %q", s.Username)
			}
		})
	}
}

func TestMockProviderHonoursContext(t *testing.T) {
	p := NewMockProvider(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Login(ctx, "alex", "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Login error = %v, want context.Canceled", err)
	}
}

func TestMockProviderRejectsWithoutDelay(t *testing.T) {
	p := NewMockProvider(time.Hour)
	start := time.Now()
	if _, err := p.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login error = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("rejection waited for the simulated delay")
	}
}

func TestDisplayName(t *testing.T) {
	if got := (Session{Username: "Alex Smith"}).DisplayName(); got != "Alex" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := (Session{}).DisplayName(); got != "User" {
		t.Errorf("DisplayName of empty = %q", got)
	}
}
