// Package auth provides the login used by the terminal UI. There is no
// account backend: the mock provider accepts any non-empty credentials.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrInvalidCredentials is returned for an empty username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Session is a logged-in user.
type Session struct {
	Username   string
	LoggedInAt time.Time
}

// Provider authenticates a user.
type Provider interface {
	Login(ctx context.Context, username, password string) (Session, error)
}

// MockProvider accepts any non-empty username and password after a
// simulated delay.
type MockProvider struct {
	delay time.Duration
	now   func() time.Time
}

// NewMockProvider returns a provider that waits delay before answering
// a well-formed login.
func NewMockProvider(delay time.Duration) *MockProvider {
	return &MockProvider{delay: delay, now: time.Now}
}

// Login validates the credentials and returns a session.
func (p *MockProvider) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return Session{}, ErrInvalidCredentials
	}

	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Session{}, ctx.Err()
		case <-t.C:
		}
	}

	return Session{Username: username, LoggedInAt: p.now()}, nil
}

// DisplayName returns the first word of the username, used in greetings.
func (s Session) DisplayName() string {
	if f := strings.Fields(s.Username); len(f) > 0 {
		return f[0]
	}
	return "User"
}
