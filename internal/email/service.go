package email

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
)

// ErrEmptyFeedback is returned when regenerating without feedback.
var ErrEmptyFeedback = errors.New("feedback is required to regenerate the draft")

// ErrInvalidRequest wraps validation failures of a send request.
var ErrInvalidRequest = errors.New("invalid email")

// Client is the subset of the service API used for email drafts.
type Client interface {
	GetMailDraft(ctx context.Context, fileID string) (*api.MailDraftResponse, error)
	UpdateMailDraft(ctx context.Context, fileID, suggestedChanges string) (*api.MailDraftResponse, error)
	SendEmail(ctx context.Context, req api.SendEmailRequest) error
}

// State is the draft of a transcript together with its version history.
type State struct {
	Draft    model.EmailDraft
	Versions []model.EmailDraft

	// Appended reports whether the last operation added a version.
	Appended bool
}

// Service fetches and regenerates drafts and keeps their version history.
type Service struct {
	client Client
	store  store.Store
	now    func() time.Time

	// mu guards the history read-modify-write in observe.
	mu sync.Mutex
}

// NewService creates an email service.
func NewService(c Client, s store.Store) *Service {
	return &Service{client: c, store: s, now: time.Now}
}

// Load fetches the draft of a transcript and records it in the history.
func (s *Service) Load(ctx context.Context, fileID string) (State, error) {
	resp, err := s.client.GetMailDraft(ctx, fileID)
	if err != nil {
		return State{}, fmt.Errorf("fetching email draft for %s: %w", fileID, err)
	}
	return s.observe(ctx, fileID, resp)
}

// Refresh fetches the draft again. A draft identical to the last version
// leaves the history unchanged.
func (s *Service) Refresh(ctx context.Context, fileID string) (State, error) {
	return s.Load(ctx, fileID)
}

// Regenerate asks the service to rewrite the draft using feedback and
// records the result in the history.
func (s *Service) Regenerate(ctx context.Context, fileID, feedback string) (State, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return State{}, ErrEmptyFeedback
	}
	resp, err := s.client.UpdateMailDraft(ctx, fileID, feedback)
	if err != nil {
		return State{}, fmt.Errorf("updating email draft for %s: %w", fileID, err)
	}
	return s.observe(ctx, fileID, resp)
}

// Versions returns the stored history of a transcript, oldest first.
func (s *Service) Versions(ctx context.Context, fileID string) []model.EmailDraft {
	var versions []model.EmailDraft
	if _, err := store.GetJSON(ctx, s.store, store.EmailVersionsKey(fileID), &versions); err != nil {
		log.Printf("ignoring saved email versions for %s: %v", fileID, err)
		return nil
	}
	return versions
}

// Current returns the last stored draft of a transcript without any
// network I/O.
func (s *Service) Current(ctx context.Context, fileID string) (model.EmailDraft, bool) {
	var draft model.EmailDraft
	ok, err := store.GetJSON(ctx, s.store, store.EmailDraftKey(fileID), &draft)
	if err != nil {
		log.Printf("ignoring saved email draft for %s: %v", fileID, err)
		return model.EmailDraft{}, false
	}
	return draft, ok
}

// Send validates req and asks the service to deliver it. Invalid requests
// never reach the network.
func (s *Service) Send(ctx context.Context, req SendRequest) error {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.client.SendEmail(ctx, req.apiRequest()); err != nil {
		return fmt.Errorf("sending email to %s: %w", req.To, err)
	}
	return nil
}

// observe turns a server draft into the current draft and appends it to
// the history unless it matches the last version.
func (s *Service) observe(ctx context.Context, fileID string, resp *api.MailDraftResponse) (State, error) {
	if resp.Error != "" {
		return State{}, fmt.Errorf("generating email draft for %s: %s", fileID, resp.Error)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.Versions(ctx, fileID)
	now := s.now()
	candidate := FromResponse(fileID, resp, 0, now)

	if last, ok := Last(versions); ok && last.ID == candidate.ID {
		if err := s.saveDraft(ctx, fileID, last); err != nil {
			return State{}, err
		}
		return State{Draft: last, Versions: versions}, nil
	}

	var stored *model.EmailDraft
	if d, ok := s.Current(ctx, fileID); ok {
		stored = &d
	}
	candidate.Version = NextVersion(versions, stored)

	versions, appended := Append(versions, candidate)
	if err := store.SetJSON(ctx, s.store, store.EmailVersionsKey(fileID), versions); err != nil {
		return State{}, fmt.Errorf("saving email versions for %s: %w", fileID, err)
	}
	if err := s.saveDraft(ctx, fileID, candidate); err != nil {
		return State{}, err
	}
	return State{Draft: candidate, Versions: versions, Appended: appended}, nil
}

func (s *Service) saveDraft(ctx context.Context, fileID string, d model.EmailDraft) error {
	if err := store.SetJSON(ctx, s.store, store.EmailDraftKey(fileID), d); err != nil {
		return fmt.Errorf("saving email draft for %s: %w", fileID, err)
	}
	return nil
}
