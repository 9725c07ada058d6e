package insight

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
)

// Client is the subset of the service API used for insights.
type Client interface {
	GetKeyInsights(ctx context.Context, fileID string) (*api.InsightsResponse, error)
	UpdateKeyInsights(ctx context.Context, fileID, suggestedChanges string) (*api.InsightsResponse, error)
}

// Service fetches insights and keeps their local task annotations in sync.
type Service struct {
	client Client
	store  store.Store
	now    func() time.Time
}

// NewService creates an insight service.
func NewService(c Client, s store.Store) *Service {
	return &Service{client: c, store: s, now: time.Now}
}

// LoadAnnotations returns the persisted annotation mapping for a
// transcript. A missing or unreadable mapping yields an empty map.
func (s *Service) LoadAnnotations(ctx context.Context, fileID string) map[string]model.Annotation {
	ann := make(map[string]model.Annotation)
	if _, err := store.GetJSON(ctx, s.store, store.TasksKey(fileID), &ann); err != nil {
		log.Printf("ignoring saved task states for %s: %v", fileID, err)
		return make(map[string]model.Annotation)
	}
	return ann
}

// saveAnnotations overwrites the persisted mapping with the one derived
// from items.
func (s *Service) saveAnnotations(ctx context.Context, fileID string, items []model.InsightWithTask) error {
	if err := store.SetJSON(ctx, s.store, store.TasksKey(fileID), Annotations(items)); err != nil {
		return fmt.Errorf("saving task states for %s: %w", fileID, err)
	}
	return nil
}

// Fetch retrieves the insights of a transcript and merges them with the
// persisted annotations.
func (s *Service) Fetch(ctx context.Context, fileID string) ([]model.InsightWithTask, error) {
	resp, err := s.client.GetKeyInsights(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("fetching insights for %s: %w", fileID, err)
	}
	insights := FromResponse(fileID, resp, s.now())
	return Merge(insights, s.LoadAnnotations(ctx, fileID)), nil
}

// Refresh refetches insights. Annotations for unchanged ids survive.
func (s *Service) Refresh(ctx context.Context, fileID string) ([]model.InsightWithTask, error) {
	return s.Fetch(ctx, fileID)
}

// UpdateOne asks the service to revise the insight identified by
// insightID using content as the suggestion. The revised insight keeps
// its annotation and replaces the old one in a copy of items.
func (s *Service) UpdateOne(
	ctx context.Context,
	fileID string,
	items []model.InsightWithTask,
	insightID string,
	content string,
) ([]model.InsightWithTask, model.InsightWithTask, error) {
	pos := find(items, insightID)
	if pos < 0 {
		return nil, model.InsightWithTask{}, fmt.Errorf("insight %s not found", insightID)
	}
	index, err := indexFromID(insightID)
	if err != nil {
		return nil, model.InsightWithTask{}, err
	}

	resp, err := s.client.UpdateKeyInsights(ctx, fileID, content)
	if err != nil {
		return nil, model.InsightWithTask{}, fmt.Errorf("updating insight %s: %w", insightID, err)
	}
	if index >= len(resp.Insights) {
		return nil, model.InsightWithTask{}, fmt.Errorf(
			"updating insight %s: response has %d categories", insightID, len(resp.Insights),
		)
	}

	updated := model.InsightWithTask{
		Insight:    fromKeyInsight(insightID, resp.Insights[index], s.now()),
		Annotation: items[pos].Annotation,
	}

	out := make([]model.InsightWithTask, len(items))
	copy(out, items)
	out[pos] = updated
	return out, updated, nil
}

// UpdateAll asks the service to revise every insight using the given
// suggestions, then refetches and merges with persisted annotations.
func (s *Service) UpdateAll(ctx context.Context, fileID, suggestedChanges string) ([]model.InsightWithTask, error) {
	if _, err := s.client.UpdateKeyInsights(ctx, fileID, suggestedChanges); err != nil {
		return nil, fmt.Errorf("updating insights for %s: %w", fileID, err)
	}
	return s.Fetch(ctx, fileID)
}

// ToggleTask flips the task flag of insight id, persists the full
// mapping and returns the new list.
func (s *Service) ToggleTask(
	ctx context.Context,
	fileID string,
	items []model.InsightWithTask,
	id string,
) ([]model.InsightWithTask, error) {
	return s.toggle(ctx, fileID, items, id, func(a *model.Annotation) { a.IsTask = !a.IsTask })
}

// ToggleCompleted flips the completion state of insight id, persists the
// full mapping and returns the new list.
func (s *Service) ToggleCompleted(
	ctx context.Context,
	fileID string,
	items []model.InsightWithTask,
	id string,
) ([]model.InsightWithTask, error) {
	return s.toggle(ctx, fileID, items, id, func(a *model.Annotation) { a.Completed = !a.Completed })
}

func (s *Service) toggle(
	ctx context.Context,
	fileID string,
	items []model.InsightWithTask,
	id string,
	flip func(*model.Annotation),
) ([]model.InsightWithTask, error) {
	pos := find(items, id)
	if pos < 0 {
		return nil, fmt.Errorf("insight %s not found", id)
	}

	out := make([]model.InsightWithTask, len(items))
	copy(out, items)
	flip(&out[pos].Annotation)

	if err := s.saveAnnotations(ctx, fileID, out); err != nil {
		return nil, err
	}
	return out, nil
}
