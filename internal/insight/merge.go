package insight

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/model"
)

const idSeparator = "-insight-"

// InsightID returns the positional id of the index-th insight of a
// transcript.
func InsightID(fileID string, index int) string {
	return fileID + idSeparator + strconv.Itoa(index)
}

// indexFromID extracts the position encoded in an insight id.
func indexFromID(id string) (int, error) {
	i := strings.LastIndex(id, idSeparator)
	if i < 0 {
		return 0, fmt.Errorf("insight id %q has no position", id)
	}
	n, err := strconv.Atoi(id[i+len(idSeparator):])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("insight id %q has no position", id)
	}
	return n, nil
}

// fromKeyInsight converts one server category into an Insight.
func fromKeyInsight(id string, ki api.KeyInsight, now time.Time) model.Insight {
	return model.Insight{
		ID:        id,
		Content:   strings.Join(ki.Content, "\n"),
		Category:  Classify(ki.Category),
		Status:    model.InsightStatusTodo,
		Priority:  model.InsightPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FromResponse converts a service response into insights, one per
// category, in response order.
func FromResponse(fileID string, resp *api.InsightsResponse, now time.Time) []model.Insight {
	if resp == nil {
		return nil
	}
	out := make([]model.Insight, 0, len(resp.Insights))
	for i, ki := range resp.Insights {
		out = append(out, fromKeyInsight(InsightID(fileID, i), ki, now))
	}
	return out
}

// Merge left-joins fresh insights with locally stored annotations. The
// result keeps the input order; insights without an annotation get the
// zero Annotation. Annotations whose id no longer appears are ignored.
func Merge(insights []model.Insight, annotations map[string]model.Annotation) []model.InsightWithTask {
	out := make([]model.InsightWithTask, len(insights))
	for i, in := range insights {
		out[i] = model.InsightWithTask{
			Insight:    in,
			Annotation: annotations[in.ID],
		}
	}
	return out
}

// Annotations rebuilds the full annotation mapping from a merged list.
func Annotations(items []model.InsightWithTask) map[string]model.Annotation {
	out := make(map[string]model.Annotation, len(items))
	for _, it := range items {
		out[it.ID] = it.Annotation
	}
	return out
}

// Tasks returns the task-flagged items in list order.
func Tasks(items []model.InsightWithTask) []model.InsightWithTask {
	var out []model.InsightWithTask
	for _, it := range items {
		if it.IsTask {
			out = append(out, it)
		}
	}
	return out
}

// Group is the insights of a single category.
type Group struct {
	Category model.InsightCategory
	Items    []model.InsightWithTask
}

// ByCategory groups items by category in order of first appearance.
func ByCategory(items []model.InsightWithTask) []Group {
	var groups []Group
	index := make(map[model.InsightCategory]int)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, Group{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// find returns the position of id in items, or -1.
func find(items []model.InsightWithTask, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
