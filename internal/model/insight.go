package model

import "time"

// InsightCategory is the closed set of categories an insight is shown under.
type InsightCategory string

const (
	CategoryAction    InsightCategory = "action"
	CategorySentiment InsightCategory = "sentiment"
	CategoryQuestion  InsightCategory = "question"
	CategoryOther     InsightCategory = "other"
)

// Insight status constants.
const (
	InsightStatusTodo       = "todo"
	InsightStatusInProgress = "in-progress"
	InsightStatusDone       = "done"
)

// Insight priority constants.
const (
	InsightPriorityLow    = "low"
	InsightPriorityMedium = "medium"
	InsightPriorityHigh   = "high"
)

// Insight is a single extracted point derived from a transcript.
type Insight struct {
	// ID is assigned per fetch and currently derived from the position of
	// the category in the server response.
	ID string `json:"id"`

	// Content is the insight text. Multi-line insights are joined with "\n".
	Content string `json:"content"`

	Category InsightCategory `json:"category"`

	// Status is one of the InsightStatus* constants.
	Status string `json:"status"`

	// Priority is one of the InsightPriority* constants.
	Priority string `json:"priority"`

	Assignee  string     `json:"assignee,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Annotation is the local-only task state attached to an insight id.
// The remote service has no notion of tasks.
type Annotation struct {
	IsTask    bool `json:"isTask"`
	Completed bool `json:"completed"`
}

// InsightWithTask is an insight merged with its local annotation.
type InsightWithTask struct {
	Insight
	Annotation
}
