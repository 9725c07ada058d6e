package model

import "time"

// TranscriptStatus is the processing state of an uploaded transcript.
type TranscriptStatus string

const (
	TranscriptProcessed  TranscriptStatus = "processed"
	TranscriptProcessing TranscriptStatus = "processing"
	TranscriptError      TranscriptStatus = "error"
)

// TranscriptFile is an uploaded conversation transcript as tracked locally.
// It is created on upload and only its Status changes afterwards.
type TranscriptFile struct {
	ID         string           `json:"id"`
	Filename   string           `json:"filename"`
	UploadedAt time.Time        `json:"uploadedAt"`
	Status     TranscriptStatus `json:"status"`
}
