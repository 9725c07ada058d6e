package model

import "time"

// EmailDraft is one generated follow-up email for a transcript.
type EmailDraft struct {
	// ID identifies the draft content; two drafts with the same subject and
	// content for the same transcript share an ID.
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Content string `json:"content"`

	// Version counts distinct drafts observed for the transcript, from 1.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
