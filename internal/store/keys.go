package store

// Persisted keys. All values are JSON encoded.
const (
	// TranscriptFilesKey holds the uploaded-file list, newest first.
	TranscriptFilesKey = "transcriptFiles"

	tasksPrefix         = "tasks-"
	emailVersionsPrefix = "emailVersions-"
	emailDraftPrefix    = "emailDraft-"
)

// TasksKey holds the insight id -> annotation map for a transcript.
func TasksKey(fileID string) string { return tasksPrefix + fileID }

// EmailVersionsKey holds the ordered draft history for a transcript.
func EmailVersionsKey(fileID string) string { return emailVersionsPrefix + fileID }

// EmailDraftKey holds the latest draft, including its version counter.
func EmailDraftKey(fileID string) string { return emailDraftPrefix + fileID }
