package email

import "github.com/nhle/transcript-insights/internal/model"

// Last returns the most recent version, if any.
func Last(versions []model.EmailDraft) (model.EmailDraft, bool) {
	if len(versions) == 0 {
		return model.EmailDraft{}, false
	}
	return versions[len(versions)-1], true
}

// Append adds draft to the end of versions unless the last entry already
// has the same id. It reports whether the draft was appended. The input
// slice is never modified.
func Append(versions []model.EmailDraft, draft model.EmailDraft) ([]model.EmailDraft, bool) {
	if last, ok := Last(versions); ok && last.ID == draft.ID {
		return versions, false
	}
	out := make([]model.EmailDraft, len(versions), len(versions)+1)
	copy(out, versions)
	return append(out, draft), true
}

// NextVersion returns the version number for a newly observed draft.
func NextVersion(versions []model.EmailDraft, stored *model.EmailDraft) int {
	next := 1
	if last, ok := Last(versions); ok && last.Version >= next {
		next = last.Version + 1
	}
	if stored != nil && stored.Version >= next {
		next = stored.Version + 1
	}
	return next
}
