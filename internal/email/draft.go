package email

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/model"
)

// draftNamespace scopes the name-based draft ids to this application.
var draftNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("transcript-insights/email-draft"))

// ComposeContent joins the parts of a generated draft into the editable
// body, separated by blank lines.
func ComposeContent(resp *api.MailDraftResponse) string {
	return resp.Greeting + "\n\n" + resp.Body + "\n\n" + resp.Closing + "\n\n" + resp.Signature
}

// DraftID returns the id of a draft for a transcript. Drafts with the same
// subject and content share an id.
func DraftID(fileID, subject, content string) string {
	name := subject + "\x00" + content
	return fileID + "-email-" + uuid.NewSHA1(draftNamespace, []byte(name)).String()
}

// FromResponse converts a generated draft into an EmailDraft with the
// given version number.
func FromResponse(fileID string, resp *api.MailDraftResponse, version int, now time.Time) model.EmailDraft {
	content := ComposeContent(resp)
	return model.EmailDraft{
		ID:        DraftID(fileID, resp.Subject, content),
		Subject:   resp.Subject,
		Content:   content,
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
