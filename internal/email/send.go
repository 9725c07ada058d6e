package email

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/nhle/transcript-insights/internal/api"
)

// SendRequest is a user's request to deliver the current draft.
type SendRequest struct {
	To      string
	From    string
	Subject string
	Content string
}

// Normalize trims surrounding whitespace from the addresses and subject.
func (r SendRequest) Normalize() SendRequest {
	r.To = strings.TrimSpace(r.To)
	r.From = strings.TrimSpace(r.From)
	r.Subject = strings.TrimSpace(r.Subject)
	return r
}

// Validate checks that both addresses are well-formed and the message
// is not empty. It performs no network I/O.
func (r SendRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.Required, is.EmailFormat),
		validation.Field(&r.From, validation.Required, is.EmailFormat),
		validation.Field(&r.Subject, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

func (r SendRequest) apiRequest() api.SendEmailRequest {
	return api.SendEmailRequest{
		To:        r.To,
		FromEmail: r.From,
		Subject:   r.Subject,
		Content:   r.Content,
	}
}

// Message converts the request into a renderable message.
func (r SendRequest) Message() Message {
	return Message{From: r.From, To: r.To, Subject: r.Subject, Content: r.Content}
}
