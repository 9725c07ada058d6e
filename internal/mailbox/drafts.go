package mailbox

import (
	"context"
	"fmt"

	"github.com/nhle/transcript-insights/internal/email"
)

// Appender stores a raw message in a mailbox.
type Appender interface {
	AppendDraft(ctx context.Context, mailbox string, msg []byte) error
}

// Drafts saves email drafts to a fixed mailbox.
type Drafts struct {
	appender Appender
	mailbox  string
}

// NewDrafts returns a saver that appends to mailbox.
func NewDrafts(a Appender, mailbox string) *Drafts {
	return &Drafts{appender: a, mailbox: mailbox}
}

// Mailbox returns the name of the target mailbox.
func (d *Drafts) Mailbox() string { return d.mailbox }

// Save renders m and appends it to the drafts mailbox.
func (d *Drafts) Save(ctx context.Context, m email.Message) error {
	raw, err := email.RenderBytes(m)
	if err != nil {
		return fmt.Errorf("rendering draft: %w", err)
	}
	if err := d.appender.AppendDraft(ctx, d.mailbox, raw); err != nil {
		return err
	}
	return nil
}
