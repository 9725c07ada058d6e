package email

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
)

// Message is a rendered-ready outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	Content string
	Date    time.Time
}

// Render writes m as a single-part text/plain RFC 5322 message.
func Render(w io.Writer, m Message) error {
	var h mail.Header
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(m.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	if m.From != "" {
		from, err := mail.ParseAddress(m.From)
		if err != nil {
			return fmt.Errorf("parsing from address %q: %w", m.From, err)
		}
		h.SetAddressList("From", []*mail.Address{from})
	}
	if m.To != "" {
		to, err := mail.ParseAddressList(m.To)
		if err != nil {
			return fmt.Errorf("parsing to address %q: %w", m.To, err)
		}
		h.SetAddressList("To", to)
	}
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("generating message id: %w", err)
	}

	mw, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(mw, m.Content); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}
	return mw.Close()
}

// RenderBytes is Render into memory.
func RenderBytes(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename returns the default .eml file name for a transcript.
func ExportFilename(fileID string) string {
	return "email-" + fileID + ".eml"
}
