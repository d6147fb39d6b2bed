// Package mboxexport writes provider messages to an mbox file.
package mboxexport

import (
	"fmt"
	"io"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-mbox"

	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/provider"
)

// Writer appends messages to an mbox stream.
type Writer struct {
	mw    *mbox.Writer
	count int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{mw: mbox.NewWriter(w)}
}

// Count is the number of messages written so far.
func (w *Writer) Count() int { return w.count }

// WriteMessage renders m as a plain-text RFC 5322 message.
func (w *Writer) WriteMessage(m provider.EmailMessage) error {
	date := time.Unix(m.Date, 0).UTC()
	if m.Date == 0 {
		date = time.Unix(0, 0).UTC()
	}

	from := "MAILER-DAEMON"
	if len(m.From) > 0 && m.From[0].Email != "" {
		from = m.From[0].Email
	}

	mw, err := w.mw.CreateMessage(from, date)
	if err != nil {
		return fmt.Errorf("creating message %s: %w", m.ID, err)
	}

	var b strings.Builder
	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\r\n", k, v)
		}
	}

	header("Message-ID", "<"+m.ID+"@mailcal.local>")
	header("Date", date.Format(time.RFC1123Z))
	header("From", addressList(m.From))
	header("To", addressList(m.To))
	header("Cc", addressList(m.CC))
	header("Reply-To", addressList(m.ReplyTo))
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("X-Mailcal-Thread-Id", m.ThreadID)
	header("X-Mailcal-Folders", strings.Join(m.Folders, ", "))
	if m.Unread {
		header("X-Mailcal-Unread", "true")
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := format.TextFromHTML(m.Body)
	if body == "" {
		body = m.Snippet
	}
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")

	if _, err := io.WriteString(mw, b.String()); err != nil {
		return fmt.Errorf("writing message %s: %w", m.ID, err)
	}
	w.count++
	return nil
}

// Close flushes the final message.
func (w *Writer) Close() error {
	return w.mw.Close()
}

func addressList(ps []provider.Participant) string {
	if len(ps) == 0 {
		return ""
	}
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		a := mail.Address{Name: p.Name, Address: p.Email}
		out = append(out, a.String())
	}
	return strings.Join(out, ", ")
}
