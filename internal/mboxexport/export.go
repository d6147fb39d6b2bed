package mboxexport

import (
	"context"
	"fmt"
	"io"

	"github.com/pders01/mailcal/internal/debuglog"
	"github.com/pders01/mailcal/internal/provider"
)

// EmailSource pages through a mailbox.
type EmailSource interface {
	RetrieveEmails(ctx context.Context, q provider.EmailQuery) (*provider.Page[provider.EmailMessage], error)
}

type Options struct {
	// Limit caps the number of messages. Zero means no cap.
	Limit int
	// PageSize is the per-request limit; defaults to 50.
	PageSize   int
	UnreadOnly bool
}

const defaultPageSize = 50

// Export pages through src and writes every message to out. It returns the
// number written; on error the count reflects what made it to out.
func Export(ctx context.Context, src EmailSource, out io.Writer, opts Options) (int, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	q := provider.EmailQuery{Limit: pageSize}
	if opts.UnreadOnly {
		unread := true
		q.Unread = &unread
	}

	w := NewWriter(out)
	log := debuglog.WithFields(debuglog.Fields{"component": "export"})

	for page := 1; ; page++ {
		if opts.Limit > 0 {
			if remaining := opts.Limit - w.Count(); remaining < q.Limit {
				q.Limit = remaining
			}
		}

		res, err := src.RetrieveEmails(ctx, q)
		if err != nil {
			_ = w.Close()
			return w.Count(), fmt.Errorf("page %d: %w", page, err)
		}
		log.Debugf("page %d: %d messages", page, len(res.Data))

		for _, m := range res.Data {
			// Some providers return more than the requested limit.
			if opts.Limit > 0 && w.Count() >= opts.Limit {
				break
			}
			if err := w.WriteMessage(m); err != nil {
				_ = w.Close()
				return w.Count(), err
			}
		}

		if res.NextCursor == "" || len(res.Data) == 0 {
			break
		}
		if opts.Limit > 0 && w.Count() >= opts.Limit {
			break
		}
		if res.NextCursor == q.Cursor {
			log.Warnf("page %d: cursor %q repeated, stopping", page, q.Cursor)
			break
		}
		q.Cursor = res.NextCursor
	}

	if err := w.Close(); err != nil {
		return w.Count(), err
	}
	log.Infof("exported %d messages", w.Count())
	return w.Count(), nil
}
