package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pders01/mailcal/internal/debuglog"
	"github.com/pders01/mailcal/internal/mboxexport"
	"github.com/pders01/mailcal/internal/provider"
	"github.com/pders01/mailcal/internal/storage"
	"github.com/pders01/mailcal/internal/validation"
)

var (
	exportOut    string
	exportLimit  int
	exportUnread bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write mail to an mbox file",
	Example: `
mailcal export --out ~/mail/inbox.mbox
mailcal export --out unread.mbox --unread --limit 200
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, os.Stderr); err != nil {
			return err
		}

		client, err := provider.NewClient(cfg.Provider)
		if err != nil {
			return err
		}

		// History is best effort; a locked or missing database must not block an export.
		store, err := openStore(cfg)
		if err != nil {
			debuglog.Warnf("export: history disabled: %v", err)
			store = nil
		} else {
			defer store.Close()
		}

		_, err = runExport(cmd.Context(), client, store, exportJob{
			Path:       exportOut,
			Limit:      exportLimit,
			UnreadOnly: exportUnread,
		}, cmd.OutOrStdout())
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "mbox file to write (required)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "stop after this many messages (0 = all)")
	exportCmd.Flags().BoolVar(&exportUnread, "unread", false, "only export unread mail")
	_ = exportCmd.MarkFlagRequired("out")
}

type exportJob struct {
	Path       string
	Limit      int
	PageSize   int
	UnreadOnly bool
}

// runExport writes the mailbox to job.Path and records the run in store,
// which may be nil.
func runExport(ctx context.Context, src mboxexport.EmailSource, store *storage.Store, job exportJob, out io.Writer) (int, error) {
	path, err := validation.NewPermissivePathHandler().GetExportPath(job.Path)
	if err != nil {
		return 0, fmt.Errorf("export path: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	n, err := mboxexport.Export(ctx, src, f, mboxexport.Options{
		Limit:      job.Limit,
		PageSize:   job.PageSize,
		UnreadOnly: job.UnreadOnly,
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("export to %s stopped after %d messages: %w", path, n, err)
	}

	if store != nil {
		rec := storage.ExportRecord{
			Path:       path,
			Messages:   n,
			UnreadOnly: job.UnreadOnly,
			FinishedAt: time.Now(),
		}
		if err := store.RecordExport(rec); err != nil {
			debuglog.Warnf("export: recording history: %v", err)
		}
	}

	fmt.Fprintf(out, "%s wrote %d messages to %s\n", color.GreenString("✓"), n, path)
	return n, nil
}
