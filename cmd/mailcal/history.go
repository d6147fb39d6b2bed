package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past exports and the calendars the dashboard remembers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return printHistory(cmd.OutOrStdout(), store, historyLimit, time.Now())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of exports to show (0 = all)")
}

func printHistory(w io.Writer, store *storage.Store, limit int, now time.Time) error {
	exports, err := store.Exports(limit)
	if err != nil {
		return fmt.Errorf("reading export history: %w", err)
	}
	calendars, err := store.Calendars()
	if err != nil {
		return fmt.Errorf("reading calendars: %w", err)
	}

	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(w, bold("Exports"))
	if len(exports) == 0 {
		fmt.Fprintln(w, "  none yet")
	} else {
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow("WHEN", "MESSAGES", "SCOPE", "PATH")
		for _, rec := range exports {
			scope := "all"
			if rec.UnreadOnly {
				scope = "unread"
			}
			tbl.AddRow(format.Relative(rec.FinishedAt.Unix(), now), rec.Messages, scope, rec.Path)
		}
		fmt.Fprintln(w, tbl)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Calendars"))
	if len(calendars) == 0 {
		fmt.Fprintln(w, "  none yet")
		return nil
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "LABEL", "LAST USED")
	for _, cal := range calendars {
		tbl.AddRow(cal.ID, cal.Label, format.Relative(cal.LastUsed.Unix(), now))
	}
	fmt.Fprintln(w, tbl)
	return nil
}
