package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/mailcal/internal/conferencing"
	"github.com/pders01/mailcal/internal/dashboard"
	"github.com/pders01/mailcal/internal/debuglog"
	"github.com/pders01/mailcal/internal/opener"
	"github.com/pders01/mailcal/internal/search"
	"github.com/pders01/mailcal/internal/tui"
	"github.com/pders01/mailcal/internal/validation"
)

var (
	tuiServer string
	tuiQuiet  bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the mail and calendar dashboard",
	Long: `Open the terminal dashboard. It reads from the /api routes of a running
"mailcal serve", so the provider credentials stay with the server.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if tuiServer != "" {
			normalized, err := validation.NewPermissiveAPIURLValidator().ValidateAndNormalize(tuiServer)
			if err != nil {
				return fmt.Errorf("--server: %w", err)
			}
			cfg.Dashboard.ServerURL = strings.TrimRight(normalized, "/")
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		if !tuiQuiet {
			fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		index, err := search.NewIndex()
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}
		defer index.Close()

		launcher := opener.NewLauncher(cfg.Opener)
		debuglog.Infof("tui: server %s, opener %s", cfg.Dashboard.ServerURL, launcher.Command())

		app := tui.NewApp(tui.Deps{
			Config:   cfg,
			Source:   dashboard.NewAPIClient(cfg.Dashboard.ServerURL, cfg.Dashboard.Timeout),
			Store:    store,
			Index:    index,
			Opener:   launcher,
			Meetings: conferencing.NewDefaultRegistry(),
		})

		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiServer, "server", "", "route layer URL (overrides dashboard.server_url)")
	tuiCmd.Flags().BoolVar(&tuiQuiet, "quiet", false, "skip startup banner")
}
