package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/mailcal/internal/provider"
	"github.com/pders01/mailcal/internal/server"
	"github.com/pders01/mailcal/internal/tui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the /api routes backed by the provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if err := setupLogging(cfg, os.Stderr); err != nil {
			return err
		}

		client, err := provider.NewClient(cfg.Provider)
		if err != nil {
			return err
		}
		srv := server.New(cfg.Server, client)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx, func(addr string) {
			msg := "serving on http://" + addr
			if cfg.Server.Metrics {
				msg += " (metrics at /metrics)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.GetCompactBanner(msg))
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
