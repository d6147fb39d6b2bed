package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/mailcal/internal/config"
)

var configPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration",
	Long: `Write the default configuration as TOML. Credentials are not part of it;
set MAILCAL_PROVIDER_GRANT_ID and MAILCAL_PROVIDER_ACCESS_TOKEN in the
environment or in a .env file instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	configGenCmd.Flags().StringVar(&configPath, "path", "", "where to write (default ~/.config/mailcal/config.toml)")
	configCmd.AddCommand(configGenCmd)
}
