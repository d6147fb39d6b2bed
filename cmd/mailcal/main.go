package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/debuglog"
	"github.com/pders01/mailcal/internal/storage"
	"github.com/pders01/mailcal/internal/tui"
	"github.com/pders01/mailcal/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	cfgFile  string
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:           "mailcal",
	Short:         "Mail and calendar dashboard for a hosted messaging API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mailcal %s\n", Version)
		fmt.Fprintln(out, tui.Tagline)
		fmt.Fprintln(out, "github.com/pders01/mailcal")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/mailcal/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or off (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (overrides config)")

	rootCmd.AddCommand(versionCmd, serveCmd, tuiCmd, exportCmd, historyCmd, configCmd)
}

func main() {
	err := rootCmd.Execute()
	_ = debuglog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging writes to the configured log file. Without one, logs go to
// fallback, or to the default file when fallback is nil.
func setupLogging(cfg *config.Config, fallback io.Writer) error {
	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.File != "" || fallback == nil {
		return debuglog.Setup(level, cfg.Log.File)
	}
	debuglog.SetupWriter(level, fallback)
	return nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	path, err := validation.NewSecurePathHandler().GetSecureDBPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	return storage.NewStore(path, cfg.Database.Timeout)
}
