package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pders01/mailcal/internal/validation"
)

const envPrefix = "MAILCAL"

type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"`
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	UI        UIConfig        `mapstructure:"ui"`
	Keys      KeyConfig       `mapstructure:"keys"`
	Opener    OpenerConfig    `mapstructure:"opener"`
}

// ProviderConfig describes the upstream messaging API. GrantID and
// AccessToken are expected from the environment or a .env file.
type ProviderConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	GrantID     string        `mapstructure:"grant_id"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

type DashboardConfig struct {
	ServerURL   string        `mapstructure:"server_url"`
	PageSize    int           `mapstructure:"page_size"`
	EmailFilter string        `mapstructure:"email_filter"`
	CalendarID  string        `mapstructure:"calendar_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors      `mapstructure:"colors"`
	Email  EmailUIConfig `mapstructure:"email"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type EmailUIConfig struct {
	SnippetLength    int `mapstructure:"snippet_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	Search       string `mapstructure:"search"`
	Refresh      string `mapstructure:"refresh"`
	LoadMore     string `mapstructure:"load_more"`
	ToggleFilter string `mapstructure:"toggle_filter"`
	SwitchPane   string `mapstructure:"switch_pane"`
	Calendar     string `mapstructure:"calendar"`
	Open         string `mapstructure:"open"`
	Back         string `mapstructure:"back"`
}

type OpenerConfig struct {
	Command string `mapstructure:"command"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Provider: ProviderConfig{
			BaseURL:   "https://api.us.nylas.com/v3",
			Timeout:   30 * time.Second,
			UserAgent: "mailcal/1.0 (https://github.com/pders01/mailcal)",
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:4321",
			Metrics: true,
		},
		Dashboard: DashboardConfig{
			ServerURL:   "http://127.0.0.1:4321",
			PageSize:    5,
			EmailFilter: "unread",
			CalendarID:  "primary",
			Timeout:     45 * time.Second,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".mailcal", "mailcal.db"),
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Email: EmailUIConfig{
				SnippetLength:    100,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:         "q",
				Search:       "s",
				Refresh:      "r",
				LoadMore:     "n",
				ToggleFilter: "u",
				SwitchPane:   "tab",
				Calendar:     "l",
				Open:         "o",
				Back:         "esc",
			},
		},
		Opener: OpenerConfig{
			Command: defaultOpener(),
		},
	}
}

func defaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// setDefaults registers every leaf key so AutomaticEnv can override it,
// e.g. MAILCAL_PROVIDER_ACCESS_TOKEN.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("provider.base_url", cfg.Provider.BaseURL)
	v.SetDefault("provider.grant_id", cfg.Provider.GrantID)
	v.SetDefault("provider.access_token", cfg.Provider.AccessToken)
	v.SetDefault("provider.timeout", cfg.Provider.Timeout)
	v.SetDefault("provider.user_agent", cfg.Provider.UserAgent)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.metrics", cfg.Server.Metrics)

	v.SetDefault("dashboard.server_url", cfg.Dashboard.ServerURL)
	v.SetDefault("dashboard.page_size", cfg.Dashboard.PageSize)
	v.SetDefault("dashboard.email_filter", cfg.Dashboard.EmailFilter)
	v.SetDefault("dashboard.calendar_id", cfg.Dashboard.CalendarID)
	v.SetDefault("dashboard.timeout", cfg.Dashboard.Timeout)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)

	v.SetDefault("ui.colors.primary", cfg.UI.Colors.Primary)
	v.SetDefault("ui.colors.secondary", cfg.UI.Colors.Secondary)
	v.SetDefault("ui.colors.accent", cfg.UI.Colors.Accent)
	v.SetDefault("ui.colors.text", cfg.UI.Colors.Text)
	v.SetDefault("ui.colors.muted", cfg.UI.Colors.Muted)
	v.SetDefault("ui.colors.error", cfg.UI.Colors.Error)
	v.SetDefault("ui.colors.success", cfg.UI.Colors.Success)
	v.SetDefault("ui.email.snippet_length", cfg.UI.Email.SnippetLength)
	v.SetDefault("ui.email.word_wrap_max_width", cfg.UI.Email.WordWrapMaxWidth)
	v.SetDefault("ui.email.word_wrap_min_width", cfg.UI.Email.WordWrapMinWidth)

	v.SetDefault("keys.modifier", cfg.Keys.Modifier)
	v.SetDefault("keys.bindings.quit", cfg.Keys.Bindings.Quit)
	v.SetDefault("keys.bindings.search", cfg.Keys.Bindings.Search)
	v.SetDefault("keys.bindings.refresh", cfg.Keys.Bindings.Refresh)
	v.SetDefault("keys.bindings.load_more", cfg.Keys.Bindings.LoadMore)
	v.SetDefault("keys.bindings.toggle_filter", cfg.Keys.Bindings.ToggleFilter)
	v.SetDefault("keys.bindings.switch_pane", cfg.Keys.Bindings.SwitchPane)
	v.SetDefault("keys.bindings.calendar", cfg.Keys.Bindings.Calendar)
	v.SetDefault("keys.bindings.open", cfg.Keys.Bindings.Open)
	v.SetDefault("keys.bindings.back", cfg.Keys.Bindings.Back)

	v.SetDefault("opener.command", cfg.Opener.Command)
}

// Load reads configuration from defaults, an optional TOML file, a .env file
// in the working directory, and MAILCAL_* environment variables, in
// increasing order of precedence.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(homeDir, ".config", "mailcal"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// loadDotEnv exports the variables of path into the process environment
// without overriding ones that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail late, at request time.
func (c *Config) Validate() error {
	apiValidator := validation.NewAPIURLValidator()
	normalized, err := apiValidator.ValidateAndNormalize(c.Provider.BaseURL)
	if err != nil {
		return fmt.Errorf("provider.base_url: %w", err)
	}
	c.Provider.BaseURL = strings.TrimRight(normalized, "/")

	local := validation.NewPermissiveAPIURLValidator()
	normalized, err = local.ValidateAndNormalize(c.Dashboard.ServerURL)
	if err != nil {
		return fmt.Errorf("dashboard.server_url: %w", err)
	}
	c.Dashboard.ServerURL = strings.TrimRight(normalized, "/")

	if c.Dashboard.PageSize < 1 || c.Dashboard.PageSize > 200 {
		return fmt.Errorf("dashboard.page_size must be between 1 and 200, got %d", c.Dashboard.PageSize)
	}
	switch c.Dashboard.EmailFilter {
	case "all", "unread":
	default:
		return fmt.Errorf("dashboard.email_filter must be \"all\" or \"unread\", got %q", c.Dashboard.EmailFilter)
	}
	if strings.TrimSpace(c.Dashboard.CalendarID) == "" {
		c.Dashboard.CalendarID = "primary"
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Save writes cfg as TOML. The access token is never written to disk.
func Save(config *Config, path string) error {
	v := viper.New()

	v.Set("provider", map[string]any{
		"base_url":   config.Provider.BaseURL,
		"grant_id":   config.Provider.GrantID,
		"timeout":    config.Provider.Timeout.String(),
		"user_agent": config.Provider.UserAgent,
	})
	v.Set("server", map[string]any{
		"addr":    config.Server.Addr,
		"metrics": config.Server.Metrics,
	})
	v.Set("dashboard", map[string]any{
		"server_url":   config.Dashboard.ServerURL,
		"page_size":    config.Dashboard.PageSize,
		"email_filter": config.Dashboard.EmailFilter,
		"calendar_id":  config.Dashboard.CalendarID,
		"timeout":      config.Dashboard.Timeout.String(),
	})
	v.Set("database", map[string]any{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	})
	v.Set("log", map[string]any{
		"level": config.Log.Level,
		"file":  config.Log.File,
	})
	v.Set("ui", map[string]any{
		"colors": map[string]any{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
		"email": map[string]any{
			"snippet_length":      config.UI.Email.SnippetLength,
			"word_wrap_max_width": config.UI.Email.WordWrapMaxWidth,
			"word_wrap_min_width": config.UI.Email.WordWrapMinWidth,
		},
	})
	v.Set("keys", map[string]any{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]any{
			"quit":          config.Keys.Bindings.Quit,
			"search":        config.Keys.Bindings.Search,
			"refresh":       config.Keys.Bindings.Refresh,
			"load_more":     config.Keys.Bindings.LoadMore,
			"toggle_filter": config.Keys.Bindings.ToggleFilter,
			"switch_pane":   config.Keys.Bindings.SwitchPane,
			"calendar":      config.Keys.Bindings.Calendar,
			"open":          config.Keys.Bindings.Open,
			"back":          config.Keys.Bindings.Back,
		},
	})
	v.Set("opener", map[string]any{
		"command": config.Opener.Command,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

// DefaultPath is the config file location used by generate-config.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mailcal", "config.toml")
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
