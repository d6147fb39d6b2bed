package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Provider = ProviderConfig{
		BaseURL:     "https://api.provider.test/v3",
		GrantID:     "test-grant",
		AccessToken: "test-token",
		Timeout:     5 * time.Second,
		UserAgent:   "mailcal-test/1.0",
	}
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Database = DatabaseConfig{
		Path:    "",
		Timeout: 1 * time.Second,
	}
	cfg.Dashboard.Timeout = 5 * time.Second
	return cfg
}
