package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults match the backend's development setup: local server, 10-minute
// token refresh, 30-second request timeout.
const (
	DefaultServerURL       = "http://127.0.0.1:8000"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultRefreshInterval = 10 * time.Minute
)

type Config struct {
	ServerURL       string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	DBPath          string
	ExportTemplate  string // custom mustache template for transcript export (optional)
}

type tomlConfig struct {
	ServerURL           string `toml:"server_url"`
	RequestTimeoutSecs  int    `toml:"request_timeout_secs"`
	RefreshIntervalMins int    `toml:"refresh_interval_mins"`
	DBPath              string `toml:"db_path"`
}

// Dir returns the config directory, ~/.config/vichat.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "vichat")
}

// Load reads config from ~/.config/vichat/
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:       DefaultServerURL,
		RequestTimeout:  DefaultRequestTimeout,
		RefreshInterval: DefaultRefreshInterval,
		DBPath:          filepath.Join(Dir(), "vichat.db"),
	}

	configDir := Dir()
	tomlPath := filepath.Join(configDir, "config.toml")
	templatePath := filepath.Join(configDir, "export_template.mustache")

	// Load TOML config if it exists
	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err == nil {
			if tc.ServerURL != "" {
				cfg.ServerURL = tc.ServerURL
			}
			if tc.RequestTimeoutSecs > 0 {
				cfg.RequestTimeout = time.Duration(tc.RequestTimeoutSecs) * time.Second
			}
			if tc.RefreshIntervalMins > 0 {
				cfg.RefreshInterval = time.Duration(tc.RefreshIntervalMins) * time.Minute
			}
			if tc.DBPath != "" {
				cfg.DBPath = tc.DBPath
			}
		}
	}

	// If custom export template exists, use it
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.ExportTemplate = string(data)
	}

	// Environment wins over the file
	if url := os.Getenv("VICHAT_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}

	return cfg, nil
}
