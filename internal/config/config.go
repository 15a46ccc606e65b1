package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// defaultServerURL is used when no server is configured anywhere.
	defaultServerURL = "http://localhost:8000"

	// defaultPollInterval is the background session refresh interval.
	defaultPollInterval = 10 * time.Second
)

type Config struct {
	// ServerURL is the base URL of the ShotCraft backend API.
	ServerURL string `yaml:"server_url"`

	// Home is the directory where shotcraft stores local state.
	Home string `yaml:"-"`
	// CachePath is the sqlite database holding the offline session cache.
	CachePath string `yaml:"-"`

	// PollInterval is the session refresh interval used by watch commands.
	PollInterval time.Duration `yaml:"poll_interval"`

	// DefaultModel is the image model used when a command doesn't override it.
	DefaultModel string `yaml:"default_model"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug"`
}

// Load loads configuration from the config file, environment and defaults.
//
// Precedence, lowest to highest: built-in defaults, ~/.shotcraft/config.yaml,
// .env in the working directory, process environment.
func Load() (*Config, error) {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	home := os.Getenv("SHOTCRAFT_HOME_DIR")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		home = filepath.Join(userHome, ".shotcraft")
	}
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("failed to create shotcraft home: %w", err)
	}

	cfg := &Config{
		ServerURL:    defaultServerURL,
		Home:         home,
		CachePath:    filepath.Join(home, "cache.db"),
		PollInterval: defaultPollInterval,
		DefaultModel: "gemini-2.0-flash-exp",
	}

	if err := cfg.loadFile(filepath.Join(home, "config.yaml")); err != nil {
		return nil, err
	}

	if url := os.Getenv("SHOTCRAFT_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}
	if model := os.Getenv("SHOTCRAFT_MODEL"); model != "" {
		cfg.DefaultModel = model
	}
	if raw := os.Getenv("SHOTCRAFT_POLL_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SHOTCRAFT_POLL_INTERVAL %q: %w", raw, err)
		}
		cfg.PollInterval = d
	}
	if os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "1" {
		cfg.Debug = true
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return cfg, nil
}

// loadFile merges config.yaml into cfg. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
