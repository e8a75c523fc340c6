// Package config loads console configuration from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the console configuration.
type Config struct {
	// APIKey is the bearer credential for the provider. Usually supplied
	// via OPENAI_API_KEY rather than written to disk.
	APIKey string `toml:"api_key"`

	// BaseURL of an OpenAI-compatible server. Empty means the hosted API.
	BaseURL string `toml:"base_url"`

	// Model identifier sent with every request.
	Model string `toml:"model"`

	// SystemPrompt seeds each conversation's system turn.
	SystemPrompt string `toml:"system_prompt"`

	// Stream selects streaming (true) or blocking (false) completions.
	Stream bool `toml:"stream"`

	// DBPath is the path to the transcript SQLite database.
	// Empty resolves to the default location under the home directory.
	DBPath string `toml:"db"`

	// Debug enables debug logging.
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Model:  "gpt-4o-mini",
		Stream: true,
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".console", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults and then applies
// environment overrides. A missing file is not an error; the defaults
// stand.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("could not parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment win over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
}
