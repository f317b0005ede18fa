// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config is the root configuration structure.
type Config struct {
	Console ConsoleConfig `toml:"console"`
	Window  WindowConfig  `toml:"window"`
	History HistoryConfig `toml:"history"`
	Shell   ShellConfig   `toml:"shell"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// ConsoleConfig holds the console limits.
type ConsoleConfig struct {
	ScrollbackLines     int    `toml:"scrollback_lines"`
	Prompt              string `toml:"prompt"`
	HistoryLimit        int    `toml:"history_limit"`
	CaseSensitiveSearch bool   `toml:"case_sensitive_search"`
}

// WindowConfig is the initial window rectangle, in cells for the terminal
// host. Zero width or height means "use the terminal size".
type WindowConfig struct {
	X      int `toml:"x"`
	Y      int `toml:"y"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// HistoryConfig controls prompt-history persistence.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ShellConfig holds command-runner settings.
type ShellConfig struct {
	// Blocked lists extra command names the runner refuses to execute.
	Blocked []string `toml:"blocked"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma theme used to highlight input lines.
	SyntaxTheme string `toml:"syntax_theme"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "github-dark" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "github-dark"
	}
	return u.SyntaxTheme
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Console: ConsoleConfig{
			ScrollbackLines:     1000,
			Prompt:              "> ",
			HistoryLimit:        100,
			CaseSensitiveSearch: true,
		},
		History: HistoryConfig{Enabled: true},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
// A missing file is not an error: the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Console.ScrollbackLines < 1 {
		errs = append(errs, fmt.Errorf("console.scrollback_lines=%d must be at least 1", c.Console.ScrollbackLines))
	}
	if c.Console.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("console.history_limit=%d must be at least 1", c.Console.HistoryLimit))
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must not be negative", c.Window.Width, c.Window.Height))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"SCROLLCON_PROMPT", func(v string) {
			if v != "" {
				cfg.Console.Prompt = v
			}
		}},
		{"SCROLLCON_SCROLLBACK", func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Console.ScrollbackLines = n
			}
		}},
		{"SCROLLCON_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// HistoryPath returns the history database path, defaulting to the data directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LogPath returns the log file path, defaulting to the data directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scrollcon.log"), nil
}

// DataDir returns the path to the data directory (~/.config/scrollcon).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scrollcon"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns the config file location in the data directory.
// The directory is not created.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
