// Package config provides configuration management for the EPE console.
// It handles loading and parsing the YAML configuration file and provides
// structured access to the backend base URL, the session token location,
// request logging, and log file settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default backend location. The EPE API serves on port 8000 unless
// deployed behind a proxy.
const (
	DefaultBaseURL      = "http://127.0.0.1:8000"
	DefaultHistoryLimit = 50
)

// Config represents the console's configuration, loaded from a YAML file.
type Config struct {
	// BaseURL is the root URL of the EPE backend API, without a trailing slash.
	BaseURL string `yaml:"base-url" json:"base-url"`

	// TokenFile is the path of the file holding the operator's bearer token.
	// Defaults to epe_token inside the state directory.
	TokenFile string `yaml:"token-file" json:"token-file"`

	// RequestLog enables per-request logging of gateway calls.
	RequestLog bool `yaml:"request-log" json:"request-log"`

	// HistoryLimit caps review-history and test-history fetches.
	HistoryLimit int `yaml:"history-limit" json:"history-limit"`

	// Logging holds log output settings. The console never logs to the
	// terminal while the TUI owns it.
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig holds log file settings.
type LoggingConfig struct {
	// File is the log file path. Defaults to epeconsole.log inside the
	// state directory.
	File string `yaml:"file" json:"file"`

	// Level is the logrus level name. Defaults to "info".
	Level string `yaml:"level" json:"level"`

	// MaxSizeMB is the rotation threshold. Defaults to 10.
	MaxSizeMB int `yaml:"max-size-mb" json:"max-size-mb"`

	// MaxBackups is the number of rotated files kept. Defaults to 3.
	MaxBackups int `yaml:"max-backups" json:"max-backups"`
}

// StateDir returns the console's state directory (~/.epeconsole),
// falling back to the working directory when the home dir is unknown.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".epeconsole"
	}
	return filepath.Join(home, ".epeconsole")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(StateDir(), "config.yaml")
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOptional behaves like Load but returns a default configuration when
// the file does not exist. A present-but-invalid file is still an error.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(unwrapPathError(err)) {
			cfg = &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func unwrapPathError(err error) error {
	for {
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		inner := u.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(StateDir(), "epe_token")
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(StateDir(), "epeconsole.log")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
}
