// Package config loads and stores CLI configuration in the configuration directory.
// Only non-secret settings are kept here; remembered credentials go to the OS keychain.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tiauth/cli/internal/fsutil"
)

// FileName is the config file inside the configuration directory.
const FileName = "config.yaml"

// Environment overrides, applied on top of the file.
const (
	EnvLoginURL  = "TIAUTH_LOGIN_URL"
	EnvLogoutURL = "TIAUTH_LOGOUT_URL"
	EnvProxy     = "TIAUTH_PROXY"
	EnvLogLevel  = "TIAUTH_LOG_LEVEL"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LoginURL            string `yaml:"login_url,omitempty"`
	LogoutURL           string `yaml:"logout_url,omitempty"`
	Proxy               string `yaml:"proxy,omitempty"`
	LogLevel            string `yaml:"log_level,omitempty"`
	RememberCredentials bool   `yaml:"remember_credentials,omitempty"`
}

// Path returns the path to the config file in dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads configuration from dir. A file that is missing or cannot be read
// yields defaults; only a malformed file is an error. Whether dir is usable is
// reported by the commands that write to it.
func Load(dir string) (Config, error) {
	c := Config{LogLevel: "warn"}
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("config: unreadable, using defaults", "path", Path(dir), "err", err)
		}
		return c, nil
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Save writes configuration to dir with 0600 permissions.
func Save(dir string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(Path(dir), b)
}

// WithEnv returns c with environment overrides applied.
func (c Config) WithEnv() Config {
	if v := os.Getenv(EnvLoginURL); v != "" {
		c.LoginURL = v
	}
	if v := os.Getenv(EnvLogoutURL); v != "" {
		c.LogoutURL = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return c
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := []string{"login_url", "logout_url", "proxy", "log_level", "remember_credentials"}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as a string.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "login_url":
		return c.LoginURL, nil
	case "logout_url":
		return c.LogoutURL, nil
	case "proxy":
		return c.Proxy, nil
	case "log_level":
		return c.LogLevel, nil
	case "remember_credentials":
		return strconv.FormatBool(c.RememberCredentials), nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
}

// Set updates key from its string form.
func (c *Config) Set(key, value string) error {
	switch key {
	case "login_url":
		c.LoginURL = value
	case "logout_url":
		c.LogoutURL = value
	case "proxy":
		c.Proxy = value
	case "log_level":
		c.LogLevel = value
	case "remember_credentials":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("remember_credentials: %w", err)
		}
		c.RememberCredentials = b
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}
