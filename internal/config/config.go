// Package config handles the XDG configuration directory, the optional
// config.toml file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	// AppName is the application directory name.
	AppName = "morotasks"

	// ConfigFile is the optional configuration filename.
	ConfigFile = "config.toml"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// DebugLogFile receives logs from the interactive view.
	DebugLogFile = "debug.log"

	// DefaultAPIURL is used when neither config.toml nor API_URL set one.
	DefaultAPIURL = "http://localhost:8080"

	// Environment overrides.
	EnvAPIURL  = "API_URL"
	EnvBackend = "MOROTASKS_BACKEND"
)

// Backends.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

var validate = validator.New()

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the task API.
	APIURL string `validate:"required,url"`

	// Backend selects the service implementation.
	Backend string `validate:"required,oneof=rest googletasks"`

	// Timeout bounds each API request. Zero means no timeout.
	Timeout time.Duration `validate:"gte=0"`

	// Rollback undoes optimistic changes when their request fails.
	Rollback bool

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger is set by the dispatcher once flags are known.
	Logger *slog.Logger `validate:"-"`
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	APIURL            string `toml:"api_url"`
	Backend           string `toml:"backend"`
	Timeout           string `toml:"timeout"`
	RollbackOnFailure bool   `toml:"rollback_on_failure"`
}

// New creates a Config for the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/morotasks or $HOME/.config/morotasks.
// Values come from defaults, then config.toml, then the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:     dir,
		APIURL:  DefaultAPIURL,
		Backend: BackendREST,
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	var fc fileConfig
	_, err := toml.DecodeFile(c.FilePath(), &fc)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Backend != "" {
		c.Backend = fc.Backend
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid %s: timeout: %w", ConfigFile, err)
		}
		c.Timeout = d
	}
	c.Rollback = fc.RollbackOnFailure
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s: failed %q check", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DebugLogPath returns the path to the interactive view's log file.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.Dir, DebugLogFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
