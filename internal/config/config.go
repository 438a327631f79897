// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name Load reads.
const EnvPrefix = "PROJECTCATALOG_"

const secretKeyBytes = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken     string        `env:"GITHUB_TOKEN"`
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	DBPath          string        `env:"DB_PATH" envDefault:"projectcatalog.db"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30m"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	SecretKeyHex    string        `env:"SECRET_KEY"`

	secretKey []byte
}

// SecretKey returns the decoded SecretKeyHex: 32 bytes, or nil when unset.
func (c *Config) SecretKey() []byte {
	return c.secretKey
}

// HasGitHubToken reports whether a GitHub token was configured. Without one
// the catalog runs unauthenticated and metadata refresh stays idle.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
//
// All variables are optional: PROJECTCATALOG_GITHUB_TOKEN,
// PROJECTCATALOG_LISTEN_ADDR (127.0.0.1:8080), PROJECTCATALOG_DB_PATH
// (projectcatalog.db), PROJECTCATALOG_REFRESH_INTERVAL (30m),
// PROJECTCATALOG_LOG_LEVEL (info), PROJECTCATALOG_LOG_FORMAT (text) and
// PROJECTCATALOG_SECRET_KEY (64 hex characters; enables token storage).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("%sREFRESH_INTERVAL must be positive, got %s", EnvPrefix, c.RefreshInterval))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%sLOG_FORMAT must be text or json, got %q", EnvPrefix, c.LogFormat))
	}

	if c.SecretKeyHex != "" {
		key, err := hex.DecodeString(c.SecretKeyHex)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%sSECRET_KEY must be hex: %w", EnvPrefix, err))
		case len(key) != secretKeyBytes:
			errs = append(errs, fmt.Errorf("%sSECRET_KEY must decode to %d bytes, got %d", EnvPrefix, secretKeyBytes, len(key)))
		default:
			c.secretKey = key
		}
	}

	return errors.Join(errs...)
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%sLOG_LEVEL has invalid level %q: %w", EnvPrefix, s, err)
	}
	return level, nil
}
