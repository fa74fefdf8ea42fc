package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the key console.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Prefs   PrefsConfig
	Log     LogConfig
	// Language is the initial language when no preference has been persisted yet.
	Language string `env:"KEYCONSOLE_LANGUAGE" envDefault:"zh"`
}

type APIConfig struct {
	BaseURL string        `env:"KEYCONSOLE_API_BASE" envDefault:"http://localhost:8080/admin/api"`
	Timeout time.Duration `env:"KEYCONSOLE_HTTP_TIMEOUT" envDefault:"10s"`
}

type SessionConfig struct {
	RefreshInterval time.Duration `env:"KEYCONSOLE_REFRESH_INTERVAL" envDefault:"30s"`
	RedirectDelay   time.Duration `env:"KEYCONSOLE_REDIRECT_DELAY" envDefault:"1s"`
	NoticeTTL       time.Duration `env:"KEYCONSOLE_NOTICE_TTL" envDefault:"5s"`
	LoginNoticeTTL  time.Duration `env:"KEYCONSOLE_LOGIN_NOTICE_TTL" envDefault:"3s"`
}

type PrefsConfig struct {
	Backend  string `env:"KEYCONSOLE_PREFS_BACKEND" envDefault:"bolt"`
	Path     string `env:"KEYCONSOLE_PREFS_PATH" envDefault:"keyconsole.db"`
	RedisURL string `env:"REDIS_URL"`
}

type LogConfig struct {
	File  string `env:"KEYCONSOLE_LOG_FILE" envDefault:"keyconsole.log"`
	Level string `env:"KEYCONSOLE_LOG_LEVEL" envDefault:"info"`
}

var validBackends = map[string]bool{
	"bolt":   true,
	"redis":  true,
	"memory": true,
}

var validLanguages = map[string]bool{
	"zh": true,
	"en": true,
}

// Load reads an optional .env file, then environment variables, and returns a
// validated Config. Variables already present in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("KEYCONSOLE_API_BASE must be an http:// or https:// URL, got %q", c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	if c.API.Timeout <= 0 {
		return fmt.Errorf("KEYCONSOLE_HTTP_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.Session.RefreshInterval <= 0 {
		return fmt.Errorf("KEYCONSOLE_REFRESH_INTERVAL must be positive, got %s", c.Session.RefreshInterval)
	}
	if c.Session.RedirectDelay < 0 {
		return fmt.Errorf("KEYCONSOLE_REDIRECT_DELAY must not be negative, got %s", c.Session.RedirectDelay)
	}

	if !validBackends[c.Prefs.Backend] {
		return fmt.Errorf("KEYCONSOLE_PREFS_BACKEND must be one of bolt, redis, memory; got %q", c.Prefs.Backend)
	}
	if c.Prefs.Backend == "redis" && c.Prefs.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when KEYCONSOLE_PREFS_BACKEND is redis")
	}
	if c.Prefs.Backend == "bolt" && c.Prefs.Path == "" {
		return fmt.Errorf("KEYCONSOLE_PREFS_PATH is required when KEYCONSOLE_PREFS_BACKEND is bolt")
	}

	if !validLanguages[c.Language] {
		return fmt.Errorf("KEYCONSOLE_LANGUAGE must be one of zh, en; got %q", c.Language)
	}

	return nil
}

// SlogLevel maps the configured level name onto a slog level. Unknown names
// fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
