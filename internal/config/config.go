// Package config loads guess-the-song configuration from TOML and the environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

var (
	// ErrMissingCredentials is returned when the Spotify client id or secret is not set.
	ErrMissingCredentials = errors.New("missing Spotify client id or secret (set SPOTIFY_ID and SPOTIFY_SECRET)")

	// ErrInvalidLogLevel is returned when log.level is not a known level.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidDuration is returned when a timeout is zero or negative.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Spotify SpotifyConfig `toml:"spotify"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// SpotifyConfig holds catalog API credentials and aggregation tuning.
type SpotifyConfig struct {
	ClientID        string   `toml:"client_id"`
	ClientSecret    string   `toml:"client_secret"`
	Market          string   `toml:"market"`
	TokenURL        string   `toml:"token_url"`
	APIURL          string   `toml:"api_url"`
	RequestTimeout  Duration `toml:"request_timeout"`
	RateLimit       float64  `toml:"rate_limit"`
	RateBurst       int      `toml:"rate_burst"`
	CacheToken      bool     `toml:"cache_token"`
	AlbumSample     int      `toml:"album_sample"`
	AlbumLimit      int      `toml:"album_limit"`
	AlbumTrackLimit int      `toml:"album_track_limit"`
	SearchLimit     int      `toml:"search_limit"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration that decodes from strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration described by the embedded example file.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("parsing embedded default config: %v", err))
	}
	return &cfg
}

// Load builds a Config from defaults, the TOML file at path (if path is not
// empty) and environment overrides, in that order. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	if v := firstEnv("SPOTIFY_ID", "SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := firstEnv("SPOTIFY_SECRET", "SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("GUESS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GUESS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports whether the configuration can run the service.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}

	if c.Spotify.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("%w: spotify.request_timeout = %s", ErrInvalidDuration, c.Spotify.RequestTimeout.Duration)
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout = %s", ErrInvalidDuration, c.Server.ShutdownTimeout.Duration)
	}

	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
