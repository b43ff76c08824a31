// Package config provides server configuration from flags and environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr         string        // listen address, e.g. ":3000"
	AllowOrigins string        // CORS origins, comma separated
	DataDir      string        // badger directory; empty keeps sessions in memory
	SessionTTL   time.Duration // expiry of stored sessions, 0 = never
	LogLevel     string        // trace, debug, info, warn, error
}

func Default() Config {
	return Config{
		Addr:         ":3000",
		AllowOrigins: "http://localhost:5173",
		SessionTTL:   24 * time.Hour,
		LogLevel:     "info",
	}
}

// Load parses args (normally os.Args[1:]). Each flag defaults to its WEBCHESS_*
// environment variable, and failing that to Default().
func Load(args []string) (Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	ttl := cfg.SessionTTL
	if v := getenv("WEBCHESS_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: WEBCHESS_SESSION_TTL: %v", ErrInvalidConfig, err)
		}
		ttl = d
	}

	fs := flag.NewFlagSet("webchess", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", envOr(getenv, "WEBCHESS_ADDR", cfg.Addr), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", envOr(getenv, "WEBCHESS_ALLOW_ORIGINS", cfg.AllowOrigins), "CORS allowed origins")
	fs.StringVar(&cfg.DataDir, "data-dir", envOr(getenv, "WEBCHESS_DATA_DIR", cfg.DataDir), "badger data directory (empty for in-memory sessions)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", ttl, "how long idle sessions are kept")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr(getenv, "WEBCHESS_LOG_LEVEL", cfg.LogLevel), "log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

var levels = map[string]log.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: negative session TTL %s", ErrInvalidConfig, c.SessionTTL)
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Level returns the fiber log level for LogLevel. Validate must have passed.
func (c Config) Level() log.Level {
	return levels[strings.ToLower(c.LogLevel)]
}
