// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the process configuration, sourced from the environment.
type Config struct {
	// BindAddr is the listen address for the HTTP/WebSocket server.
	BindAddr string
	// WinWindow is the tie-aggregation window after the first win claim.
	WinWindow time.Duration
	// RedisAddr enables action history publishing when non-empty.
	RedisAddr string
	// LogLevel controls logrus verbosity.
	LogLevel logrus.Level
}

const (
	defaultBindAddr    = ":3000"
	defaultWinWindowMS = 500
)

// Load reads configuration from the environment, falling back to defaults
// for anything unset. A .env file, if present, is expected to have been
// loaded by the caller beforehand.
func Load() Config {
	cfg := Config{
		BindAddr:  defaultBindAddr,
		WinWindow: defaultWinWindowMS * time.Millisecond,
		RedisAddr: os.Getenv("REDIS_ADDR"),
		LogLevel:  logrus.InfoLevel,
	}

	if v := os.Getenv("BIND_ADDR"); v != "" {
		cfg.BindAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.BindAddr = ":" + v
	}

	if v := os.Getenv("WIN_WINDOW_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.WinWindow = time.Duration(ms) * time.Millisecond
		} else {
			logrus.WithField("WIN_WINDOW_MS", v).Warn("invalid win window, using default")
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if level, err := logrus.ParseLevel(v); err == nil {
			cfg.LogLevel = level
		} else {
			logrus.WithField("LOG_LEVEL", v).Warn("invalid log level, using info")
		}
	}

	return cfg
}
