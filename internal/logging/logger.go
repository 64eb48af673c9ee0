package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/shreyainlabcoat/Gotham/internal/config"
)

// New builds the application logger. Development gets a colorized console
// handler, production gets JSON on stdout.
func New(cfg *config.AppConfig, appName string) *slog.Logger {
	level := ParseLevel(cfg.LogLevel)

	if cfg.AppEnv == "production" {
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
		return slog.New(h).With(
			"app", appName,
			"env", cfg.AppEnv,
		)
	}

	h := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		AddSource:  true,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h).With("app", appName)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
