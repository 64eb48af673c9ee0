package logging

import (
	"log/slog"
	"testing"

	"github.com/shreyainlabcoat/Gotham/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewForBothEnvironments(t *testing.T) {
	dev := New(&config.AppConfig{LogLevel: "debug", AppEnv: "development"}, "gotham")
	require.NotNil(t, dev)
	require.True(t, dev.Enabled(nil, slog.LevelDebug))

	prod := New(&config.AppConfig{LogLevel: "warn", AppEnv: "production"}, "gotham")
	require.NotNil(t, prod)
	require.False(t, prod.Enabled(nil, slog.LevelInfo))
	require.True(t, prod.Enabled(nil, slog.LevelWarn))
}
