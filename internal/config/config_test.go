package config

import (
	"testing"
	"time"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"OPENAQ_API_KEY", "GOOGLE_MAPS_API_KEY", "GEOCODER_API_KEY", "OPENAI_API_KEY", "OLLAMA_API_KEY",
	"OPENAQ_BASE_URL", "OLLAMA_BASE_URL", "OPENAI_BASE_URL",
	"AI_ENGINE", "AI_MODEL",
	"FETCH_INTERVAL", "HTTP_TIMEOUT", "STORE_MAX_HISTORY", "STORE_MAX_AGE",
	"WATCH_COORDINATES", "WATCH_CITIES", "WATCH_RADIUS_KM", "WATCH_POLLUTANTS",
	"REPORT_DIR", "PORT", "LOG_LEVEL", "APP_ENV",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.FetchInterval)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 96, cfg.StoreMaxHistory)
	require.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
	require.Equal(t, "reports", cfg.ReportDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "development", cfg.AppEnv)

	require.Equal(t, EngineNone, cfg.AIEngine)
	require.Empty(t, cfg.AIModel)
	require.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	require.Equal(t, "https://api.openai.com", cfg.OpenAIBaseURL)

	require.Equal(t, []air.Coordinates{{Lat: 40.7128, Lon: -74.006}}, cfg.WatchCoordinates)
	require.Empty(t, cfg.WatchCities)
	require.Equal(t, 10, cfg.WatchRadiusKM)
	require.Equal(t, []air.Pollutant{air.PollutantPM25, air.PollutantOzone}, cfg.WatchPollutants)
}

func TestLoadWatchParsing(t *testing.T) {
	clearEnv(t)
	t.Setenv("WATCH_COORDINATES", "40.7128,-74.0060;40.6782,-73.9442")
	t.Setenv("WATCH_CITIES", "New York,US; Newark , US")
	t.Setenv("WATCH_POLLUTANTS", "pm2.5")
	t.Setenv("WATCH_RADIUS_KM", "25")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.WatchCoordinates, 2)
	require.InDelta(t, 40.6782, cfg.WatchCoordinates[1].Lat, 1e-9)

	require.Equal(t, []WatchCity{
		{City: "New York", Country: "US"},
		{City: "Newark", Country: "US"},
	}, cfg.WatchCities)

	require.Equal(t, []air.Pollutant{air.PollutantPM25}, cfg.WatchPollutants)
	require.Equal(t, 25, cfg.WatchRadiusKM)
}

func TestLoadRejectsBadRadius(t *testing.T) {
	clearEnv(t)

	t.Setenv("WATCH_RADIUS_KM", "30")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "WATCH_RADIUS_KM")

	t.Setenv("WATCH_RADIUS_KM", "0")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsBadCoordinates(t *testing.T) {
	clearEnv(t)

	t.Setenv("WATCH_COORDINATES", "91.0,-74.0")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "WATCH_COORDINATES")

	t.Setenv("WATCH_COORDINATES", "somewhere")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsBadPollutant(t *testing.T) {
	clearEnv(t)
	t.Setenv("WATCH_POLLUTANTS", "pm25,voc")

	_, err := Load()
	require.ErrorIs(t, err, air.ErrUnsupportedPollutant)
}

func TestLoadRejectsBadEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_ENGINE", "bard")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "AI_ENGINE")
}

func TestLoadAIModelDefaults(t *testing.T) {
	clearEnv(t)

	t.Setenv("AI_ENGINE", "ollama")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gemma3:latest", cfg.AIModel)

	t.Setenv("AI_ENGINE", "openai")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", cfg.AIModel)

	t.Setenv("AI_MODEL", "gpt-oss:20b-cloud")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "gpt-oss:20b-cloud", cfg.AIModel)
}

func TestLoadGeocoderKeyDefaultsToMapsKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "maps-key", cfg.GeocoderAPIKey)

	t.Setenv("GEOCODER_API_KEY", "geo-key")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "geo-key", cfg.GeocoderAPIKey)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_INTERVAL", "often")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "FETCH_INTERVAL")
}
