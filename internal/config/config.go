package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shreyainlabcoat/Gotham/internal/air"
)

// WatchCity is a city to geocode into a watch area at startup.
type WatchCity struct {
	City    string
	Country string
}

type AppConfig struct {
	// Upstream credentials.
	OpenAQAPIKey     string
	GoogleMapsAPIKey string
	GeocoderAPIKey   string
	OpenAIAPIKey     string
	OllamaAPIKey     string

	// Upstream endpoints. Empty OpenAQBaseURL selects the public API.
	OpenAQBaseURL string
	OllamaBaseURL string
	OpenAIBaseURL string

	// AI insights engine: "none", "ollama" or "openai".
	AIEngine string
	AIModel  string

	// FetchInterval controls how often watched areas are refreshed.
	FetchInterval time.Duration

	// Watched areas: fixed coordinates plus cities geocoded at startup.
	WatchCoordinates []air.Coordinates
	WatchCities      []WatchCity
	WatchRadiusKM    int
	WatchPollutants  []air.Pollutant

	// Outbound HTTP client timeout.
	HTTPTimeout time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per area (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Where the report command writes its files.
	ReportDir string

	Port     string
	LogLevel string
	AppEnv   string
}

// Engine names accepted in AI_ENGINE.
const (
	EngineNone   = "none"
	EngineOllama = "ollama"
	EngineOpenAI = "openai"
)

// MaxWatchRadiusKM is the widest allowed search radius. The OpenAQ API caps
// the radius filter at 25 km.
const MaxWatchRadiusKM = 25

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenAQAPIKey = os.Getenv("OPENAQ_API_KEY")
	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OllamaAPIKey = os.Getenv("OLLAMA_API_KEY")

	// The geocoder uses the Google Geocoding API, so the Maps key doubles as
	// its default.
	cfg.GeocoderAPIKey = getenvDefault("GEOCODER_API_KEY", cfg.GoogleMapsAPIKey)

	cfg.OpenAQBaseURL = os.Getenv("OPENAQ_BASE_URL")
	cfg.OllamaBaseURL = getenvDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	cfg.OpenAIBaseURL = getenvDefault("OPENAI_BASE_URL", "https://api.openai.com")

	if err := loadAI(cfg); err != nil {
		return nil, err
	}

	// Refresh interval: default 15 minutes.
	intervalStr := getenvDefault("FETCH_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.ReportDir = getenvDefault("REPORT_DIR", "reports")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.AppEnv = getenvDefault("APP_ENV", "development")

	if err := loadWatch(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadAI(cfg *AppConfig) error {
	cfg.AIEngine = strings.ToLower(getenvDefault("AI_ENGINE", EngineNone))
	switch cfg.AIEngine {
	case EngineNone, EngineOllama, EngineOpenAI:
	default:
		return fmt.Errorf("invalid AI_ENGINE %q: must be %q, %q or %q", cfg.AIEngine, EngineNone, EngineOllama, EngineOpenAI)
	}

	cfg.AIModel = os.Getenv("AI_MODEL")
	if cfg.AIModel == "" {
		switch cfg.AIEngine {
		case EngineOllama:
			cfg.AIModel = "gemma3:latest"
		case EngineOpenAI:
			cfg.AIModel = "gpt-4o"
		}
	}
	return nil
}

func loadWatch(cfg *AppConfig) error {
	// Downtown Manhattan is watched when nothing else is configured.
	coordsStr := getenvDefault("WATCH_COORDINATES", "40.7128,-74.0060")
	coords, err := parseCoordinateList(coordsStr)
	if err != nil {
		return fmt.Errorf("invalid WATCH_COORDINATES: %w", err)
	}
	cfg.WatchCoordinates = coords

	cities, err := parseCityList(os.Getenv("WATCH_CITIES"))
	if err != nil {
		return fmt.Errorf("invalid WATCH_CITIES: %w", err)
	}
	cfg.WatchCities = cities

	cfg.WatchRadiusKM = getenvInt("WATCH_RADIUS_KM", 10)
	if cfg.WatchRadiusKM < 1 || cfg.WatchRadiusKM > MaxWatchRadiusKM {
		return fmt.Errorf("invalid WATCH_RADIUS_KM %d: must be between 1 and %d", cfg.WatchRadiusKM, MaxWatchRadiusKM)
	}

	pollutants, err := parsePollutantList(getenvDefault("WATCH_POLLUTANTS", "pm25,o3"))
	if err != nil {
		return fmt.Errorf("invalid WATCH_POLLUTANTS: %w", err)
	}
	cfg.WatchPollutants = pollutants

	return nil
}

// parseCoordinateList parses "lat,lon" pairs separated by semicolons, e.g.
// "40.7128,-74.0060;40.6782,-73.9442".
func parseCoordinateList(s string) ([]air.Coordinates, error) {
	var out []air.Coordinates
	for _, pair := range splitList(s, ";") {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed coordinate pair %q", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed latitude in %q: %w", pair, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed longitude in %q: %w", pair, err)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("coordinate pair %q out of range", pair)
		}
		out = append(out, air.Coordinates{Lat: lat, Lon: lon})
	}
	return out, nil
}

// parseCityList parses "City,CC" pairs separated by semicolons, e.g.
// "New York,US;Newark,US".
func parseCityList(s string) ([]WatchCity, error) {
	var out []WatchCity
	for _, pair := range splitList(s, ";") {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed city pair %q: want \"City,Country\"", pair)
		}
		city := strings.TrimSpace(parts[0])
		country := strings.TrimSpace(parts[1])
		if city == "" {
			return nil, fmt.Errorf("malformed city pair %q: empty city", pair)
		}
		out = append(out, WatchCity{City: city, Country: country})
	}
	return out, nil
}

func parsePollutantList(s string) ([]air.Pollutant, error) {
	var out []air.Pollutant
	for _, name := range splitList(s, ",") {
		p, err := air.ParsePollutant(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no pollutants configured")
	}
	return out, nil
}

func splitList(s, sep string) []string {
	var out []string
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
