package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/air/openaq"
	httpapi "github.com/shreyainlabcoat/Gotham/internal/api/http"
	"github.com/shreyainlabcoat/Gotham/internal/config"
	"github.com/shreyainlabcoat/Gotham/internal/geo"
	"github.com/shreyainlabcoat/Gotham/internal/insights"
	"github.com/shreyainlabcoat/Gotham/internal/insights/ollama"
	"github.com/shreyainlabcoat/Gotham/internal/insights/openai"
	"github.com/shreyainlabcoat/Gotham/internal/logging"
	"github.com/shreyainlabcoat/Gotham/internal/scheduler"
	"github.com/shreyainlabcoat/Gotham/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard and API server",
	Long: `Starts the HTTP server: the dashboard on /, the JSON API under
/api/v1 and a background scheduler that keeps every watched area fresh.`,
	RunE: runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg, "gotham")

	if err := httpapi.LoadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// OpenAQ source with resilience (backoff + circuit breaker).
	source := openaq.NewClient(httpClient, cfg.OpenAQAPIKey, cfg.OpenAQBaseURL)

	// Core service orchestrating source and store.
	service := air.NewService(memStore, source, log)

	watchAreas, err := buildWatchAreas(cfg, log)
	if err != nil {
		return err
	}

	generator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	insightsSvc := insights.NewService(generator, log)
	if generator != nil {
		log.Info("AI insights enabled", "engine", generator.Name(), "model", cfg.AIModel)
	}

	// Scheduler that periodically fetches and stores data.
	sched := scheduler.New(watchAreas, cfg.FetchInterval, service, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "gotham",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "gotham",
		})
	})

	httpapi.RegisterRoutes(app, service, insightsSvc, watchAreas)
	httpapi.RegisterDashboard(app, service, cfg.GoogleMapsAPIKey)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("server listening", "port", cfg.Port, "watchedAreas", len(watchAreas))

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}

// buildWatchAreas turns the configured coordinates and cities into the list of
// areas the scheduler keeps fresh. Every point is crossed with every watched
// pollutant.
func buildWatchAreas(cfg *config.AppConfig, log *slog.Logger) ([]air.AreaQuery, error) {
	points := make([]air.Coordinates, 0, len(cfg.WatchCoordinates)+len(cfg.WatchCities))
	points = append(points, cfg.WatchCoordinates...)

	if len(cfg.WatchCities) > 0 {
		geo.SetAPIKey(cfg.GeocoderAPIKey)
		for _, city := range cfg.WatchCities {
			point, err := geo.LookupCity(city.City, city.Country)
			if err != nil {
				return nil, fmt.Errorf("resolve watch city %q: %w", city.City, err)
			}
			log.Info("watch city resolved", "city", city.City, "lat", point.Lat, "lon", point.Lon)
			points = append(points, point)
		}
	}

	areas := make([]air.AreaQuery, 0, len(points)*len(cfg.WatchPollutants))
	for _, point := range points {
		for _, pollutant := range cfg.WatchPollutants {
			areas = append(areas, air.AreaQuery{
				Lat:       point.Lat,
				Lon:       point.Lon,
				RadiusKM:  cfg.WatchRadiusKM,
				Pollutant: pollutant,
			})
		}
	}
	return areas, nil
}

// buildGenerator selects the AI engine. Engine "none" yields a nil generator,
// which keeps the insights endpoints mounted but answering 503.
func buildGenerator(cfg *config.AppConfig) (insights.Generator, error) {
	switch cfg.AIEngine {
	case config.EngineOllama:
		return ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.AIModel), nil
	case config.EngineOpenAI:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.AIModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, nil
	}
}
