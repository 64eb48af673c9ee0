package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/air/openaq"
	"github.com/shreyainlabcoat/Gotham/internal/config"
	"github.com/shreyainlabcoat/Gotham/internal/insights/ollama"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and upstream connectivity",
	Long: `Probes every configured upstream: a minimal OpenAQ query for the
PM2.5 parameter, the Ollama version endpoint when that engine is
selected and key presence checks for the rest.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	w := cmd.OutOrStdout()
	failed := 0

	if !check(w, "OPENAQ_API_KEY is set", cfg.OpenAQAPIKey != "", "get a free key at https://explore.openaq.org and set it in .env") {
		failed++
	} else {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		client := openaq.NewClient(httpClient, cfg.OpenAQAPIKey, cfg.OpenAQBaseURL)
		pid, _ := openaq.ParameterID(air.PollutantPM25)
		_, err := client.ParameterLatest(ctx, pid, 1)
		hint := ""
		if err != nil {
			hint = fmt.Sprintf("%v (status 401 means an invalid key, 429 means you are rate limited)", err)
		}
		if !check(w, "OpenAQ minimal query (PM2.5 latest)", err == nil, hint) {
			failed++
		}
	}

	if cfg.GoogleMapsAPIKey == "" {
		fmt.Fprintln(w, mutedStyle.Render("  -- GOOGLE_MAPS_API_KEY not set; the dashboard falls back to the station table"))
	}

	switch cfg.AIEngine {
	case config.EngineOllama:
		client := ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.AIModel)
		version, err := client.Version(ctx)
		hint := ""
		name := fmt.Sprintf("Ollama reachable (model %s)", cfg.AIModel)
		if err != nil {
			hint = fmt.Sprintf("%v (is Ollama running at %s?)", err, cfg.OllamaBaseURL)
		} else {
			name = fmt.Sprintf("Ollama %s reachable (model %s)", version, cfg.AIModel)
		}
		if !check(w, name, err == nil, hint) {
			failed++
		}
	case config.EngineOpenAI:
		if !check(w, "OPENAI_API_KEY is set", cfg.OpenAIAPIKey != "", "set OPENAI_API_KEY or switch AI_ENGINE") {
			failed++
		}
	default:
		fmt.Fprintln(w, mutedStyle.Render("  -- AI insights disabled (AI_ENGINE=none)"))
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Fprintln(w, okStyle.Render("All checks passed."))
	return nil
}

func check(w io.Writer, name string, ok bool, hint string) bool {
	if ok {
		fmt.Fprintf(w, "%s %s\n", okStyle.Render("  OK"), name)
		return true
	}
	fmt.Fprintf(w, "%s %s\n", failStyle.Render("FAIL"), name)
	if hint != "" {
		fmt.Fprintf(w, "     %s\n", mutedStyle.Render(hint))
	}
	return false
}
