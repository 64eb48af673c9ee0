// Package insights turns classified air quality snapshots into a structured
// health analysis produced by an LLM. The model is held to a strict three-key
// JSON contract so the dashboard can render the result as a table instead of
// free text.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shreyainlabcoat/Gotham/internal/air"
)

// Insight is the structured health analysis returned by the model.
type Insight struct {
	RiskLevel     string `json:"risk_level"`
	Summary       string `json:"summary"`
	ActionableTip string `json:"actionable_tip"`
	Engine        string `json:"engine,omitempty"`
}

// ErrNoData is returned when a snapshot has no readings to analyze.
var ErrNoData = errors.New("not enough data for analysis")

// riskLevels maps the accepted risk_level answers to their canonical casing.
var riskLevels = map[string]string{
	"low":      "Low",
	"moderate": "Moderate",
	"high":     "High",
	"severe":   "Severe",
}

// Generator produces a raw model response for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service builds prompts, drives the configured generator and validates the
// model's answer.
type Service struct {
	generator Generator
	log       *slog.Logger
}

// NewService wires up the insights domain. A nil generator is allowed and
// makes Analyze fail with a configuration error, which lets callers keep the
// AI surface mounted while no engine is selected.
func NewService(generator Generator, log *slog.Logger) *Service {
	return &Service{
		generator: generator,
		log:       log.With("component", "insights.service"),
	}
}

// Enabled reports whether an engine is configured.
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Analyze asks the model for a health analysis of the snapshot.
func (s *Service) Analyze(ctx context.Context, snapshot air.AreaSnapshot) (Insight, error) {
	if s.generator == nil {
		return Insight{}, errors.New("no insights engine configured")
	}
	if snapshot.Summary.Count == 0 {
		return Insight{}, ErrNoData
	}

	prompt := BuildPrompt(snapshot)
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Insight{}, fmt.Errorf("generate insight: %w", err)
	}
	s.log.Debug("model response", "engine", s.generator.Name(), "content", raw)

	insight, err := ParseInsight(raw)
	if err != nil {
		return Insight{}, fmt.Errorf("%s response malformed: %w", s.generator.Name(), err)
	}
	insight.Engine = s.generator.Name()
	return insight, nil
}

// maxPromptReadings caps how many readings are inlined into the prompt.
const maxPromptReadings = 5

// BuildPrompt renders the instruction the model answers. The wording pins the
// model to a JSON object with exactly the three keys ParseInsight expects.
func BuildPrompt(snapshot air.AreaSnapshot) string {
	type record struct {
		Location string  `json:"location"`
		Value    float64 `json:"value"`
		Unit     string  `json:"unit"`
	}

	rows := snapshot.Readings
	if len(rows) > maxPromptReadings {
		rows = rows[:maxPromptReadings]
	}
	records := make([]record, 0, len(rows))
	for _, r := range rows {
		records = append(records, record{Location: r.LocationName, Value: r.Value, Unit: r.Unit})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		payload = []byte("[]")
	}

	return fmt.Sprintf(
		"Act as an environmental health specialist in NYC. Analyze this current %s data: %s. "+
			"You MUST return a valid JSON object with EXACTLY these three keys: "+
			"'risk_level' (String: Low, Moderate, High, or Severe), "+
			"'summary' (String: 2 sentences on immediate health risks for commuters), "+
			"'actionable_tip' (String: 1 strict, direct recommendation).",
		snapshot.Area.Pollutant.Label(), payload)
}

// ParseInsight decodes a model answer into an Insight. Models wrap JSON in
// markdown code fences often enough that the fences are stripped before
// decoding.
func ParseInsight(raw string) (Insight, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire struct {
		Error         string `json:"error"`
		RiskLevel     string `json:"risk_level"`
		Summary       string `json:"summary"`
		ActionableTip string `json:"actionable_tip"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return Insight{}, err
	}
	if wire.Error != "" {
		return Insight{}, fmt.Errorf("model error: %s", wire.Error)
	}

	level, ok := riskLevels[strings.ToLower(strings.TrimSpace(wire.RiskLevel))]
	if !ok {
		return Insight{}, fmt.Errorf("unknown risk level %q", wire.RiskLevel)
	}
	if strings.TrimSpace(wire.Summary) == "" {
		return Insight{}, errors.New("summary missing")
	}

	return Insight{
		RiskLevel:     level,
		Summary:       strings.TrimSpace(wire.Summary),
		ActionableTip: strings.TrimSpace(wire.ActionableTip),
	}, nil
}
