package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func snapshotWithReadings(names ...string) air.AreaSnapshot {
	readings := make([]air.ClassifiedReading, 0, len(names))
	for i, name := range names {
		readings = append(readings, air.ClassifiedReading{
			Reading: air.Reading{
				Pollutant:    air.PollutantPM25,
				Value:        float64(10 + i),
				Unit:         "µg/m³",
				LocationName: name,
			},
			Band: air.BandGreen,
		})
	}
	return air.AreaSnapshot{
		Area:     air.AreaQuery{Lat: 40.7128, Lon: -74.006, RadiusKM: 10, Pollutant: air.PollutantPM25},
		Readings: readings,
		Summary:  air.Summary{Count: len(readings)},
	}
}

func TestAnalyze(t *testing.T) {
	gen := &stubGenerator{response: `{"risk_level":"moderate","summary":"Particle levels are elevated near arterial roads. Sensitive commuters may notice irritation.","actionable_tip":"Wear a mask near heavy traffic."}`}
	svc := NewService(gen, testLogger())

	insight, err := svc.Analyze(context.Background(), snapshotWithReadings("Queens College"))
	require.NoError(t, err)
	require.Equal(t, "Moderate", insight.RiskLevel, "risk level is normalized to canonical casing")
	require.Equal(t, "Wear a mask near heavy traffic.", insight.ActionableTip)
	require.Equal(t, "stub", insight.Engine)

	require.Contains(t, gen.prompt, "environmental health specialist")
	require.Contains(t, gen.prompt, "Queens College")
	require.Contains(t, gen.prompt, "EXACTLY these three keys")
}

func TestAnalyzeNoData(t *testing.T) {
	svc := NewService(&stubGenerator{}, testLogger())

	_, err := svc.Analyze(context.Background(), air.AreaSnapshot{})
	require.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeWithoutEngine(t *testing.T) {
	svc := NewService(nil, testLogger())
	require.False(t, svc.Enabled())

	_, err := svc.Analyze(context.Background(), snapshotWithReadings("Queens College"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no insights engine")
}

func TestAnalyzeGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model offline")}
	svc := NewService(gen, testLogger())

	_, err := svc.Analyze(context.Background(), snapshotWithReadings("Queens College"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "model offline")
}

func TestBuildPromptCapsReadings(t *testing.T) {
	snapshot := snapshotWithReadings("A", "B", "C", "D", "E", "F", "G")

	prompt := BuildPrompt(snapshot)
	require.Contains(t, prompt, `"E"`)
	require.NotContains(t, prompt, `"F"`)
	require.NotContains(t, prompt, `"G"`)
}

func TestParseInsightStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"risk_level\":\"High\",\"summary\":\"Ozone is spiking this afternoon. Avoid exertion outdoors.\",\"actionable_tip\":\"Take the subway instead of biking.\"}\n```"

	insight, err := ParseInsight(raw)
	require.NoError(t, err)
	require.Equal(t, "High", insight.RiskLevel)
	require.Equal(t, "Take the subway instead of biking.", insight.ActionableTip)
}

func TestParseInsightRejectsUnknownRiskLevel(t *testing.T) {
	_, err := ParseInsight(`{"risk_level":"Apocalyptic","summary":"Doom.","actionable_tip":"Hide."}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Apocalyptic")
}

func TestParseInsightRejectsMissingSummary(t *testing.T) {
	_, err := ParseInsight(`{"risk_level":"Low","summary":"  ","actionable_tip":"Enjoy the ride."}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "summary")
}

func TestParseInsightSurfacesModelError(t *testing.T) {
	_, err := ParseInsight(`{"error":"No response from local model."}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "No response from local model")
}

func TestParseInsightRejectsPlainText(t *testing.T) {
	_, err := ParseInsight("The air is fine today, enjoy your commute!")
	require.Error(t, err)
}

func TestParseInsightTrimsWhitespace(t *testing.T) {
	insight, err := ParseInsight(`{"risk_level":" severe ","summary":" Stay inside. Air quality is hazardous. ","actionable_tip":" Close your windows. "}`)
	require.NoError(t, err)
	require.Equal(t, "Severe", insight.RiskLevel)
	require.False(t, strings.HasPrefix(insight.Summary, " "))
	require.Equal(t, "Close your windows.", insight.ActionableTip)
}
