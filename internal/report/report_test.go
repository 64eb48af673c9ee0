package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/insights"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) air.AreaSnapshot {
	t.Helper()
	area := air.AreaQuery{Lat: 40.7128, Lon: -74.006, RadiusKM: 10, Pollutant: air.PollutantPM25}
	readings := []air.Reading{
		{Pollutant: air.PollutantPM25, Value: 8.0, Unit: "µg/m³", LocationName: "Hudson Yards"},
		{Pollutant: air.PollutantPM25, Value: 41.2, Unit: "µg/m³", LocationName: "Cross Bronx Expwy"},
		{Pollutant: air.PollutantPM25, Value: 19.6, Unit: "µg/m³", LocationName: "Queens College"},
	}
	snapshot, err := air.BuildSnapshot(area, "openaq", readings)
	require.NoError(t, err)
	return snapshot
}

func TestBuildReport(t *testing.T) {
	insight := &insights.Insight{
		RiskLevel:     "Moderate",
		Summary:       "Particle levels are elevated near highways.",
		ActionableTip: "Wear a mask near heavy traffic.",
		Engine:        "ollama",
	}

	rep := Build(testSnapshot(t), insight)

	_, err := uuid.Parse(rep.ID)
	require.NoError(t, err)
	require.False(t, rep.CreatedAt.IsZero())

	md := rep.Markdown
	require.Contains(t, md, "# Gotham Air Quality Report")
	require.Contains(t, md, "| Stations reporting | 3 |")
	require.Contains(t, md, "| Peak hotspot | 41.2 µg/m³ |")
	require.Contains(t, md, "Band distribution: 1 green, 1 yellow, 1 red.")
	require.Contains(t, md, "## Commuter Guide")
	require.Contains(t, md, "## AI Health Analysis (ollama)")
	require.Contains(t, md, "**Risk level:** Moderate")
	require.Contains(t, md, "Why PM2.5 matters for commuters")

	// Hotspots are sorted by value, worst first.
	bronx := strings.Index(md, "Cross Bronx Expwy")
	queens := strings.Index(md, "Queens College")
	hudson := strings.Index(md, "Hudson Yards")
	require.Greater(t, bronx, -1)
	require.Less(t, bronx, queens)
	require.Less(t, queens, hudson)
}

func TestBuildReportWithoutInsight(t *testing.T) {
	rep := Build(testSnapshot(t), nil)
	require.NotContains(t, rep.Markdown, "AI Health Analysis")
}

func TestBuildReportEmptySnapshot(t *testing.T) {
	area := air.AreaQuery{Lat: 40.7128, Lon: -74.006, RadiusKM: 2, Pollutant: air.PollutantOzone}
	snapshot, err := air.BuildSnapshot(area, "openaq", nil)
	require.NoError(t, err)

	rep := Build(snapshot, nil)
	require.Contains(t, rep.Markdown, "No sensors found in this area")
	require.NotContains(t, rep.Markdown, "## Hotspots")
}

func TestWriterFormats(t *testing.T) {
	dir := t.TempDir()
	rep := Build(testSnapshot(t), nil)

	paths, err := NewWriter(dir).Write(rep, FormatMarkdown, FormatText, FormatHTML)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	require.Equal(t, ".md", filepath.Ext(paths[0]))
	require.Equal(t, ".txt", filepath.Ext(paths[1]))
	require.Equal(t, ".html", filepath.Ext(paths[2]))

	mdContent, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	require.Equal(t, rep.Markdown, string(mdContent))

	txtContent, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	require.Equal(t, rep.Markdown, string(txtContent))

	htmlContent, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	require.Contains(t, string(htmlContent), "<h1")
	require.Contains(t, string(htmlContent), "<table>")
	require.Contains(t, string(htmlContent), "Gotham Air Quality Report")
}

func TestWriterDefaultsToMarkdown(t *testing.T) {
	dir := t.TempDir()
	rep := Build(testSnapshot(t), nil)

	paths, err := NewWriter(dir).Write(rep)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, ".md", filepath.Ext(paths[0]))
}

func TestWriterRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	rep := Build(testSnapshot(t), nil)

	_, err := NewWriter(dir).Write(rep, "docx")
	require.Error(t, err)
	require.Contains(t, err.Error(), "docx")
}

func TestPreviewRendersMarkdown(t *testing.T) {
	rep := Build(testSnapshot(t), nil)

	out := Preview(rep)
	require.NotEmpty(t, out)
	require.Contains(t, out, "Gotham Air Quality Report")
}
