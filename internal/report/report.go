// Package report composes markdown air quality reports and writes them in the
// formats the reporting workflow hands out: markdown for docs, plain text for
// pasting, HTML for sharing.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/insights"
)

// Report is a composed air quality report ready to be written or previewed.
type Report struct {
	ID        string
	Area      air.AreaQuery
	CreatedAt time.Time
	Markdown  string
}

// maxHotspots caps the hotspot table length.
const maxHotspots = 5

// Build composes the markdown report for a snapshot, with an optional AI
// analysis section.
func Build(snapshot air.AreaSnapshot, insight *insights.Insight) Report {
	id := uuid.NewString()
	now := time.Now().UTC()
	unit := snapshot.Area.Pollutant.Unit()

	var b strings.Builder
	b.WriteString("# Gotham Air Quality Report\n\n")
	fmt.Fprintf(&b, "**Area:** %s within %d km of %.4f, %.4f\n\n",
		snapshot.Area.Pollutant.Label(), snapshot.Area.RadiusKM, snapshot.Area.Lat, snapshot.Area.Lon)
	if !snapshot.FetchedAt.IsZero() {
		fmt.Fprintf(&b, "**Data fetched:** %s", snapshot.FetchedAt.Format(time.RFC3339))
		if snapshot.Source != "" {
			fmt.Fprintf(&b, " via %s", snapshot.Source)
		}
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "**Report ID:** %s\n\n", id)

	if snapshot.Summary.Count == 0 {
		b.WriteString("## Summary\n\nNo sensors found in this area. Try increasing the search radius.\n")
		return Report{ID: id, Area: snapshot.Area, CreatedAt: now, Markdown: b.String()}
	}

	stats := snapshot.Summary.Stats
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Stations reporting | %d |\n", snapshot.Summary.Count)
	fmt.Fprintf(&b, "| Average level | %.1f %s |\n", stats.Average, unit)
	fmt.Fprintf(&b, "| Peak hotspot | %.1f %s |\n", stats.Peak, unit)
	fmt.Fprintf(&b, "| Cleanest spot | %.1f %s |\n\n", stats.Minimum, unit)
	fmt.Fprintf(&b, "Band distribution: %d green, %d yellow, %d red.\n\n",
		snapshot.Summary.BandCounts[air.BandGreen],
		snapshot.Summary.BandCounts[air.BandYellow],
		snapshot.Summary.BandCounts[air.BandRed])

	b.WriteString("## Hotspots\n\n| Location | Value | Band |\n|---|---:|---|\n")
	for _, r := range topReadings(snapshot.Readings, maxHotspots) {
		fmt.Fprintf(&b, "| %s | %.1f %s | %s |\n", escapeCell(r.LocationName), r.Value, unit, r.Band)
	}
	b.WriteString("\n")

	if guide := commuterGuide(snapshot); guide != "" {
		fmt.Fprintf(&b, "## Commuter Guide\n\n> %s\n\n", guide)
	}

	if insight != nil {
		header := "## AI Health Analysis"
		if insight.Engine != "" {
			header += fmt.Sprintf(" (%s)", insight.Engine)
		}
		b.WriteString(header + "\n\n")
		fmt.Fprintf(&b, "- **Risk level:** %s\n", insight.RiskLevel)
		fmt.Fprintf(&b, "- **Summary:** %s\n", insight.Summary)
		if insight.ActionableTip != "" {
			fmt.Fprintf(&b, "- **Actionable tip:** %s\n", insight.ActionableTip)
		}
		b.WriteString("\n")
	}

	if note, err := air.Clinical(snapshot.Area.Pollutant); err == nil {
		fmt.Fprintf(&b, "## %s\n\n%s\n", note.Title, note.Text)
	}

	return Report{ID: id, Area: snapshot.Area, CreatedAt: now, Markdown: b.String()}
}

// commuterGuide classifies the area average and returns its advisory.
func commuterGuide(snapshot air.AreaSnapshot) string {
	if snapshot.Summary.Stats == nil {
		return ""
	}
	band, err := air.Classify(snapshot.Area.Pollutant, snapshot.Summary.Stats.Average)
	if err != nil {
		return ""
	}
	advice, err := air.Advisory(snapshot.Area.Pollutant, band)
	if err != nil {
		return ""
	}
	return advice
}

func topReadings(readings []air.ClassifiedReading, n int) []air.ClassifiedReading {
	sorted := make([]air.ClassifiedReading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
