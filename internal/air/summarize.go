package air

import "math"

// SummaryStats carries the numeric aggregates for a non-empty set of readings.
type SummaryStats struct {
	Average float64 `json:"average"`
	Peak    float64 `json:"peak"`
	Minimum float64 `json:"minimum"`
}

// Summary aggregates a set of readings: how many there were, how they split
// across risk bands, and (when any exist) their average/peak/minimum. Stats is
// nil on empty input so callers render an explicit empty state instead of
// mistaking 0.0 for clean air.
type Summary struct {
	Count      int              `json:"count"`
	Stats      *SummaryStats    `json:"stats,omitempty"`
	BandCounts map[RiskBand]int `json:"bandCounts"`
}

// Summarize aggregates readings into a Summary. It is a pure fold over
// Classify: an unsupported pollutant anywhere in the sequence propagates
// unchanged rather than being skipped. Empty input is not an error; it yields
// count zero, nil stats and all-zero band counts.
func Summarize(readings []Reading) (Summary, error) {
	summary := Summary{
		BandCounts: map[RiskBand]int{
			BandGreen:  0,
			BandYellow: 0,
			BandRed:    0,
		},
	}

	if len(readings) == 0 {
		return summary, nil
	}

	var total float64
	peak := math.Inf(-1)
	minimum := math.Inf(1)

	for _, r := range readings {
		band, err := Classify(r.Pollutant, r.Value)
		if err != nil {
			return Summary{}, err
		}
		summary.BandCounts[band]++

		total += r.Value
		if r.Value > peak {
			peak = r.Value
		}
		if r.Value < minimum {
			minimum = r.Value
		}
	}

	summary.Count = len(readings)
	summary.Stats = &SummaryStats{
		Average: total / float64(len(readings)),
		Peak:    peak,
		Minimum: minimum,
	}
	return summary, nil
}

// WorstBand returns the highest-severity band with a non-zero count, defaulting
// to green when the summary is empty.
func (s Summary) WorstBand() RiskBand {
	worst := BandGreen
	for _, band := range []RiskBand{BandYellow, BandRed} {
		if s.BandCounts[band] > 0 {
			worst = band
		}
	}
	return worst
}
