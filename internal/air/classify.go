package air

import (
	"fmt"
	"math"
)

// thresholds holds the two cut points that bound the yellow band for one
// pollutant: values below lowHigh are green, values above highExtreme are red,
// everything in between (bounds inclusive) is yellow.
type thresholds struct {
	lowHigh     float64
	highExtreme float64
}

// Fixed EPA-derived cut points. Not user-configurable.
var thresholdsByPollutant = map[Pollutant]thresholds{
	PollutantPM25:  {lowHigh: 12, highExtreme: 35.4},
	PollutantOzone: {lowHigh: 54, highExtreme: 70},
}

// Classify maps a pollutant concentration to its risk band.
//
// The mapping is total over finite values: negative readings occasionally show
// up as upstream sensor noise and classify green rather than erroring.
// Boundary values belong to the lower-severity band up to and including the
// stated upper bound, so PM2.5 = 12.0 is yellow (not green) and 35.4 is still
// yellow (not red). Same (pollutant, value) always yields the same band; there
// is no hidden state and no I/O.
func Classify(p Pollutant, value float64) (RiskBand, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return BandGreen, fmt.Errorf("classify %s: %w (%v)", p, ErrNonFiniteValue, value)
	}

	t, ok := thresholdsByPollutant[p]
	if !ok {
		return BandGreen, fmt.Errorf("classify: %w: %q", ErrUnsupportedPollutant, string(p))
	}

	switch {
	case value > t.highExtreme:
		return BandRed, nil
	case value >= t.lowHigh:
		return BandYellow, nil
	default:
		return BandGreen, nil
	}
}
