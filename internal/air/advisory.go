package air

import "fmt"

// Commuter advice per pollutant and band. Static lookup; the texts mirror the
// dashboard's traffic-light guidance.
var advisories = map[Pollutant]map[RiskBand]string{
	PollutantPM25: {
		BandGreen:  "Green light: air is clean. Safe for biking, walking, or running to work.",
		BandYellow: "Caution: moderate particle levels. Sensitive groups (asthma, heart conditions) should wear a mask when walking near heavy traffic.",
		BandRed:    "Hazard: high particle pollution. Avoid outdoor exertion; take the subway, bus, or taxi and keep windows closed.",
	},
	PollutantOzone: {
		BandGreen:  "Green light: ozone levels are low. Safe for an outdoor commute.",
		BandYellow: "Caution: rising ozone. If you have asthma, carry your rescue inhaler and consider an easier walking pace.",
		BandRed:    "Hazard: high ozone. Limit time outdoors and avoid biking or jogging during peak afternoon hours.",
	},
}

// Advisory returns the static commuter recommendation for a pollutant at a
// given risk band.
func Advisory(p Pollutant, band RiskBand) (string, error) {
	byBand, ok := advisories[p]
	if !ok {
		return "", fmt.Errorf("advisory: %w: %q", ErrUnsupportedPollutant, string(p))
	}
	text, ok := byBand[band]
	if !ok {
		return "", fmt.Errorf("advisory: unknown risk band %d", int(band))
	}
	return text, nil
}

// ClinicalNote is the pollutant-level background shown in the dashboard footer
// and report appendix.
type ClinicalNote struct {
	Title string
	Text  string
}

var clinicalNotes = map[Pollutant]ClinicalNote{
	PollutantPM25: {
		Title: "Why PM2.5 matters for commuters",
		Text: "PM2.5 particles are small enough to penetrate deep into the lungs, and deep breathing " +
			"during biking or running increases exposure significantly. High levels trigger inflammation, " +
			"asthma attacks and cardiovascular stress; cyclists, runners and people waiting near busy " +
			"intersections are the most exposed.",
	},
	PollutantOzone: {
		Title: "Why ozone matters for commuters",
		Text: "Ground-level ozone is a lung irritant that peaks on hot, sunny afternoons and reacts with " +
			"lung tissue like a sunburn inside the airways. Expect coughing, throat irritation and reduced " +
			"lung capacity; levels usually drop in the early morning and late evening.",
	},
}

// Clinical returns the background note for a pollutant.
func Clinical(p Pollutant) (ClinicalNote, error) {
	note, ok := clinicalNotes[p]
	if !ok {
		return ClinicalNote{}, fmt.Errorf("clinical: %w: %q", ErrUnsupportedPollutant, string(p))
	}
	return note, nil
}
