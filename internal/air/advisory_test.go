package air

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvisoryCoversEveryBand(t *testing.T) {
	for _, p := range Pollutants() {
		seen := map[string]bool{}
		for _, band := range []RiskBand{BandGreen, BandYellow, BandRed} {
			text, err := Advisory(p, band)
			require.NoError(t, err, "pollutant %s band %s", p, band)
			require.NotEmpty(t, text)
			require.False(t, seen[text], "advisory for %s must differ per band", p)
			seen[text] = true
		}
	}
}

func TestAdvisoryUnsupportedPollutant(t *testing.T) {
	_, err := Advisory(Pollutant("so2"), BandGreen)
	require.ErrorIs(t, err, ErrUnsupportedPollutant)
}

func TestAdvisoryUnknownBand(t *testing.T) {
	_, err := Advisory(PollutantPM25, RiskBand(9))
	require.Error(t, err)
}

func TestClinicalNotes(t *testing.T) {
	for _, p := range Pollutants() {
		note, err := Clinical(p)
		require.NoError(t, err)
		require.NotEmpty(t, note.Title)
		require.NotEmpty(t, note.Text)
	}

	_, err := Clinical(Pollutant("pollen"))
	require.ErrorIs(t, err, ErrUnsupportedPollutant)
}
