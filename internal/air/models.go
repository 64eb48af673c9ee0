package air

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Pollutant identifies a tracked pollutant kind. The set is closed: anything
// outside the declared constants is rejected with ErrUnsupportedPollutant
// rather than silently defaulting, since a made-up risk band is a
// safety-relevant misclassification.
type Pollutant string

const (
	PollutantPM25  Pollutant = "pm25"
	PollutantOzone Pollutant = "o3"
)

// Pollutants lists every supported pollutant kind.
func Pollutants() []Pollutant {
	return []Pollutant{PollutantPM25, PollutantOzone}
}

// ParsePollutant normalizes user input ("pm25", "pm2.5", "o3", "ozone") into a
// Pollutant.
func ParsePollutant(s string) (Pollutant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pm25", "pm2.5", "pm2_5":
		return PollutantPM25, nil
	case "o3", "ozone":
		return PollutantOzone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPollutant, s)
	}
}

// Label returns the human-readable pollutant name used across the dashboard.
func (p Pollutant) Label() string {
	switch p {
	case PollutantPM25:
		return "PM2.5 (fine particulate matter)"
	case PollutantOzone:
		return "Ozone (O3)"
	default:
		return string(p)
	}
}

// Unit returns the measurement unit readings of this pollutant are reported in.
func (p Pollutant) Unit() string {
	switch p {
	case PollutantOzone:
		return "ppb"
	default:
		return "µg/m³"
	}
}

// RiskBand is a three-level qualitative severity classification, totally
// ordered by the underlying integer: Green < Yellow < Red.
type RiskBand int

const (
	BandGreen RiskBand = iota
	BandYellow
	BandRed
)

var bandNames = map[RiskBand]string{
	BandGreen:  "green",
	BandYellow: "yellow",
	BandRed:    "red",
}

func (b RiskBand) String() string {
	if name, ok := bandNames[b]; ok {
		return name
	}
	return fmt.Sprintf("riskband(%d)", int(b))
}

// MarshalText renders the band as its lowercase name. Used both for JSON
// fields and for bandCounts map keys.
func (b RiskBand) MarshalText() ([]byte, error) {
	name, ok := bandNames[b]
	if !ok {
		return nil, fmt.Errorf("unknown risk band %d", int(b))
	}
	return []byte(name), nil
}

func (b *RiskBand) UnmarshalText(text []byte) error {
	for band, name := range bandNames {
		if name == string(text) {
			*b = band
			return nil
		}
	}
	return fmt.Errorf("unknown risk band %q", string(text))
}

// ErrUnsupportedPollutant is returned when an operation receives a pollutant
// kind outside the closed enumerated set.
var ErrUnsupportedPollutant = errors.New("unsupported pollutant")

// ErrNonFiniteValue is returned when a concentration value is NaN or infinite.
// Classifying such a value would silently land in the green band, which is the
// same kind of misclassification ErrUnsupportedPollutant exists to prevent.
var ErrNonFiniteValue = errors.New("value is not finite")

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Reading is a single immutable observation parsed from an upstream response.
// Readings are never mutated and are discarded with the snapshot that holds
// them; nothing here is persisted to disk.
type Reading struct {
	Pollutant    Pollutant    `json:"pollutant"`
	Value        float64      `json:"value"`
	Unit         string       `json:"unit,omitempty"`
	LocationID   int64        `json:"locationId"`
	LocationName string       `json:"locationName,omitempty"`
	Timestamp    time.Time    `json:"timestampUtc"` // always UTC
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

// ClassifiedReading pairs a reading with its risk band and the advisory text
// the rendering layer shows for it.
type ClassifiedReading struct {
	Reading
	Band     RiskBand `json:"band"`
	Advisory string   `json:"advisory"`
}

// AreaQuery identifies a circular search area for one pollutant.
type AreaQuery struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	RadiusKM  int       `json:"radiusKm"`
	Pollutant Pollutant `json:"pollutant"`
}

// Key returns a canonical string key for indexing this area in stores.
func (q AreaQuery) Key() string {
	return fmt.Sprintf("%s@%.4f,%.4f/%dkm", q.Pollutant, q.Lat, q.Lon, q.RadiusKM)
}

// AreaSnapshot is the classified view of one area at a point in time: every
// reading with its band and advisory, plus the aggregate summary the
// dashboard's metric cards render.
type AreaSnapshot struct {
	Area      AreaQuery           `json:"area"`
	FetchedAt time.Time           `json:"fetchedAt"` // always UTC
	Source    string              `json:"source,omitempty"`
	Readings  []ClassifiedReading `json:"readings"`
	Summary   Summary             `json:"summary"`
}
