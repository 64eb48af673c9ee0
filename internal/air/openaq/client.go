// Package openaq implements the OpenAQ v3 API client used as the live air
// quality source. Requests are authenticated with an X-API-Key header and go
// through retry, backoff and circuit breaker layers.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the public OpenAQ API root.
const DefaultBaseURL = "https://api.openaq.org"

const (
	// maxLocations caps how many stations an area fetch queries for latest
	// measurements. Wide radii in dense networks can match hundreds of
	// stations and one request is made per station.
	maxLocations = 50

	// latestConcurrency bounds the per-location latest fan-out.
	latestConcurrency = 8

	locationsPageLimit = 100
)

// parameterIDs maps pollutant kinds to OpenAQ parameter ids.
var parameterIDs = map[air.Pollutant]int{
	air.PollutantPM25:  2,
	air.PollutantOzone: 7,
}

// ParameterID returns the OpenAQ parameter id for a pollutant.
func ParameterID(p air.Pollutant) (int, error) {
	id, ok := parameterIDs[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q", air.ErrUnsupportedPollutant, string(p))
	}
	return id, nil
}

// Coordinates is a geographic point as OpenAQ encodes it.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a monitoring site returned by /v3/locations.
type Location struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Locality    string       `json:"locality"`
	Timezone    string       `json:"timezone"`
	Coordinates *Coordinates `json:"coordinates"`
}

// Datetime is the timestamp pair the latest endpoints return.
type Datetime struct {
	UTC   string `json:"utc"`
	Local string `json:"local"`
}

// Latest is a latest-measurement row from the /latest endpoints.
type Latest struct {
	Value       float64      `json:"value"`
	LocationsID int64        `json:"locationsId"`
	SensorsID   int64        `json:"sensorsId"`
	Datetime    Datetime     `json:"datetime"`
	Coordinates *Coordinates `json:"coordinates"`
}

// Client talks to the OpenAQ v3 API and implements air.Source.
type Client struct {
	apiKey  string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates an OpenAQ client. An empty baseURL selects the public API.
func NewClient(client *http.Client, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openaq",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: httpConfig{
			client: client,
			backoff: backoffConfig{
				maxRetries:      3,
				initialInterval: 500 * time.Millisecond,
				maxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (c *Client) Name() string {
	return "openaq"
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("openaq api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Locations lists monitoring sites within radiusMeters of the given point that
// report the given parameter.
func (c *Client) Locations(ctx context.Context, lat, lon float64, radiusMeters, parameterID, limit int) ([]Location, error) {
	values := url.Values{}
	values.Set("coordinates", fmt.Sprintf("%s,%s", formatCoordinate(lat), formatCoordinate(lon)))
	values.Set("radius", strconv.Itoa(radiusMeters))
	values.Set("parameters_id", strconv.Itoa(parameterID))
	values.Set("limit", strconv.Itoa(limit))
	values.Set("page", "1")

	var payload struct {
		Results []Location `json:"results"`
	}
	if err := c.get(ctx, "/v3/locations", values, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// LocationLatest returns the most recent measurement reported by a location.
func (c *Client) LocationLatest(ctx context.Context, locationID int64) ([]Latest, error) {
	values := url.Values{}
	values.Set("limit", "1")
	values.Set("page", "1")

	var payload struct {
		Results []Latest `json:"results"`
	}
	path := fmt.Sprintf("/v3/locations/%d/latest", locationID)
	if err := c.get(ctx, path, values, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// ParameterLatest returns the most recent measurements for a parameter across
// all locations, up to limit rows.
func (c *Client) ParameterLatest(ctx context.Context, parameterID, limit int) ([]Latest, error) {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(limit))

	var payload struct {
		Results []Latest `json:"results"`
	}
	path := fmt.Sprintf("/v3/parameters/%d/latest", parameterID)
	if err := c.get(ctx, path, values, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// FetchArea lists stations around the query point and collects the latest
// measurement from each. Stations that fail or report nothing are skipped so
// one dead sensor does not abort the whole area.
func (c *Client) FetchArea(ctx context.Context, q air.AreaQuery) ([]air.Reading, error) {
	parameterID, err := ParameterID(q.Pollutant)
	if err != nil {
		return nil, err
	}

	locations, err := c.Locations(ctx, q.Lat, q.Lon, q.RadiusKM*1000, parameterID, locationsPageLimit)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if len(locations) > maxLocations {
		locations = locations[:maxLocations]
	}

	readings := make([]air.Reading, len(locations))
	found := make([]bool, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(latestConcurrency)
	for i, loc := range locations {
		g.Go(func() error {
			latest, err := c.LocationLatest(gctx, loc.ID)
			if err != nil || len(latest) == 0 {
				return nil
			}
			readings[i] = newReading(q.Pollutant, loc, latest[0])
			found[i] = true
			return nil
		})
	}
	// Workers swallow their errors; Wait only joins the fan-out.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]air.Reading, 0, len(locations))
	for i := range readings {
		if found[i] {
			out = append(out, readings[i])
		}
	}
	return out, nil
}

func newReading(p air.Pollutant, loc Location, m Latest) air.Reading {
	name := loc.Name
	if name == "" {
		name = fmt.Sprintf("Location %d", loc.ID)
	}

	ts, err := time.Parse(time.RFC3339, m.Datetime.UTC)
	if err != nil || ts.IsZero() {
		ts = time.Now().UTC()
	}

	// Prefer sensor-level coordinates, fall back to the site's.
	coords := m.Coordinates
	if coords == nil {
		coords = loc.Coordinates
	}

	r := air.Reading{
		Pollutant:    p,
		Value:        m.Value,
		Unit:         p.Unit(),
		LocationID:   loc.ID,
		LocationName: name,
		Timestamp:    ts.UTC(),
	}
	if coords != nil {
		r.Coordinates = &air.Coordinates{Lat: coords.Latitude, Lon: coords.Longitude}
	}
	return r
}
