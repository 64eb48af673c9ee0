package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/gofiber/fiber/v2"

	"github.com/shreyainlabcoat/Gotham/internal/air"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// PollutantOption is the view model for an entry in the pollutant selector.
type PollutantOption struct {
	Value    string
	Label    string
	Selected bool
}

// DashboardRow is one sensor reading in the dashboard table.
type DashboardRow struct {
	Location string
	Value    string
	Band     string
	Time     string
}

// DashboardData is the view model for the dashboard page.
type DashboardData struct {
	Area        air.AreaQuery
	Label       string
	Unit        string
	Pollutants  []PollutantOption
	FetchError  bool
	HasData     bool
	Average     string
	Peak        string
	Minimum     string
	Stations    int
	Advice      string
	AdviceClass string
	Rows        []DashboardRow
	MarkersJSON template.JS
	MapsAPIKey  string
	Clinical    air.ClinicalNote
	FetchedAt   string
}

// mapMarker is the JSON shape consumed by the Google Maps script in the
// template.
type mapMarker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Title string  `json:"title"`
	Val   string  `json:"val"`
	Color string  `json:"color"`
}

var adviceClasses = map[air.RiskBand]string{
	air.BandGreen:  "advice-green",
	air.BandYellow: "advice-yellow",
	air.BandRed:    "advice-red",
}

var markerColors = map[air.RiskBand]string{
	air.BandGreen:  "#00cc66",
	air.BandYellow: "#ffcc00",
	air.BandRed:    "#ff3333",
}

// RenderDashboard executes the dashboard template into w.
func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call httpapi.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RegisterDashboard wires the HTML dashboard onto the app root. The page is
// rendered from a live fetch so the map always shows current sensor values.
func RegisterDashboard(app *fiber.App, service *air.Service, mapsAPIKey string) {
	app.Get("/", func(c *fiber.Ctx) error {
		q, err := parseAreaQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		data := newDashboardData(q.toArea(), mapsAPIKey)
		snapshot, err := service.FetchArea(c.UserContext(), q.toArea())
		if err != nil {
			data.FetchError = true
		} else {
			fillDashboardData(data, snapshot)
		}

		var buf bytes.Buffer
		if err := RenderDashboard(&buf, data); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	})
}

func newDashboardData(area air.AreaQuery, mapsAPIKey string) *DashboardData {
	options := make([]PollutantOption, 0, len(air.Pollutants()))
	for _, p := range air.Pollutants() {
		options = append(options, PollutantOption{
			Value:    string(p),
			Label:    p.Label(),
			Selected: p == area.Pollutant,
		})
	}

	clinical, _ := air.Clinical(area.Pollutant)
	return &DashboardData{
		Area:       area,
		Label:      area.Pollutant.Label(),
		Unit:       area.Pollutant.Unit(),
		Pollutants: options,
		MapsAPIKey: mapsAPIKey,
		Clinical:   clinical,
	}
}

func fillDashboardData(data *DashboardData, snapshot air.AreaSnapshot) {
	data.FetchedAt = snapshot.FetchedAt.Format("2006-01-02 15:04 UTC")
	if snapshot.Summary.Count == 0 {
		return
	}

	unit := snapshot.Area.Pollutant.Unit()
	stats := snapshot.Summary.Stats
	data.HasData = true
	data.Stations = snapshot.Summary.Count
	data.Average = fmt.Sprintf("%.1f %s", stats.Average, unit)
	data.Peak = fmt.Sprintf("%.1f %s", stats.Peak, unit)
	data.Minimum = fmt.Sprintf("%.1f %s", stats.Minimum, unit)

	// The traffic light reflects the area average, same as the commuter guide
	// in written reports.
	if band, err := air.Classify(snapshot.Area.Pollutant, stats.Average); err == nil {
		data.AdviceClass = adviceClasses[band]
		data.Advice, _ = air.Advisory(snapshot.Area.Pollutant, band)
	}

	markers := make([]mapMarker, 0, len(snapshot.Readings))
	for _, r := range snapshot.Readings {
		display := fmt.Sprintf("%.1f %s", r.Value, unit)
		data.Rows = append(data.Rows, DashboardRow{
			Location: r.LocationName,
			Value:    display,
			Band:     r.Band.String(),
			Time:     r.Timestamp.Format("2006-01-02 15:04"),
		})

		// Readings without coordinates stay in the table but cannot be
		// placed on the map.
		if r.Coordinates == nil {
			continue
		}
		markers = append(markers, mapMarker{
			Lat:   r.Coordinates.Lat,
			Lng:   r.Coordinates.Lon,
			Title: r.LocationName,
			Val:   display,
			Color: markerColors[r.Band],
		})
	}

	if len(markers) > 0 {
		if encoded, err := json.Marshal(markers); err == nil {
			data.MarkersJSON = template.JS(encoded)
		}
	}
}
