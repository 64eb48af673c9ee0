package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/air/openaq"
	"github.com/shreyainlabcoat/Gotham/internal/config"
	"github.com/shreyainlabcoat/Gotham/internal/logging"
	"github.com/shreyainlabcoat/Gotham/internal/store"
)

// areaFlags is the flag set shared by the one-shot commands.
type areaFlags struct {
	lat       float64
	lon       float64
	radius    int
	pollutant string
}

func (f *areaFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 40.7128, "Area center latitude")
	cmd.Flags().Float64Var(&f.lon, "lon", -74.0060, "Area center longitude")
	cmd.Flags().IntVar(&f.radius, "radius", 10, "Search radius in km (1-25)")
	cmd.Flags().StringVar(&f.pollutant, "pollutant", "pm25", "Pollutant layer: pm25 or o3")
}

func (f *areaFlags) area() (air.AreaQuery, error) {
	p, err := air.ParsePollutant(f.pollutant)
	if err != nil {
		return air.AreaQuery{}, err
	}
	if f.radius < 1 || f.radius > config.MaxWatchRadiusKM {
		return air.AreaQuery{}, fmt.Errorf("radius %d out of range: must be between 1 and %d", f.radius, config.MaxWatchRadiusKM)
	}
	if f.lat < -90 || f.lat > 90 || f.lon < -180 || f.lon > 180 {
		return air.AreaQuery{}, fmt.Errorf("coordinates %.4f, %.4f out of range", f.lat, f.lon)
	}
	return air.AreaQuery{Lat: f.lat, Lon: f.lon, RadiusKM: f.radius, Pollutant: p}, nil
}

// newLiveService builds the service stack the one-shot commands use: a live
// OpenAQ fetch with a throwaway store.
func newLiveService(cfg *config.AppConfig) *air.Service {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	source := openaq.NewClient(httpClient, cfg.OpenAQAPIKey, cfg.OpenAQBaseURL)
	return air.NewService(store.NewMemoryStore(1, 0), source, logging.New(cfg, "gotham"))
}

var (
	queryArea  areaFlags
	queryJSON  bool
	queryLimit int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Fetch and classify current readings for an area",
	Long: `Performs a one-shot fetch against the OpenAQ network, classifies every
station in the area into a risk band and prints the result.

With --limit the area is ignored and the newest N measurements for the
pollutant across the whole network are listed instead, which is the
quickest way to confirm the feed is alive.

Example:
  gotham query --lat 40.7128 --lon -74.0060 --radius 10 --pollutant pm25`,
	RunE: runQuery,
}

func init() {
	queryArea.register(queryCmd)
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the raw result as JSON")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "List the newest N measurements network-wide instead of querying an area")
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	if queryLimit != 0 {
		return runLatestListing(ctx, cmd, cfg)
	}

	area, err := queryArea.area()
	if err != nil {
		return err
	}

	snapshot, err := newLiveService(cfg).FetchArea(ctx, area)
	if err != nil {
		return err
	}

	if queryJSON {
		return printJSON(cmd.OutOrStdout(), snapshot)
	}
	printSnapshot(cmd.OutOrStdout(), snapshot)
	return nil
}

func runLatestListing(ctx context.Context, cmd *cobra.Command, cfg *config.AppConfig) error {
	p, err := air.ParsePollutant(queryArea.pollutant)
	if err != nil {
		return err
	}
	if queryLimit < 1 || queryLimit > 1000 {
		return fmt.Errorf("limit %d out of range: must be between 1 and 1000", queryLimit)
	}
	pid, err := openaq.ParameterID(p)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	client := openaq.NewClient(httpClient, cfg.OpenAQAPIKey, cfg.OpenAQBaseURL)
	rows, err := client.ParameterLatest(ctx, pid, queryLimit)
	if err != nil {
		return err
	}

	if queryJSON {
		return printJSON(cmd.OutOrStdout(), rows)
	}
	printLatest(cmd.OutOrStdout(), p, rows)
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func printSnapshot(w io.Writer, snapshot air.AreaSnapshot) {
	area := snapshot.Area
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s within %d km of %.4f, %.4f",
		area.Pollutant.Label(), area.RadiusKM, area.Lat, area.Lon)))

	summary := snapshot.Summary
	if summary.Count == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No sensors found in this area. Try increasing the search radius."))
		return
	}

	unit := area.Pollutant.Unit()
	stats := summary.Stats
	fmt.Fprintf(w, "%d stations reporting. Avg %.1f %s, peak %.1f, cleanest %.1f.\n\n",
		summary.Count, stats.Average, unit, stats.Peak, stats.Minimum)

	fmt.Fprintf(w, "%-34s %14s  %-8s %s\n", "LOCATION", "VALUE", "BAND", "LAST UPDATED (UTC)")
	for _, r := range snapshot.Readings {
		band := bandStyles[r.Band].Render(fmt.Sprintf("%-8s", r.Band))
		fmt.Fprintf(w, "%-34.34s %14s  %s %s\n",
			r.LocationName,
			fmt.Sprintf("%.1f %s", r.Value, unit),
			band,
			r.Timestamp.Format("2006-01-02 15:04"))
	}

	// Area-level traffic light computed from the average, same as the
	// dashboard's advice box.
	if band, err := air.Classify(area.Pollutant, stats.Average); err == nil {
		advice, _ := air.Advisory(area.Pollutant, band)
		fmt.Fprintln(w)
		fmt.Fprintln(w, bandStyles[band].Render(strings.ToUpper(band.String()))+" "+advice)
	}
}

func printLatest(w io.Writer, p air.Pollutant, rows []openaq.Latest) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Newest %s measurements across the network", p.Label())))
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No measurements returned."))
		return
	}

	unit := p.Unit()
	fmt.Fprintf(w, "%-12s %16s  %s\n", "LOCATION ID", "VALUE", "LAST UPDATED (UTC)")
	for _, m := range rows {
		// Pad before styling so the ANSI codes do not break the column.
		value := fmt.Sprintf("%16s", fmt.Sprintf("%.1f %s", m.Value, unit))
		if band, err := air.Classify(p, m.Value); err == nil {
			value = bandStyles[band].Render(value)
		}
		fmt.Fprintf(w, "%-12d %s  %s\n", m.LocationsID, value, m.Datetime.UTC)
	}
}
