package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shreyainlabcoat/Gotham/internal/air"
	"github.com/shreyainlabcoat/Gotham/internal/config"
	"github.com/shreyainlabcoat/Gotham/internal/insights"
	"github.com/shreyainlabcoat/Gotham/internal/logging"
	"github.com/shreyainlabcoat/Gotham/internal/report"
)

var (
	reportArea    areaFlags
	reportFormats []string
	reportOut     string
	reportNoAI    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a shareable air quality report",
	Long: `Fetches current readings for the area, runs the configured AI engine
when one is enabled and writes the report to disk. A rendered preview
is printed to the terminal.

Example:
  gotham report --lat 40.7128 --lon -74.0060 --format md --format html`,
	RunE: runReport,
}

func init() {
	reportArea.register(reportCmd)
	reportCmd.Flags().StringArrayVar(&reportFormats, "format", []string{report.FormatMarkdown}, "Output format: md, txt or html (repeatable)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Output directory (default REPORT_DIR or ./reports)")
	reportCmd.Flags().BoolVar(&reportNoAI, "no-ai", false, "Skip the AI health analysis")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	area, err := reportArea.area()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	snapshot, err := newLiveService(cfg).FetchArea(ctx, area)
	if err != nil {
		return err
	}

	var insight *insights.Insight
	if !reportNoAI {
		insight, err = analyzeSnapshot(ctx, cfg, snapshot)
		if err != nil {
			return err
		}
	}

	rep := report.Build(snapshot, insight)

	dir := reportOut
	if dir == "" {
		dir = cfg.ReportDir
	}
	paths, err := report.NewWriter(dir).Write(rep, reportFormats...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Preview(rep))
	for _, path := range paths {
		fmt.Fprintln(out, mutedStyle.Render("wrote "+path))
	}
	return nil
}

// analyzeSnapshot runs the configured engine against the snapshot. No engine
// and no data are both fine; the report just goes out without an AI section.
func analyzeSnapshot(ctx context.Context, cfg *config.AppConfig, snapshot air.AreaSnapshot) (*insights.Insight, error) {
	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}
	if generator == nil {
		return nil, nil
	}

	svc := insights.NewService(generator, logging.New(cfg, "gotham"))
	result, err := svc.Analyze(ctx, snapshot)
	if errors.Is(err, insights.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ai analysis: %w", err)
	}
	return &result, nil
}
