package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/shreyainlabcoat/Gotham/internal/air"
)

// Shared terminal styles. The band colors match the dashboard's traffic
// light palette.
var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cc66"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff3333"))

	bandStyles = map[air.RiskBand]lipgloss.Style{
		air.BandGreen:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cc66")),
		air.BandYellow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffcc00")),
		air.BandRed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff3333")),
	}
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "gotham",
	Short: "Gotham: NYC Air-Pulse",
	Long: `Gotham is an environmental health dashboard that helps NYC commuters
minimize exposure to urban pollutants.

It pulls live sensor data from the OpenAQ network, classifies PM2.5 and
ozone levels into green/yellow/red risk bands and serves a dark-mode
dashboard with commuter guidance. An optional AI engine (Ollama or
OpenAI) turns the numbers into a structured health analysis.

Run without arguments to start the dashboard and API server.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
