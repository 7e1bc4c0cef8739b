package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/sink"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search Google Places and export raw candidates to CSV",
	Long: `Runs the Places search over the given municipalities without any
enrichment, writing raw candidates for later use with enrich --input.
Useful for separating the paid discovery step from the crawl-heavy
enrichment step.

Examples:
  discover --areas comuni.csv --industry fotovoltaico --output candidati.csv`,
	RunE: runDiscover,
}

func init() {
	f := discoverCmd.Flags()
	f.String("areas", "", "municipalities CSV file (required)")
	f.String("industry", "", "industry profile key (overrides config)")
	f.String("output", "candidati.csv", "destination CSV file")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	areasPath, _ := cmd.Flags().GetString("areas")
	if areasPath == "" {
		return eris.New("discover: --areas is required")
	}
	industry := cfg.Scoring.Industry
	if v, _ := cmd.Flags().GetString("industry"); v != "" {
		industry = v
	}
	outputPath, _ := cmd.Flags().GetString("output")

	source, cleanup, err := buildSource("", areasPath, industry)
	if err != nil {
		return err
	}
	defer cleanup()
	records, err := source.Discover(ctx)
	if err != nil {
		return err
	}

	out, err := sink.NewCSVSink(outputPath)
	if err != nil {
		return err
	}
	for i := range records {
		if err := out.Append(&records[i]); err != nil {
			return err
		}
	}

	zap.L().Info("discovery complete",
		zap.Int("candidates", len(records)),
		zap.String("output", outputPath),
	)
	return nil
}
