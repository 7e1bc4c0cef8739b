package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/outreach-labs/leadgen-cli/internal/relevance"
)

var scoreCmd = &cobra.Command{
	Use:   "score [url]",
	Short: "Score a website or text against an industry profile",
	Long: `Scores a single website (or raw text piped via --text) against the
positive and negative keywords of an industry profile, printing the
relevance verdict, score, and confidence tier.

Examples:
  # Score a website
  score https://www.example.it --industry fotovoltaico

  # Score raw text
  score --text "installazione impianti fotovoltaici e pannelli solari"

  # List available industries
  score --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelevanceScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("industry", "", "industry profile key (overrides config)")
	f.String("text", "", "score raw text instead of fetching a URL")
	f.Bool("list", false, "list available industry profiles")

	rootCmd.AddCommand(scoreCmd)
}

func runRelevanceScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profiles, err := loadProfiles()
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		fmt.Println(strings.Join(relevance.Industries(profiles), "\n"))
		return nil
	}

	industry := cfg.Scoring.Industry
	if v, _ := cmd.Flags().GetString("industry"); v != "" {
		industry = v
	}

	analyzer, err := relevance.NewAnalyzer(industry, profiles, relevance.WithFetcher(newFetcher()))
	if err != nil {
		return err
	}

	text, _ := cmd.Flags().GetString("text")
	var result relevance.Result
	switch {
	case text != "":
		result = analyzer.AnalyzeText(text)
	case len(args) == 1:
		result = analyzer.AnalyzeWebsite(ctx, args[0])
	default:
		return eris.New("score: a url argument or --text is required")
	}

	w := os.Stdout
	fmt.Fprintf(w, "industry:   %s\n", industry)
	fmt.Fprintf(w, "relevant:   %t\n", result.Relevant)
	fmt.Fprintf(w, "score:      %.1f\n", result.Score)
	fmt.Fprintf(w, "confidence: %.2f (%s)\n", result.Confidence, result.Tier)
	fmt.Fprintf(w, "category:   %s\n", result.Category)
	if result.Reason != "" {
		fmt.Fprintf(w, "reason:     %s\n", result.Reason)
	}
	return nil
}
