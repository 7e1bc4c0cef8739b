package main

import (
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/admin"
	"github.com/outreach-labs/leadgen-cli/internal/contact"
	"github.com/outreach-labs/leadgen-cli/internal/discovery"
	"github.com/outreach-labs/leadgen-cli/internal/enrich"
	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/ledger"
	"github.com/outreach-labs/leadgen-cli/internal/relevance"
	"github.com/outreach-labs/leadgen-cli/internal/sink"
	"github.com/outreach-labs/leadgen-cli/pkg/places"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Discover and enrich companies for an industry",
	Long: `Runs the full pipeline: load candidates (from a CSV export or a live
Google Places search over municipalities), filter out big companies and
already-processed rows, score each website against the industry profile,
extract emails and LinkedIn pages from relevant sites, and append every
finished record to the output CSV.

The output file doubles as the resume ledger: rerunning with the same
output picks up where the last run stopped.

Examples:
  # Enrich candidates exported to CSV
  enrich --input candidati.csv --industry fotovoltaico

  # Live discovery over municipalities (requires LEADGEN_PLACES_KEY)
  enrich --areas comuni.csv --industry ristorazione --workers 5

  # Include administrator lookup (requires LEADGEN_ANTHROPIC_KEY)
  enrich --input candidati.csv --admin`,
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.String("input", "", "candidates CSV file (mutually exclusive with --areas)")
	f.String("areas", "", "municipalities CSV file for live Places discovery")
	f.String("industry", "", "industry profile key (overrides config)")
	f.String("output", "", "output CSV file (overrides config)")
	f.Int("workers", 0, "concurrent enrichment workers (overrides config)")
	f.Bool("admin", false, "look up administrator names via the Anthropic API")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputPath, _ := cmd.Flags().GetString("input")
	areasPath, _ := cmd.Flags().GetString("areas")
	if (inputPath == "") == (areasPath == "") {
		return eris.New("enrich: exactly one of --input or --areas is required")
	}

	industry := cfg.Scoring.Industry
	if v, _ := cmd.Flags().GetString("industry"); v != "" {
		industry = v
	}
	outputPath := cfg.Output.File
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		outputPath = v
	}
	workers := cfg.Batch.MaxWorkers
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		workers = v
	}
	adminLookup, _ := cmd.Flags().GetBool("admin")

	log := zap.L().With(zap.String("command", "enrich"))

	profiles, err := loadProfiles()
	if err != nil {
		return err
	}

	fetcher := newFetcher()
	analyzer, err := relevance.NewAnalyzer(industry, profiles, relevance.WithFetcher(fetcher))
	if err != nil {
		return err
	}

	discoverer := contact.NewDiscoverer(
		contact.WithDiscoverFetcher(fetcher),
		contact.WithBounds(cfg.Crawl.MaxSitemaps, cfg.Crawl.MaxSitemapURLs),
	)
	extractor := contact.NewExtractor(
		contact.WithExtractFetcher(fetcher),
		contact.WithDiscoverer(discoverer),
	)

	opts := []enrich.Option{
		enrich.WithExtractor(extractor),
		enrich.WithFetcher(fetcher),
	}
	if adminLookup || cfg.Anthropic.EnableAdmin {
		if cfg.Anthropic.Key == "" {
			return eris.New("enrich: administrator lookup requires anthropic.key")
		}
		opts = append(opts, enrich.WithOracle(
			admin.NewClaudeOracle(cfg.Anthropic.Key, admin.WithModel(cfg.Anthropic.Model)),
		))
	}
	enricher := enrich.New(analyzer, opts...)

	source, cleanup, err := buildSource(inputPath, areasPath, industry)
	if err != nil {
		return err
	}
	defer cleanup()
	records, err := source.Discover(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		log.Warn("no candidates found")
		return nil
	}

	out, err := sink.NewCSVSink(outputPath)
	if err != nil {
		return err
	}
	seen := ledger.Load(outputPath)
	checkpoint := ledger.NewCheckpoint(cfg.Output.CheckpointFile, cfg.Output.CheckpointEvery)

	runner := enrich.NewRunner(enricher, out, seen,
		enrich.WithWorkers(workers),
		enrich.WithCheckpoint(checkpoint),
	)

	stats, err := runner.Run(ctx, records)
	log.Info("enrichment finished",
		zap.Int("received", stats.Received),
		zap.Int("persisted", stats.Persisted),
		zap.Int("big_company", stats.BigCompany),
		zap.Int("duplicates", stats.Duplicates),
		zap.String("output", outputPath),
	)
	return err
}

func loadProfiles() (map[string]relevance.Profile, error) {
	if cfg.Scoring.ProfilesFile == "" {
		return relevance.BuiltinProfiles(), nil
	}
	return relevance.LoadProfiles(cfg.Scoring.ProfilesFile)
}

// newFetcher builds the shared fetch chain. Plain HTTP is the only link
// today; a browser-automation fetcher slots in behind it for sites that block
// plain clients.
func newFetcher() fetch.Fetcher {
	return fetch.NewChain(fetch.NewHTTPFetcher(
		fetch.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Crawl.TimeoutSecs) * time.Second,
		}),
		fetch.WithLimiter(fetch.NewLimiter(cfg.Crawl.MaxRequestsPerSec)),
	))
}

// buildSource returns the candidate source plus a cleanup to run once
// discovery is done; it closes the details cache when one was opened.
func buildSource(inputPath, areasPath, industry string) (discovery.Source, func(), error) {
	cleanup := func() {}
	if inputPath != "" {
		return discovery.NewCSVSource(inputPath), cleanup, nil
	}

	if cfg.Places.Key == "" {
		return nil, nil, eris.New("enrich: live discovery requires places.key")
	}
	areas, err := discovery.LoadAreas(areasPath)
	if err != nil {
		return nil, nil, err
	}

	keywords := industryKeywords(industry)
	client := places.NewClient(cfg.Places.Key)

	opts := []discovery.PlacesOption{
		discovery.WithPerQueryLimit(cfg.Places.PerQueryLimit),
	}
	if !cfg.Places.FetchDetails {
		opts = append(opts, discovery.WithoutDetails())
	} else if cfg.Places.CacheFile != "" {
		cache, err := places.NewDetailsCache(cfg.Places.CacheFile)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if cerr := cache.Close(); cerr != nil {
				zap.L().Warn("places: close details cache", zap.Error(cerr))
			}
		}
		opts = append(opts, discovery.WithCache(cache))
	}

	return discovery.NewPlacesSource(client, areas, keywords, opts...), cleanup, nil
}

// industryKeywords derives Places search keywords from the industry profile's
// positive keywords, using the first few terms.
func industryKeywords(industry string) []string {
	profiles := relevance.BuiltinProfiles()
	profile, ok := profiles[strings.ToLower(industry)]
	if !ok || len(profile.Positive) == 0 {
		return []string{industry}
	}
	kws := profile.Positive
	if len(kws) > 4 {
		kws = kws[:4]
	}
	return kws
}
