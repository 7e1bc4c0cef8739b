package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/contact"
	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

var emailsCmd = &cobra.Command{
	Use:   "emails <url>",
	Short: "Extract contact emails and LinkedIn pages from a website",
	Long: `Discovers contact pages via sitemaps and homepage links, then harvests
emails (footer first, then contact sections, mailto links, and page text)
and LinkedIn company pages.

Examples:
  emails https://www.example.it
  emails example.it --no-slug-fallback`,
	Args: cobra.ExactArgs(1),
	RunE: runEmails,
}

func init() {
	f := emailsCmd.Flags()
	f.Bool("no-slug-fallback", false, "skip probing common contact slugs when discovery finds nothing")

	rootCmd.AddCommand(emailsCmd)
}

func runEmails(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	noSlug, _ := cmd.Flags().GetBool("no-slug-fallback")
	site := urlutil.Clean(urlutil.Normalize(args[0]))

	fetcher := newFetcher()
	extractor := contact.NewExtractor(
		contact.WithExtractFetcher(fetcher),
		contact.WithDiscoverer(contact.NewDiscoverer(
			contact.WithDiscoverFetcher(fetcher),
			contact.WithBounds(cfg.Crawl.MaxSitemaps, cfg.Crawl.MaxSitemapURLs),
		)),
	)

	items := extractor.Extract(ctx, site, noSlug)

	var emails, linkedins []string
	for _, item := range items {
		if link, ok := strings.CutPrefix(item, contact.LinkedInPrefix); ok {
			linkedins = append(linkedins, link)
		} else {
			emails = append(emails, item)
		}
	}

	zap.L().Info("extraction complete",
		zap.String("site", site),
		zap.Int("emails", len(emails)),
		zap.Int("linkedin", len(linkedins)),
	)

	if len(emails) == 0 && len(linkedins) == 0 {
		fmt.Println("no contacts found")
		return nil
	}
	for _, e := range emails {
		fmt.Println(e)
	}
	for _, l := range linkedins {
		fmt.Println("linkedin:", l)
	}
	return nil
}
