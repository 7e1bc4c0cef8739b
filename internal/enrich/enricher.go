// Package enrich implements the per-record enrichment loop: filter, clean,
// score, extract, persist.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/admin"
	"github.com/outreach-labs/leadgen-cli/internal/contact"
	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/model"
	"github.com/outreach-labs/leadgen-cli/internal/relevance"
	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

// SkipReason explains why a record was not persisted.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipBigCompany SkipReason = "grande_azienda"
	SkipDuplicate  SkipReason = "duplicato"
)

// Enricher runs the enrichment steps for a single company record. It never
// returns an error for network trouble: unreachable sites simply leave the
// enrichment fields at their zero values, matching the soft-fail contract of
// the analyzer and extractor.
type Enricher struct {
	analyzer  *relevance.Analyzer
	extractor *contact.Extractor
	fetcher   fetch.Fetcher
	oracle    admin.Oracle
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithExtractor overrides the email extractor.
func WithExtractor(x *contact.Extractor) Option {
	return func(e *Enricher) { e.extractor = x }
}

// WithFetcher overrides the fetcher used for the reachability pre-check.
func WithFetcher(f fetch.Fetcher) Option {
	return func(e *Enricher) { e.fetcher = f }
}

// WithOracle enables administrator-name lookup. Off by default.
func WithOracle(o admin.Oracle) Option {
	return func(e *Enricher) { e.oracle = o }
}

// New returns an Enricher scoring against the given analyzer.
func New(analyzer *relevance.Analyzer, opts ...Option) *Enricher {
	e := &Enricher{
		analyzer:  analyzer,
		extractor: contact.NewExtractor(),
		fetcher:   fetch.NewHTTPFetcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SeenSet reports whether a dedup key was already persisted. Satisfied by
// ledger.Ledger.
type SeenSet interface {
	Contains(model.DedupKey) bool
}

// Filter applies the pre-enrichment gates: big-company names are dropped, the
// site URL is cleaned in place, and residual Google Maps links are blanked.
// It returns the reason the record should be skipped, or SkipNone.
func (e *Enricher) Filter(rec *model.CompanyRecord, seen SeenSet) SkipReason {
	rec.Nome = strings.TrimSpace(rec.Nome)

	if IsBigCompany(rec.Nome) {
		zap.L().Debug("enrich: skipping big company", zap.String("nome", rec.Nome))
		return SkipBigCompany
	}

	sito := ""
	if strings.TrimSpace(rec.SitoWeb) != "" {
		sito = urlutil.Clean(rec.SitoWeb)
	}
	lower := strings.ToLower(sito)
	if strings.Contains(lower, "google.com") || strings.Contains(lower, "google.it") {
		zap.L().Debug("enrich: dropping google redirect site",
			zap.String("nome", rec.Nome), zap.String("sito", sito))
		sito = ""
	}
	rec.SitoWeb = sito

	if seen != nil && seen.Contains(rec.Key()) {
		zap.L().Debug("enrich: skipping duplicate",
			zap.String("nome", rec.Nome), zap.String("comune", rec.Comune))
		return SkipDuplicate
	}
	return SkipNone
}

// Enrich fills the relevance and contact fields of an already filtered
// record. The record always comes back persistable.
func (e *Enricher) Enrich(ctx context.Context, rec *model.CompanyRecord) {
	log := zap.L().With(zap.String("nome", rec.Nome), zap.String("comune", rec.Comune))

	rec.Pertinenza = false
	rec.Categoria = relevance.CategoryUnknown
	rec.Confidenza = 0

	if e.oracle != nil {
		name, err := e.oracle.AdminName(ctx, rec.Nome, rec.Comune)
		if err != nil {
			if err != admin.ErrNoAdminFound {
				log.Warn("enrich: admin lookup failed", zap.Error(err))
			}
		} else {
			rec.Contatto = name
		}
	}

	if len(rec.SitoWeb) > 5 {
		res := e.analyzer.AnalyzeWebsite(ctx, rec.SitoWeb)
		rec.Pertinenza = res.Relevant
		rec.Categoria = res.Category
		rec.Confidenza = res.Confidence
		log.Info("enrich: site scored",
			zap.Bool("pertinenza", res.Relevant),
			zap.String("categoria", res.Category),
			zap.Float64("confidenza", res.Confidence),
		)
	}

	if rec.SitoWeb != "" && rec.Pertinenza {
		if e.reachable(ctx, rec.SitoWeb) {
			e.applyContacts(ctx, rec)
		} else {
			log.Warn("enrich: site unreachable, skipping email extraction",
				zap.String("sito", rec.SitoWeb))
		}
	}

	rec.Indirizzo = urlutil.CleanExtractedText(rec.Indirizzo)
	rec.Telefono = urlutil.CleanExtractedText(rec.Telefono)
}

// reachable performs a HEAD pre-check so the extractor does not waste its
// crawl budget on dead hosts. Any status below 500 counts as reachable.
func (e *Enricher) reachable(ctx context.Context, url string) bool {
	status, err := e.fetcher.Head(ctx, url)
	if err != nil {
		return false
	}
	return status < 500
}

func (e *Enricher) applyContacts(ctx context.Context, rec *model.CompanyRecord) {
	items := e.extractor.Extract(ctx, rec.SitoWeb, false)

	var emails, linkedins []string
	seenEmail := make(map[string]bool)
	for _, item := range items {
		if link, ok := strings.CutPrefix(item, contact.LinkedInPrefix); ok {
			linkedins = append(linkedins, link)
			continue
		}
		email := strings.ToLower(strings.TrimSpace(item))
		if email != "" && !seenEmail[email] {
			seenEmail[email] = true
			emails = append(emails, email)
		}
	}

	rec.Email = strings.Join(emails, ", ")
	rec.LinkedIn = strings.Join(linkedins, ", ")
}
