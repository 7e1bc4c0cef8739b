package relevance

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

// Tier is a coarse confidence band.
type Tier string

const (
	TierAlta  Tier = "alta"
	TierMedia Tier = "media"
	TierBassa Tier = "bassa"
)

// CategoryUnknown marks records whose site could not be analyzed.
const CategoryUnknown = "unknown"

// CategoryNotRelevant marks sites analyzed and found off-industry.
const CategoryNotRelevant = "non_pertinente"

// Result is the outcome of a relevance analysis. It is a pure function of
// the input text and the industry profile: no side effects, recomputed
// whenever needed, never cached across industries.
type Result struct {
	Relevant   bool
	Score      float64
	Confidence float64
	Tier       Tier
	Category   string
	Reason     string
}

// Analyzer scores text and websites against one industry profile.
type Analyzer struct {
	industry string
	positive []string
	negative []string
	minScore int

	// Tuned weights, configurable because their values are empirical.
	negativeWeight   float64
	websiteThreshold float64
	fetcher          fetch.Fetcher
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithFetcher sets the fetch collaborator used by AnalyzeWebsite.
func WithFetcher(f fetch.Fetcher) AnalyzerOption {
	return func(a *Analyzer) { a.fetcher = f }
}

// WithWeights overrides the negative-keyword weight and the website
// relevance threshold.
func WithWeights(negativeWeight, websiteThreshold float64) AnalyzerOption {
	return func(a *Analyzer) {
		a.negativeWeight = negativeWeight
		a.websiteThreshold = websiteThreshold
	}
}

// NewAnalyzer builds an Analyzer for the given industry. An unknown industry
// key is an operator error and fails construction.
func NewAnalyzer(industry string, profiles map[string]Profile, opts ...AnalyzerOption) (*Analyzer, error) {
	if profiles == nil {
		profiles = builtinProfiles
	}
	industry = strings.ToLower(strings.TrimSpace(industry))

	profile, ok := profiles[industry]
	if !ok {
		return nil, eris.Errorf("relevance: unknown industry %q (available: %s)",
			industry, strings.Join(Industries(profiles), ", "))
	}

	minScore := profile.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	a := &Analyzer{
		industry:         industry,
		positive:         normalizeKeywords(profile.Positive),
		negative:         normalizeKeywords(profile.Negative),
		minScore:         minScore,
		negativeWeight:   1.5,
		websiteThreshold: 3.0,
		fetcher:          fetch.NewHTTPFetcher(),
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Industry returns the analyzer's industry key.
func (a *Analyzer) Industry() string { return a.industry }

// AnalyzeText scores a standalone text blob (search snippet, title, about
// section). Presence-based: each keyword counts once no matter how often it
// appears.
func (a *Analyzer) AnalyzeText(text string) Result {
	t := urlutil.NormalizeText(text)
	posHits := countPresent(t, a.positive)
	negHits := countPresent(t, a.negative)

	raw := posHits*12 - negHits*18
	score := clamp(float64(50+raw), 0, 100)

	relevant := score >= float64(a.minScore) && posHits >= maxInt(1, negHits)

	return Result{
		Relevant:   relevant,
		Score:      score,
		Confidence: score / 100,
		Tier:       textTier(score, posHits, negHits),
		Category:   a.industry,
		Reason:     fmt.Sprintf("pos_hits=%d, neg_hits=%d, score=%.0f", posHits, negHits, score),
	}
}

var domainTokenRe = regexp.MustCompile(`[a-zA-Z]+`)

// AnalyzeWebsite fetches a site and scores its full content. Failures are
// soft: an unreachable site yields a not-relevant result with middling
// confidence rather than an error, so one dead site never aborts a batch.
func (a *Analyzer) AnalyzeWebsite(ctx context.Context, url string) Result {
	if url == "" {
		return Result{
			Relevant:   false,
			Confidence: 0,
			Tier:       TierBassa,
			Category:   CategoryUnknown,
			Reason:     "missing or invalid URL",
		}
	}

	// Domain shortcut: a diagnostic domain name (e.g. "rossifotovoltaico.it")
	// settles relevance without an HTTP fetch.
	domain := urlutil.ExtractDomain(url)
	domainText := strings.ToLower(strings.Join(domainTokenRe.FindAllString(domain, -1), " "))
	for _, kw := range a.positive {
		if strings.Contains(domainText, kw) {
			return Result{
				Relevant:   true,
				Confidence: 0.8,
				Tier:       TierAlta,
				Category:   a.industry,
				Reason:     fmt.Sprintf("industry keyword in domain: %s", domain),
			}
		}
	}

	resp, err := a.fetcher.Get(ctx, urlutil.Normalize(url))
	if err != nil || !resp.OK() {
		zap.L().Debug("relevance: site unreachable",
			zap.String("url", url),
			zap.Error(err),
		)
		return Result{
			Relevant:   false,
			Confidence: 0.5,
			Tier:       TierBassa,
			Category:   CategoryUnknown,
			Reason:     "site unreachable",
		}
	}

	doc := parseHTML(resp.Body)
	if doc == nil {
		return Result{
			Relevant:   false,
			Confidence: 0.5,
			Tier:       TierBassa,
			Category:   CategoryUnknown,
			Reason:     "unparseable HTML",
		}
	}

	metaText := extractMetaText(doc)
	fullText := extractVisibleText(doc)

	// Meta text is counted twice: titles and headings are denser signal.
	weighted := metaText + " " + metaText + " " + fullText

	posMatches := countOccurrences(weighted, a.positive)
	negMatches := countOccurrences(weighted, a.negative)

	// Normalize by length so verbose sites don't dominate.
	lengthFactor := minFloat(1.0, 2000/maxFloat(float64(len(weighted)), 500))
	posScore := float64(posMatches) * lengthFactor
	negScore := float64(negMatches) * lengthFactor

	// Negative signal weighted heavier: precision over recall.
	total := posScore - negScore*a.negativeWeight

	relevant := total >= a.websiteThreshold && posMatches >= maxInt(1, negMatches)
	confidence := clamp(0.5+total/20, 0.5, 1.0)

	category := a.industry
	if !relevant {
		category = CategoryNotRelevant
	}

	return Result{
		Relevant:   relevant,
		Score:      total,
		Confidence: confidence,
		Tier:       confidenceTier(confidence),
		Category:   category,
		Reason:     websiteReason(a.industry, relevant, posScore),
	}
}

func textTier(score float64, posHits, negHits int) Tier {
	if score >= 70 && posHits >= 3 && negHits == 0 {
		return TierAlta
	}
	if score >= 40 && posHits >= 2 {
		return TierMedia
	}
	return TierBassa
}

func confidenceTier(confidence float64) Tier {
	switch {
	case confidence >= 0.8:
		return TierAlta
	case confidence >= 0.65:
		return TierMedia
	default:
		return TierBassa
	}
}

func websiteReason(industry string, relevant bool, posScore float64) string {
	if !relevant {
		return fmt.Sprintf("insufficient content related to %s", industry)
	}
	if posScore > 8 {
		return fmt.Sprintf("content relevant to %s with many specific references", industry)
	}
	return fmt.Sprintf("content relevant to %s with sufficient references", industry)
}

// countPresent counts how many keywords appear at least once.
func countPresent(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// countOccurrences sums substring occurrence counts across keywords.
func countOccurrences(text string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		total += strings.Count(text, kw)
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
