package contact

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

// Discoverer finds candidate contact/about pages for a site, ordered by how
// likely they are to hold contact information.
type Discoverer struct {
	fetcher fetch.Fetcher

	// Traversal bounds. Without them a large WooCommerce site with tens of
	// product sitemaps would eat the whole politeness budget.
	maxSitemapFetches    int
	maxURLsScanned       int
	sitemapCandidateStop int
	strongCandidateStop  int
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithDiscoverFetcher sets the fetch collaborator.
func WithDiscoverFetcher(f fetch.Fetcher) DiscovererOption {
	return func(d *Discoverer) { d.fetcher = f }
}

// WithBounds overrides the sitemap traversal bounds.
func WithBounds(maxSitemaps, maxURLs int) DiscovererOption {
	return func(d *Discoverer) {
		d.maxSitemapFetches = maxSitemaps
		d.maxURLsScanned = maxURLs
	}
}

// NewDiscoverer creates a Discoverer with the default bounds.
func NewDiscoverer(opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		fetcher:              fetch.NewHTTPFetcher(),
		maxSitemapFetches:    30,
		maxURLsScanned:       20000,
		sitemapCandidateStop: 20,
		strongCandidateStop:  8,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

type scoredURL struct {
	score int
	url   string
}

// Discover returns candidate contact-page URLs, highest priority first,
// deduplicated by canonical form. Every network failure is skip-and-continue:
// no single unreachable robots.txt or sitemap aborts discovery.
func (d *Discoverer) Discover(ctx context.Context, baseURL string) []string {
	if baseURL == "" {
		return nil
	}

	base := urlutil.BaseRoot(urlutil.Clean(baseURL))
	log := zap.L().With(zap.String("site", base))

	var candidates []scoredURL

	// robots.txt → sitemap seeds. A redirect here (http→https, apex→www)
	// re-anchors all subsequent resolution.
	seeds, base := d.sitemapSeeds(ctx, base, log)

	// Sitemap BFS, strongest signal (score 4).
	for _, loc := range d.crawlSitemaps(ctx, base, seeds, log) {
		candidates = append(candidates, scoredURL{score: 4, url: loc})
	}

	// Homepage anchor scoring.
	homepageCandidates, base := d.scoreHomepageLinks(ctx, base, log)
	candidates = append(candidates, homepageCandidates...)

	// Slug fallback only when the strong candidates are thin.
	strong := 0
	for _, c := range candidates {
		if c.score >= 3 {
			strong++
		}
	}
	if strong < d.strongCandidateStop {
		for _, slug := range commonSlugs {
			candidates = append(candidates, scoredURL{score: 1, url: resolveAgainst(base, slug)})
		}
	}

	return dedupAndOrder(candidates)
}

// sitemapSeeds fetches robots.txt and returns sitemap URLs plus the possibly
// re-anchored base.
func (d *Discoverer) sitemapSeeds(ctx context.Context, base string, log *zap.Logger) ([]string, string) {
	resp, err := d.fetcher.Get(ctx, base+"robots.txt")
	if err != nil {
		log.Debug("contact: robots.txt unreachable", zap.Error(err))
	} else if resp.FinalURL != "" {
		base = urlutil.BaseRoot(resp.FinalURL)
	}

	var seeds []string
	if resp.OK() {
		seeds = sitemapsFromRobots(resp.Body)
		log.Debug("contact: sitemap directives in robots.txt", zap.Int("count", len(seeds)))
	}

	if len(seeds) == 0 {
		for _, p := range defaultSitemapPaths {
			seeds = append(seeds, resolveAgainst(base, p))
		}
	}
	return seeds, base
}

// crawlSitemaps breadth-first traverses sitemap documents, collecting
// same-domain page URLs that contain a contact keyword.
func (d *Discoverer) crawlSitemaps(ctx context.Context, base string, seeds []string, log *zap.Logger) []string {
	queue := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			queue = append(queue, s)
		}
	}

	fetched := make(map[string]bool)
	seen := make(map[string]bool)
	var found []string
	scanned := 0

	for len(queue) > 0 && len(fetched) < d.maxSitemapFetches && scanned < d.maxURLsScanned {
		smURL := queue[0]
		queue = queue[1:]
		if fetched[smURL] {
			continue
		}
		fetched[smURL] = true

		resp, err := d.fetcher.Get(ctx, smURL)
		if err != nil || !resp.OK() {
			continue
		}

		children, leaves := parseSitemap(resp.Body)

		if len(children) > 0 {
			sort.SliceStable(children, func(i, j int) bool {
				return sitemapPriority(children[i]) < sitemapPriority(children[j])
			})
			for _, child := range children {
				if !fetched[child] && strings.HasPrefix(child, "http") {
					queue = append(queue, child)
				}
			}
			continue
		}

		for _, loc := range leaves {
			scanned++
			if scanned >= d.maxURLsScanned {
				break
			}
			if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
				continue
			}
			if !urlutil.SameDomain(base, loc) || !urlutil.IsProbablyPage(loc) {
				continue
			}
			lower := strings.ToLower(loc)
			for _, key := range contactKeys {
				if strings.Contains(lower, key) {
					if !seen[loc] {
						seen[loc] = true
						found = append(found, loc)
					}
					break
				}
			}
		}

		// Enough strong sitemap candidates: stop burning fetches.
		if len(found) >= d.sitemapCandidateStop {
			break
		}
	}

	log.Debug("contact: sitemap crawl done",
		zap.Int("sitemaps_fetched", len(fetched)),
		zap.Int("urls_scanned", scanned),
		zap.Int("candidates", len(found)),
	)
	return found
}

// hrefContactKeys and textContactKeys drive the homepage anchor scoring.
var (
	hrefContactKeys = []string{"contatto", "contatti", "contattaci", "contact", "contact-us", "contacts", "contactus"}
	textContactKeys = []string{"contatti", "contatto", "contattaci", "contact"}
	hrefAboutKeys   = []string{"chi-siamo", "chisiamo", "about", "azienda", "company"}
)

// scoreHomepageLinks parses the homepage and scores same-domain anchors:
// +3 contact keyword in href, +2 in anchor text, +1 about/company in href.
func (d *Discoverer) scoreHomepageLinks(ctx context.Context, base string, log *zap.Logger) ([]scoredURL, string) {
	resp, err := d.fetcher.Get(ctx, base)
	if err != nil {
		log.Debug("contact: homepage unreachable", zap.Error(err))
		return nil, base
	}
	if resp.FinalURL != "" {
		base = urlutil.BaseRoot(resp.FinalURL)
	}
	if !resp.OK() {
		log.Debug("contact: homepage not usable", zap.Int("status", resp.StatusCode))
		return nil, base
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, base
	}

	var out []scoredURL
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		text := strings.ToLower(strings.TrimSpace(a.Text()))

		var absolute string
		switch {
		case strings.HasPrefix(href, "/"):
			absolute = resolveAgainst(base, href)
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			absolute = href
		default:
			return
		}

		if !urlutil.SameDomain(base, absolute) || !urlutil.IsProbablyPage(absolute) {
			return
		}

		lower := strings.ToLower(absolute)
		score := 0
		if containsAny(lower, hrefContactKeys) {
			score += 3
		}
		if containsAny(text, textContactKeys) {
			score += 2
		}
		if containsAny(lower, hrefAboutKeys) {
			score++
		}
		if score > 0 {
			out = append(out, scoredURL{score: score, url: absolute})
		}
	})
	return out, base
}

// dedupAndOrder deduplicates by canonical URL, keeping the highest score a
// URL earned from any source, and sorts by descending score, then ascending
// URL length: shorter URLs are usually shallower and more canonical.
func dedupAndOrder(candidates []scoredURL) []string {
	index := make(map[string]int)
	var kept []scoredURL
	for _, c := range candidates {
		if c.url == "" {
			continue
		}
		canon := urlutil.Canonicalize(c.url)
		if !urlutil.IsProbablyPage(canon) {
			continue
		}
		if i, ok := index[canon]; ok {
			if c.score > kept[i].score {
				kept[i].score = c.score
			}
			continue
		}
		index[canon] = len(kept)
		kept = append(kept, scoredURL{score: c.score, url: canon})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return len(kept[i].url) < len(kept[j].url)
	})

	out := make([]string, len(kept))
	for i, c := range kept {
		out[i] = c.url
	}
	return out
}

func resolveAgainst(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
	}
	r, err := url.Parse(ref)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
	}
	return b.ResolveReference(r).String()
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
