package contact

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

// Extractor harvests email addresses and LinkedIn links from a site's
// contact-relevant pages.
type Extractor struct {
	fetcher    fetch.Fetcher
	discoverer *Discoverer
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractFetcher sets the fetch collaborator.
func WithExtractFetcher(f fetch.Fetcher) ExtractorOption {
	return func(e *Extractor) { e.fetcher = f }
}

// WithDiscoverer sets the contact-page discoverer.
func WithDiscoverer(d *Discoverer) ExtractorOption {
	return func(e *Extractor) { e.discoverer = d }
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{fetcher: fetch.NewHTTPFetcher()}
	for _, o := range opts {
		o(e)
	}
	if e.discoverer == nil {
		e.discoverer = NewDiscoverer(WithDiscoverFetcher(e.fetcher))
	}
	return e
}

// zones hold candidate emails per trust level. Ordering matters: a footer or
// mailto address is far more likely the company's real contact than one found
// anywhere in body text.
type zones struct {
	footer  map[string]bool
	contact map[string]bool
	mailto  map[string]bool
	page    map[string]bool

	linkedin map[string]bool
}

func newZones() *zones {
	return &zones{
		footer:   make(map[string]bool),
		contact:  make(map[string]bool),
		mailto:   make(map[string]bool),
		page:     make(map[string]bool),
		linkedin: make(map[string]bool),
	}
}

// Extract returns an ordered, deduplicated list of email addresses followed
// by LinkedIn URLs tagged with LinkedInPrefix. disableSlugFallback skips the
// conventional-slug probe when discovery comes back empty.
func (e *Extractor) Extract(ctx context.Context, siteURL string, disableSlugFallback bool) []string {
	if siteURL == "" || (!strings.HasPrefix(siteURL, "http://") && !strings.HasPrefix(siteURL, "https://")) {
		return nil
	}

	log := zap.L().With(zap.String("site", siteURL))

	// The homepage itself, then every discovered candidate page.
	pages := []string{""}
	discovered := e.discoverer.Discover(ctx, siteURL)
	for _, link := range discovered {
		if strings.HasPrefix(link, "http") && urlutil.SameDomain(siteURL, link) {
			pages = append(pages, link)
		}
	}
	if len(discovered) == 0 && !disableSlugFallback {
		pages = append(pages, commonSlugs...)
		pages = append(pages, "/privacy", "/legal")
	}

	z := newZones()
	for _, page := range pages {
		pageURL := page
		if !strings.HasPrefix(page, "http") {
			pageURL = resolveAgainst(siteURL, page)
		}
		e.harvestPage(ctx, pageURL, z, log)
	}

	return e.finalize(z, log)
}

// harvestPage fetches one page and collects candidates into the zones.
// Failures are per-page: a dead contact page never aborts the whole crawl.
func (e *Extractor) harvestPage(ctx context.Context, pageURL string, z *zones, log *zap.Logger) {
	resp, err := e.fetcher.Get(ctx, pageURL)
	if err != nil || !resp.OK() {
		log.Debug("contact: page skipped", zap.String("page", pageURL), zap.Error(err))
		return
	}

	// De-obfuscate before any parsing so "info [at] acme [dot] it" survives
	// both the DOM text walk and the raw-markup regex pass.
	html := normalizeObfuscations(resp.Body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	// Footer: text plus markup, catching addresses assembled via inline
	// styles or entities invisible to the text walk.
	doc.Find("footer").Each(func(_ int, footer *goquery.Selection) {
		markup, _ := goquery.OuterHtml(footer)
		collectEmails(footer.Text()+" "+markup, z.footer)
	})

	// Sections whose class mentions contact.
	doc.Find(`div[class*="contact"], div[class*="contatti"], section[class*="contact"], section[class*="contatti"]`).
		Each(func(_ int, section *goquery.Selection) {
			collectEmails(section.Text(), z.contact)
		})

	// mailto links.
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		addr = strings.SplitN(addr, "?", 2)[0]
		if strings.Contains(addr, "@") {
			if cleaned := cleanEmail(addr); cleaned != "" {
				z.mailto[cleaned] = true
			}
		}
	})

	// Full page: text plus raw markup.
	pageText := doc.Text() + " " + html
	collectEmails(pageText, z.page)

	// data-email attributes and embedded JSON fragments.
	for _, m := range dataEmailRe.FindAllStringSubmatch(html, -1) {
		if cleaned := cleanEmail(normalizeObfuscations(m[1])); strings.Contains(cleaned, "@") {
			z.page[cleaned] = true
		}
	}
	for _, m := range jsonEmailRe.FindAllStringSubmatch(html, -1) {
		if cleaned := cleanEmail(normalizeObfuscations(m[1])); strings.Contains(cleaned, "@") {
			z.page[cleaned] = true
		}
	}

	// LinkedIn profile/company links.
	for _, link := range linkedinRe.FindAllString(pageText, -1) {
		z.linkedin[strings.TrimSpace(link)] = true
	}
}

// finalize filters candidates, orders by zone trust, and prefers
// company-domain addresses over free-mail ones.
func (e *Extractor) finalize(z *zones, log *zap.Logger) []string {
	ordered := make([]string, 0, len(z.footer)+len(z.contact)+len(z.mailto)+len(z.page))
	ordered = append(ordered, sortedKeys(z.footer)...)
	ordered = append(ordered, sortedKeys(z.contact)...)
	ordered = append(ordered, sortedKeys(z.mailto)...)
	ordered = append(ordered, sortedKeys(z.page)...)

	seen := make(map[string]bool)
	var result []string
	for _, email := range ordered {
		if seen[email] || !isValidEmail(email) {
			continue
		}
		seen[email] = true
		result = append(result, email)
	}

	// Company-domain addresses beat personal webmail when both exist.
	var corporate []string
	for _, email := range result {
		if !isFreeMail(email) {
			corporate = append(corporate, email)
		}
	}
	if len(corporate) > 0 {
		result = corporate
	}

	for _, link := range sortedKeys(z.linkedin) {
		result = append(result, LinkedInPrefix+link)
	}

	log.Debug("contact: extraction finished", zap.Int("results", len(result)))
	return result
}

// collectEmails regex-harvests candidates from text into the given zone set.
func collectEmails(text string, into map[string]bool) {
	for _, raw := range emailFindRe.FindAllString(text, -1) {
		if cleaned := cleanEmail(raw); cleaned != "" {
			into[cleaned] = true
		}
	}
}

var obfuscationReplacements = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)\s*\[at\]\s*`), "@"},
	{regexp.MustCompile(`(?i)\s*\(at\)\s*`), "@"},
	{regexp.MustCompile(`(?i)\s+at\s+`), "@"},
	{regexp.MustCompile(`(?i)\s*\[chiocciola\]\s*`), "@"},
	{regexp.MustCompile(`(?i)\s*\[dot\]\s*`), "."},
	{regexp.MustCompile(`(?i)\s*\(dot\)\s*`), "."},
	{regexp.MustCompile(`(?i)\s+dot\s+`), "."},
	{regexp.MustCompile(`(?i)\s*\[punto\]\s*`), "."},
	{regexp.MustCompile(`(?i)\s*\(punto\)\s*`), "."},
	{regexp.MustCompile(`(?i)\s+punto\s+`), "."},
}

var (
	atSpaceRe  = regexp.MustCompile(`\s*@\s*`)
	dotSpaceRe = regexp.MustCompile(`\s*\.\s*`)
)

// normalizeObfuscations rewrites common email obfuscation patterns
// ("info [at] acme [dot] it") into plain addresses before extraction.
func normalizeObfuscations(text string) string {
	if text == "" {
		return ""
	}
	for _, r := range obfuscationReplacements {
		text = r.pattern.ReplaceAllString(text, r.repl)
	}
	text = atSpaceRe.ReplaceAllString(text, "@")
	text = dotSpaceRe.ReplaceAllString(text, ".")
	return text
}

var invalidEmailCharsRe = regexp.MustCompile(`[^\w.@-]`)

// cleanEmail normalizes one raw candidate: truncate at query/space, strip
// label prefixes, drop invalid characters, lowercase, and collapse the
// duplicated-TLD artifact ("info@acme.it.it" → "info@acme.it").
func cleanEmail(email string) string {
	if i := strings.IndexAny(email, "? \t\n"); i >= 0 {
		email = email[:i]
	}

	// Label prefixes must go before the character strip, or "mailto:" loses
	// its colon and stops matching.
	lower := strings.ToLower(email)
	for _, prefix := range []string{"mailto:", "e-mail:", "email:"} {
		if strings.HasPrefix(lower, prefix) {
			email = email[len(prefix):]
			lower = strings.ToLower(email)
		}
	}

	email = invalidEmailCharsRe.ReplaceAllString(email, "")
	email = strings.TrimRight(email, ".,;:)")
	email = strings.ToLower(strings.TrimSpace(email))

	if local, domain, ok := strings.Cut(email, "@"); ok {
		parts := strings.Split(domain, ".")
		if len(parts) > 2 && parts[len(parts)-1] == parts[len(parts)-2] {
			domain = strings.Join(parts[:len(parts)-1], ".")
		}
		email = local + "@" + domain
	}

	return email
}

// isValidEmail applies the strict format check plus the domain and
// local-part ignore lists.
func isValidEmail(email string) bool {
	if !emailValidRe.MatchString(email) {
		return false
	}
	if len(email) > 254 {
		return false
	}

	local, domain, _ := strings.Cut(email, "@")
	if len(local) < 2 {
		return false
	}
	if ignoredEmailDomains[domain] {
		return false
	}
	for _, pat := range localPartIgnorePatterns {
		if pat.MatchString(local) {
			return false
		}
	}
	return true
}

func isFreeMail(email string) bool {
	for _, d := range freeMailDomains {
		if strings.HasSuffix(email, "@"+d) {
			return true
		}
	}
	return false
}

// sortedKeys returns map keys in deterministic order so extraction output is
// stable run to run.
func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
