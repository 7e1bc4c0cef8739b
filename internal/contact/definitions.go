// Package contact discovers contact/about pages on a company site and
// extracts email addresses and LinkedIn links from them.
package contact

import "regexp"

// contactKeys flag URLs that probably hold contact information. Italian and
// English variants, since target sites are Italian SMEs with mixed-language
// slugs.
var contactKeys = []string{
	"contact", "contacts", "contact-us", "contactus",
	"contatto", "contatti", "contattaci",
	"chi-siamo", "chisiamo", "about",
	"azienda", "company", "dove-siamo", "dovesiamo", "assistenza",
}

// defaultSitemapPaths are tried when robots.txt lists no sitemap.
var defaultSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/wp-sitemap.xml",
	"/sitemap.php",
}

// commonSlugs is the low-priority fallback when discovery finds nothing.
var commonSlugs = []string{
	"/contatti", "/contatto", "/contattaci",
	"/contact", "/contacts", "/contact-us", "/contactus",
	"/chi-siamo", "/chisiamo", "/about", "/about-us", "/azienda", "/company",
	"/dove-siamo", "/assistenza",
}

// freeMailDomains are personal webmail providers. Addresses on these domains
// are kept only when no company-domain address was found.
var freeMailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"aol.com", "live.com", "msn.com", "icloud.com",
}

// ignoredEmailDomains are never genuine contact addresses: error trackers,
// site-builder internals, placeholders, and ad/CDN infrastructure that leak
// into raw HTML.
var ignoredEmailDomains = map[string]bool{
	"sentry.io":            true,
	"wixpress.com":         true,
	"users.wix.com":        true,
	"wixstatic.com":        true,
	"example.com":          true,
	"test.com":             true,
	"yourdomain.com":       true,
	"mydomain.com":         true,
	"website.com":          true,
	"domain.com":           true,
	"localhost":            true,
	"google.com":           true,
	"googleapis.com":       true,
	"googleusercontent.com": true,
	"googletagmanager.com": true,
	"googleadservices.com": true,
	"googlesyndication.com": true,
	"gstatic.com":          true,
	"facebook.com":         true,
	"twitter.com":          true,
	"instagram.com":        true,
	"doubleclick.net":      true,
	"amazonaws.com":        true,
	"appspot.com":          true,
	"cdn.com":              true,
	"cloudfront.net":       true,
	"windows.net":          true,
	"azure.com":            true,
	"microsoft.com":        true,
	"apple.com":            true,
	"broofa.com":           true,
}

// localPartIgnorePatterns reject machine-generated or boilerplate local
// parts: long hex hashes, noreply-style senders, privacy/legal inboxes, and
// one/two character fragments left over from bad extraction.
var localPartIgnorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-f0-9]{24,}$`),
	regexp.MustCompile(`^[a-z0-9]{30,}$`),
	regexp.MustCompile(`^(noreply|no-reply|donotreply|unsubscribe|mailer-daemon|postmaster|abuse|bounces?|devnull|null)$`),
	regexp.MustCompile(`(?i)privacy|gdpr|legal|copyright`),
	regexp.MustCompile(`^.{1,2}$`),
}

var (
	// emailFindRe harvests candidates from text; emailValidRe is the strict
	// whole-string check applied after cleaning.
	emailFindRe  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	emailValidRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	linkedinRe  = regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/(?:in|company)/[a-zA-Z0-9%_-]+/?`)
	dataEmailRe = regexp.MustCompile(`(?i)data-email\s*=\s*"([^"]+)"`)
	jsonEmailRe = regexp.MustCompile(`(?i)"email"\s*:\s*"([^"]+)"`)
)

// LinkedInPrefix tags LinkedIn URLs in the extractor's mixed output so
// callers can separate them from email addresses.
const LinkedInPrefix = "LINKEDIN:"
