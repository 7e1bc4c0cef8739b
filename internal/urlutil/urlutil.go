// Package urlutil canonicalizes URLs and cleans scraped text. Everything in
// here is a pure string operation: upstream HTML is untrusted, so these
// functions never return an error — malformed input passes through unchanged.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize prepends https:// when the URL has no scheme. Empty input stays
// empty.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + strings.TrimLeft(raw, "/")
	}
	return raw
}

// Clean reduces a URL to its scheme://netloc base, dropping path, query, and
// fragment. On any parse failure the original string is returned unchanged.
// Clean is idempotent: Clean(Clean(u)) == Clean(u).
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.TrimPrefix(raw, "mailto:")

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.Host == "" {
		// Something like "www.example.it" parses as a bare path.
		if parsed.Path != "" && strings.Contains(parsed.Path, ".") && parsed.Scheme == "" {
			return "http://" + strings.SplitN(parsed.Path, "/", 2)[0]
		}
		return raw
	}
	return parsed.Scheme + "://" + parsed.Host
}

// ExtractDomain returns the netloc without a leading "www.". Used for the
// keyword-in-domain shortcut in relevance scoring.
func ExtractDomain(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(Normalize(raw))
	if err != nil || parsed.Host == "" {
		return raw
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// SameDomain reports whether two URLs share a host, ignoring the www prefix
// and any port.
func SameDomain(a, b string) bool {
	return hostKey(a) != "" && hostKey(a) == hostKey(b)
}

func hostKey(raw string) string {
	parsed, err := url.Parse(Normalize(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	host = strings.SplitN(host, ":", 2)[0]
	return strings.TrimPrefix(host, "www.")
}

// BaseRoot returns scheme://netloc/ for a URL, defaulting to https when the
// scheme is missing.
func BaseRoot(raw string) string {
	parsed, err := url.Parse(Normalize(raw))
	if err != nil || parsed.Host == "" {
		host := strings.SplitN(strings.TrimSpace(raw), "/", 2)[0]
		return "https://" + host + "/"
	}
	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + parsed.Host + "/"
}

// Canonicalize normalizes a URL for deduplication: the fragment is dropped
// and the trailing slash removed except on the root path. The query string is
// kept.
func Canonicalize(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.Fragment = ""
	path := parsed.Path
	if path == "" {
		path = "/"
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	parsed.Path = path
	return parsed.String()
}

// assetExtensions are file endings that cannot be contact pages.
var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".pdf", ".zip", ".rar", ".7z",
	".mp4", ".mov", ".avi", ".mp3", ".wav",
	".css", ".js",
	".json", ".xml",
}

// IsProbablyPage reports whether a URL looks like an HTML page rather than an
// asset or data file.
func IsProbablyPage(raw string) bool {
	if raw == "" {
		return false
	}
	lower := strings.ToLower(raw)
	lower = strings.SplitN(lower, "?", 2)[0]
	lower = strings.SplitN(lower, "#", 2)[0]
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}
