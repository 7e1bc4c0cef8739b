package contact

import (
	"encoding/xml"
	"regexp"
	"strings"
)

type sitemapIndexDoc struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

type urlSetDoc struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

var locFallbackRe = regexp.MustCompile(`(?i)<loc>\s*([^<\s]+)\s*</loc>`)

// parseSitemap parses a sitemap document. A <sitemapindex> yields child
// sitemap URLs, a <urlset> yields leaf page URLs. Malformed XML falls back
// to a regex scan for <loc> entries, because real-world sitemaps are often
// dirty but still usable.
func parseSitemap(body string) (children, leaves []string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}

	var index sitemapIndexDoc
	if err := xml.Unmarshal([]byte(body), &index); err == nil && len(index.Sitemaps) > 0 {
		for _, s := range index.Sitemaps {
			if loc := strings.TrimSpace(s.Loc); loc != "" {
				children = append(children, loc)
			}
		}
		return children, nil
	}

	var set urlSetDoc
	if err := xml.Unmarshal([]byte(body), &set); err == nil && len(set.URLs) > 0 {
		for _, u := range set.URLs {
			if loc := strings.TrimSpace(u.Loc); loc != "" {
				leaves = append(leaves, loc)
			}
		}
		return nil, leaves
	}

	for _, m := range locFallbackRe.FindAllStringSubmatch(body, -1) {
		leaves = append(leaves, strings.TrimSpace(m[1]))
	}
	return nil, leaves
}

// sitemapPriority orders child sitemaps so page sitemaps are crawled before
// post sitemaps: contact pages are pages, not blog posts.
func sitemapPriority(u string) int {
	ul := strings.ToLower(u)
	if strings.Contains(ul, "page-sitemap") ||
		strings.Contains(ul, "pages-sitemap") ||
		strings.Contains(ul, "wp-sitemap-posts-page") {
		return 0
	}
	if strings.Contains(ul, "post-sitemap") || strings.Contains(ul, "wp-sitemap-posts-post") {
		return 1
	}
	return 2
}

// sitemapsFromRobots extracts Sitemap: directive URLs from a robots.txt
// body, preserving order and dropping duplicates.
func sitemapsFromRobots(robots string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(robots, "\n") {
		s := strings.TrimSpace(line)
		if len(s) < 8 || !strings.EqualFold(s[:8], "sitemap:") {
			continue
		}
		u := strings.TrimSpace(s[8:])
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}
