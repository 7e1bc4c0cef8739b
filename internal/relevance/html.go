package relevance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

// extractVisibleText returns the page's visible text, lowercased with
// collapsed whitespace. Scripts, styles, iframes, and noscript blocks are
// removed first.
func extractVisibleText(doc *goquery.Document) string {
	doc.Find("script, style, iframe, noscript").Remove()
	return urlutil.NormalizeText(doc.Find("body").Text())
}

// extractMetaText concatenates the title, meta description, meta keywords,
// and h1/h2/h3 headings. This is denser signal than body text, so the scorer
// weights it double.
func extractMetaText(doc *goquery.Document) string {
	var parts []string

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	for _, name := range []string{"description", "keywords"} {
		sel := `meta[name="` + name + `"]`
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				parts = append(parts, content)
			}
		}
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return urlutil.NormalizeText(strings.Join(parts, " "))
}

// parseHTML wraps goquery's reader constructor; a nil document means the
// HTML was unusable.
func parseHTML(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}
