package urlutil

import (
	"regexp"
	"strings"
)

// labelPrefixes are boilerplate labels that map scrapers prepend to address
// and phone fields.
var labelPrefixes = []string{
	"Indirizzo:", "Address:", "Telefono:", "Phone:", "Tel:", "Website:", "Sito web:",
}

var (
	controlRe     = regexp.MustCompile(`[\n\r\t]`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	leadingJunkRe = regexp.MustCompile(`^[\s,.:;-]+`)
)

// CleanExtractedText strips label prefixes, control characters, private-use
// icon glyphs, and leading punctuation from a scraped address/phone/name
// string.
func CleanExtractedText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := text
	for _, prefix := range labelPrefixes {
		cleaned = strings.ReplaceAll(cleaned, prefix, "")
	}
	cleaned = controlRe.ReplaceAllString(cleaned, " ")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = leadingJunkRe.ReplaceAllString(cleaned, "")
	cleaned = stripPrivateUse(cleaned)
	return strings.TrimSpace(cleaned)
}

// NormalizeText lowercases and collapses whitespace for keyword matching.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(text)
	t = multiSpaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// stripPrivateUse drops Unicode private-use glyphs, which map providers use
// for inline pin and phone icons.
func stripPrivateUse(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0xE000 && r <= 0xF8FF {
			return -1
		}
		return r
	}, s)
}
