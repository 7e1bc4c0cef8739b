package enrich

import "strings"

// bigCompanyKeywords marks national utilities, multinationals, and corporate
// structures that are out of scope for local outreach.
var bigCompanyKeywords = []string{
	"enel",
	"eni",
	"edison",
	"a2a",
	"sorgenia",
	"iren",
	"hera",
	"vivi energia",
	"engie",
	"acea",
	"e.on",
	"axpo",
	"multinazionale",
	"gruppo",
	"corporation",
	"holding",
	"s.p.a.",
	"spa",
}

// IsBigCompany reports whether the company name matches a known large
// enterprise. Matching is a case-insensitive substring check.
func IsBigCompany(nome string) bool {
	lower := strings.ToLower(nome)
	for _, kw := range bigCompanyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
