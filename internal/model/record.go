// Package model defines the shared data types for the lead enrichment
// pipeline.
package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CompanyRecord is one discovered business. Discovery populates the first
// block of fields; the enrichment pipeline fills in the rest before the
// record is appended to the output CSV. Empty string means "field checked,
// nothing found".
type CompanyRecord struct {
	Comune        string  `csv:"comune" json:"comune"`
	Keyword       string  `csv:"keyword" json:"keyword"`
	Nome          string  `csv:"nome" json:"nome"`
	Indirizzo     string  `csv:"indirizzo" json:"indirizzo"`
	Telefono      string  `csv:"telefono" json:"telefono"`
	SitoWeb       string  `csv:"sito_web" json:"sito_web"`
	Email         string  `csv:"email" json:"email"`
	LinkedIn      string  `csv:"linkedin" json:"linkedin"`
	Pertinenza    bool    `csv:"pertinenza" json:"pertinenza"`
	Categoria     string  `csv:"categoria" json:"categoria"`
	Confidenza    float64 `csv:"confidenza_analisi" json:"confidenza_analisi"`
	Contatto      string  `csv:"contatto" json:"contatto"`
	NumRecensioni string  `csv:"num_recensioni" json:"num_recensioni"`
	Tipo          string  `csv:"tipo" json:"tipo"`
	DistanzaKm    string  `csv:"distanza_km" json:"distanza_km"`
}

// DedupKey identifies a company for deduplication and resume. Two records
// with the same normalized name, municipality, and site collapse to one
// persisted row.
type DedupKey struct {
	Nome   string `json:"nome"`
	Comune string `json:"comune"`
	Sito   string `json:"sito"`
}

// NewDedupKey builds a key from the raw name, municipality, and the already
// cleaned site URL. Name and municipality are lowercased, trimmed, and
// accent-folded so "Perù" and "Peru" compare equal; the site host is
// lowercased and stripped of its trailing slash.
func NewDedupKey(nome, comune, sito string) DedupKey {
	return DedupKey{
		Nome:   foldKey(nome),
		Comune: foldKey(comune),
		Sito:   strings.TrimRight(strings.ToLower(strings.TrimSpace(sito)), "/"),
	}
}

// Key returns the record's dedup key. The site must already be cleaned to
// scheme://netloc form by the caller.
func (r *CompanyRecord) Key() DedupKey {
	return NewDedupKey(r.Nome, r.Comune, r.SitoWeb)
}

// keyFolder strips combining marks after NFD decomposition, removing accents.
var keyFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(keyFolder, s)
	if err != nil {
		return s
	}
	return folded
}
