// Package discovery produces raw candidate records for the enrichment
// pipeline, either from the Google Places API or from a previously exported
// CSV.
package discovery

import (
	"context"

	"github.com/outreach-labs/leadgen-cli/internal/model"
)

// Source yields raw candidate company records. Records come back unenriched:
// discovery fills the identity fields (comune, keyword, nome, indirizzo,
// telefono, sito_web, num_recensioni, tipo) and leaves the rest empty.
type Source interface {
	Discover(ctx context.Context) ([]model.CompanyRecord, error)
}
