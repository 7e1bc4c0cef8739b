// Package fetch provides the HTTP fetch collaborator used by the relevance
// scorer, contact discoverer, and email extractor. A Fetcher is deliberately
// thin so a stealth-browser implementation can slot in behind the same
// interface when the plain client is blocked.
package fetch

import (
	"context"
)

// Response is a fetched page. FinalURL reflects redirects, which matter to
// the contact discoverer: sites commonly redirect http→https or apex→www and
// all later resolution must happen against the final origin.
type Response struct {
	StatusCode int
	Body       string
	FinalURL   string
}

// OK reports whether the response carries usable content.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == 200 && r.Body != ""
}

// Fetcher retrieves pages. Implementations return an error only for
// transport-level failures; a non-200 status is a valid Response.
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
	Head(ctx context.Context, url string) (int, error)
	Name() string
}
