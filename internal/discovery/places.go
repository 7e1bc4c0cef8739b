package discovery

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/model"
	"github.com/outreach-labs/leadgen-cli/pkg/places"
)

const (
	maxResultPages = 3
	// Google activates a next_page_token a moment after returning it.
	pageTokenDelay = 2 * time.Second
)

// Area is one municipality to search, with its centroid and search radius.
type Area struct {
	Comune   string
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// PlacesSource discovers companies by running keyword searches around each
// area via the Google Places API. Website and phone come from Place Details,
// memoized in the cache when one is configured.
type PlacesSource struct {
	client       places.Client
	cache        *places.DetailsCache
	areas        []Area
	keywords     []string
	perQueryMax  int
	fetchDetails bool
}

// PlacesOption configures a PlacesSource.
type PlacesOption func(*PlacesSource)

// WithCache memoizes Place Details lookups.
func WithCache(c *places.DetailsCache) PlacesOption {
	return func(s *PlacesSource) { s.cache = c }
}

// WithPerQueryLimit caps results per comune+keyword query. Zero means no cap.
func WithPerQueryLimit(n int) PlacesOption {
	return func(s *PlacesSource) { s.perQueryMax = n }
}

// WithoutDetails skips Place Details lookups, leaving website and phone
// empty. Cheaper, for runs that only need names and addresses.
func WithoutDetails() PlacesOption {
	return func(s *PlacesSource) { s.fetchDetails = false }
}

// NewPlacesSource returns a Source searching the given areas for each keyword.
func NewPlacesSource(client places.Client, areas []Area, keywords []string, opts ...PlacesOption) *PlacesSource {
	s := &PlacesSource{
		client:       client,
		areas:        areas,
		keywords:     keywords,
		fetchDetails: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover runs every area+keyword query. Query failures are logged and
// skipped so one dead municipality does not sink the batch.
func (s *PlacesSource) Discover(ctx context.Context) ([]model.CompanyRecord, error) {
	var records []model.CompanyRecord
	for _, area := range s.areas {
		for _, keyword := range s.keywords {
			if err := ctx.Err(); err != nil {
				return records, eris.Wrap(err, "discovery: places search")
			}
			recs, err := s.searchOne(ctx, area, keyword)
			if err != nil {
				zap.L().Warn("discovery: query failed",
					zap.String("comune", area.Comune),
					zap.String("keyword", keyword),
					zap.Error(err),
				)
				continue
			}
			records = append(records, recs...)
		}
	}
	zap.L().Info("discovery: places search complete",
		zap.Int("areas", len(s.areas)),
		zap.Int("keywords", len(s.keywords)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (s *PlacesSource) searchOne(ctx context.Context, area Area, keyword string) ([]model.CompanyRecord, error) {
	radiusM := int(area.RadiusKm * 1000)
	if radiusM < 1000 {
		radiusM = 1000
	}

	var out []model.CompanyRecord
	seen := make(map[string]bool)
	pageToken := ""

	for page := 0; page < maxResultPages; page++ {
		if pageToken != "" {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(pageTokenDelay):
			}
		}

		resp, err := s.client.NearbySearch(ctx, places.NearbyQuery{
			Lat:       area.Lat,
			Lon:       area.Lon,
			RadiusM:   radiusM,
			Keyword:   keyword,
			PageToken: pageToken,
		})
		if err != nil {
			return out, err
		}

		for _, place := range resp.Results {
			if s.perQueryMax > 0 && len(out) >= s.perQueryMax {
				return out, nil
			}
			if place.PlaceID != "" && seen[place.PlaceID] {
				continue
			}
			if place.PlaceID != "" {
				seen[place.PlaceID] = true
			}

			rec := model.CompanyRecord{
				Comune:        area.Comune,
				Keyword:       keyword,
				Nome:          place.Name,
				Indirizzo:     place.Address(),
				NumRecensioni: strconv.Itoa(place.UserRatingsTotal),
				Tipo:          strings.Join(place.Types, ","),
			}
			if s.fetchDetails && place.PlaceID != "" {
				if det := s.details(ctx, place.PlaceID); det != nil {
					rec.SitoWeb = det.Website
					rec.Telefono = det.Phone
				}
			}
			out = append(out, rec)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return out, nil
}

// details resolves website and phone for a place, consulting the cache
// first. Lookup failures return nil: the record just goes out without a
// site, the same as a business with no listing.
func (s *PlacesSource) details(ctx context.Context, placeID string) *places.Details {
	if s.cache != nil {
		if det, err := s.cache.Get(ctx, placeID); err != nil {
			zap.L().Warn("discovery: details cache read failed", zap.Error(err))
		} else if det != nil {
			return det
		}
	}

	det, err := s.client.Details(ctx, placeID)
	if err != nil {
		zap.L().Debug("discovery: details lookup failed",
			zap.String("place_id", placeID), zap.Error(err))
		return nil
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, placeID, det); err != nil {
			zap.L().Warn("discovery: details cache write failed", zap.Error(err))
		}
	}
	return det
}
