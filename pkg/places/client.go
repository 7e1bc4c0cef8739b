// Package places wraps the Google Places API operations used for company
// discovery: Nearby Search around a municipality's coordinates, plus Place
// Details to resolve websites and phone numbers.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client performs Google Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, q NearbyQuery) (*NearbyResponse, error)
	Details(ctx context.Context, placeID string) (*Details, error)
}

// NearbyQuery describes one Nearby Search request.
type NearbyQuery struct {
	Lat       float64
	Lon       float64
	RadiusM   int
	Keyword   string
	PageToken string
}

// NearbyResponse is a single page of Nearby Search results.
type NearbyResponse struct {
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
}

// Place is one business returned by Nearby Search.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
}

// Address returns the best available address for the place.
func (p Place) Address() string {
	if p.Vicinity != "" {
		return p.Vicinity
	}
	return p.FormattedAddress
}

// Details holds the Place Details fields we request.
type Details struct {
	Website string `json:"website"`
	Phone   string `json:"formatted_phone_number"`
}

type detailsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Result       Details `json:"result"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) NearbySearch(ctx context.Context, q NearbyQuery) (*NearbyResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("location", fmt.Sprintf("%f,%f", q.Lat, q.Lon))
	params.Set("radius", strconv.Itoa(q.RadiusM))
	params.Set("keyword", q.Keyword)
	if q.PageToken != "" {
		params.Set("pagetoken", q.PageToken)
	}

	var result NearbyResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &result); err != nil {
		return nil, eris.Wrap(err, "places: nearby search")
	}
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("places: nearby search status %s: %s", result.Status, result.ErrorMessage)
	}
	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*Details, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", "website,formatted_phone_number")

	var result detailsResponse
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, eris.Wrapf(err, "places: details %s", placeID)
	}
	if result.Status != "OK" {
		return nil, eris.Errorf("places: details %s status %s: %s", placeID, result.Status, result.ErrorMessage)
	}
	return &result.Result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
