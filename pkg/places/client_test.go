package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/nearbysearch/json", r.URL.Path)
		gotQuery = map[string]string{
			"key":       r.URL.Query().Get("key"),
			"location":  r.URL.Query().Get("location"),
			"radius":    r.URL.Query().Get("radius"),
			"keyword":   r.URL.Query().Get("keyword"),
			"pagetoken": r.URL.Query().Get("pagetoken"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"next_page_token": "tok2",
			"results": [
				{
					"place_id": "p1",
					"name": "Rossi Impianti",
					"vicinity": "Via Roma 1, Milano",
					"rating": 4.5,
					"user_ratings_total": 27,
					"types": ["electrician", "point_of_interest"]
				}
			]
		}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	resp, err := c.NearbySearch(context.Background(), NearbyQuery{
		Lat: 45.46, Lon: 9.19, RadiusM: 5000, Keyword: "fotovoltaico", PageToken: "tok1",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotQuery["key"])
	assert.Equal(t, "45.460000,9.190000", gotQuery["location"])
	assert.Equal(t, "5000", gotQuery["radius"])
	assert.Equal(t, "fotovoltaico", gotQuery["keyword"])
	assert.Equal(t, "tok1", gotQuery["pagetoken"])

	assert.Equal(t, "tok2", resp.NextPageToken)
	require.Len(t, resp.Results, 1)
	p := resp.Results[0]
	assert.Equal(t, "p1", p.PlaceID)
	assert.Equal(t, "Rossi Impianti", p.Name)
	assert.Equal(t, "Via Roma 1, Milano", p.Address())
	assert.Equal(t, 27, p.UserRatingsTotal)
	assert.Equal(t, []string{"electrician", "point_of_interest"}, p.Types)
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	resp, err := c.NearbySearch(context.Background(), NearbyQuery{Keyword: "fotovoltaico"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.NextPageToken)
}

func TestNearbySearch_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	}))
	defer ts.Close()

	c := NewClient("bad-key", WithBaseURL(ts.URL))
	_, err := c.NearbySearch(context.Background(), NearbyQuery{Keyword: "fotovoltaico"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "website,formatted_phone_number", r.URL.Query().Get("fields"))
		w.Write([]byte(`{
			"status": "OK",
			"result": {"website": "https://rossi.it", "formatted_phone_number": "02 1234567"}
		}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	det, err := c.Details(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://rossi.it", det.Website)
	assert.Equal(t, "02 1234567", det.Phone)
}

func TestDetails_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "NOT_FOUND"}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.Details(context.Background(), "gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestClient_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.NearbySearch(context.Background(), NearbyQuery{Keyword: "fotovoltaico"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
