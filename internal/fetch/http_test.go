package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreach-labs/leadgen-cli/internal/resilience"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestHTTPFetcher_Get(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "it-IT")
		fmt.Fprint(w, "<html><body>ciao</body></html>")
	}))
	defer ts.Close()

	f := NewHTTPFetcher(WithRetry(fastRetry()))
	resp, err := f.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Contains(t, resp.Body, "ciao")
	assert.Equal(t, ts.URL+"/", resp.FinalURL)
}

func TestHTTPFetcher_Get_NotFoundIsNotError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	f := NewHTTPFetcher(WithRetry(fastRetry()))
	resp, err := f.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())
}

func TestHTTPFetcher_Get_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "finally")
	}))
	defer ts.Close()

	f := NewHTTPFetcher(WithRetry(fastRetry()))
	resp, err := f.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_Get_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/nuovo", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/nuovo", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "spostato")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	f := NewHTTPFetcher(WithRetry(fastRetry()))
	resp, err := f.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/nuovo", resp.FinalURL)
	assert.Contains(t, resp.Body, "spostato")
}

func TestHTTPFetcher_Head(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	f := NewHTTPFetcher(WithRetry(fastRetry()))
	status, err := f.Head(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestHTTPFetcher_Get_ConnectionError(t *testing.T) {
	f := NewHTTPFetcher(
		WithRetry(resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond}),
		WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}),
	)
	_, err := f.Get(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
}

func TestResponse_OK(t *testing.T) {
	assert.True(t, (&Response{StatusCode: 200, Body: "x"}).OK())
	assert.False(t, (&Response{StatusCode: 200, Body: ""}).OK())
	assert.False(t, (&Response{StatusCode: 500, Body: "x"}).OK())
}
