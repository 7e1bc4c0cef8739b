package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/outreach-labs/leadgen-cli/internal/resilience"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps page downloads; contact pages are small and sitemaps are
// capped separately by the discoverer.
const maxBodyBytes = 2 * 1024 * 1024

// HTTPFetcher fetches pages via net/http with a shared rate limiter and
// retry on transient failures.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithLimiter attaches a shared rate limiter. All workers in a parallel run
// must share one limiter: the constrained resource is the remote site's
// tolerance, not local CPU.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *HTTPFetcher) { f.limiter = l }
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(f *HTTPFetcher) { f.retry = cfg }
}

// NewHTTPFetcher creates an HTTPFetcher with crawl-tuned timeouts.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *HTTPFetcher) Name() string { return "http" }

// Get fetches a URL, retrying transient failures. Non-200 statuses are
// returned as responses, not errors; callers decide what a 404 means.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (*Response, error) {
	return resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*Response, error) {
		if err := f.wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: create request")
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html,application/xml,text/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: get")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("fetch: status %d for %s", resp.StatusCode, url),
				resp.StatusCode,
			)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, eris.Wrap(err, "fetch: read body")
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			FinalURL:   resp.Request.URL.String(),
		}, nil
	})
}

// Head issues a HEAD request and returns the status code. Used as the cheap
// reachability pre-check before the multi-page email crawl.
func (f *HTTPFetcher) Head(ctx context.Context, url string) (int, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: create head request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: head")
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (f *HTTPFetcher) wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	return f.limiter.Wait(ctx)
}
