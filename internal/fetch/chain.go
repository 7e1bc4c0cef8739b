package fetch

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries fetchers in priority order, returning the first usable result.
// The plain HTTP fetcher comes first; a browser-automation fetcher can sit
// behind it for sites that block plain clients.
type Chain struct {
	fetchers []Fetcher
}

// NewChain creates a Chain. At least one fetcher is required.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

func (c *Chain) Name() string { return "chain" }

// Get tries each fetcher in order. A fetcher's transport error or empty body
// falls through to the next; a non-200 response is returned as-is only when
// no later fetcher does better.
func (c *Chain) Get(ctx context.Context, url string) (*Response, error) {
	var lastResp *Response
	var lastErr error
	for _, f := range c.fetchers {
		resp, err := f.Get(ctx, url)
		if err == nil && resp.OK() {
			return resp, nil
		}
		if err != nil {
			zap.L().Debug("fetch: fetcher failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		lastResp = resp
	}
	if lastResp != nil {
		return lastResp, nil
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "fetch: all fetchers failed")
	}
	return nil, eris.Errorf("fetch: no fetcher produced a result for %s", url)
}

// Head delegates to the first fetcher; reachability does not need fallback.
func (c *Chain) Head(ctx context.Context, url string) (int, error) {
	if len(c.fetchers) == 0 {
		return 0, eris.New("fetch: chain has no fetchers")
	}
	return c.fetchers[0].Head(ctx, url)
}
