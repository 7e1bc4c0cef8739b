package fetch

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// NewLimiter builds the shared outbound-request limiter. maxPerSecond <= 0
// falls back to 10 req/s, the safe ceiling for scraping public sites.
func NewLimiter(maxPerSecond int) *rate.Limiter {
	if maxPerSecond <= 0 {
		maxPerSecond = 10
	}
	return rate.NewLimiter(rate.Limit(maxPerSecond), maxPerSecond)
}

// PoliteSleep sleeps a randomized duration between min and max, respecting
// context cancellation. Randomized jitter avoids the synchronized request
// patterns that are easy to detect and rate-limit.
func PoliteSleep(ctx context.Context, min, max time.Duration) {
	if max <= min {
		max = min + time.Millisecond
	}
	delay := min + time.Duration(rand.Int64N(int64(max-min)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
