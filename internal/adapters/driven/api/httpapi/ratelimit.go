package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// DefaultRetryAfter is assumed when a 429 carries no usable Retry-After.
const DefaultRetryAfter = 5 * time.Second

// RateLimiter combines a proactive token bucket with the server's
// Retry-After back-off.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter
	blockedUntil time.Time
	now          func() time.Time
}

// NewRateLimiter creates a limiter allowing rps sustained requests per
// second. rps <= 0 disables proactive throttling.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, burst),
		now:    time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	until := r.blockedUntil
	r.mu.Unlock()

	wait := until.Sub(r.now())
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckRateLimit returns a RateLimitError for 429 responses and holds back
// later requests until the server's retry time.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) *RateLimitError {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	retryAfter := parseRetryAfter(resp.Header.Get(HeaderRetryAfter), r.now())

	r.mu.Lock()
	if until := r.now().Add(retryAfter); until.After(r.blockedUntil) {
		r.blockedUntil = until
	}
	r.mu.Unlock()

	return &RateLimitError{RetryAfter: retryAfter}
}

// BlockedUntil returns when the server allows the next request.
func (r *RateLimiter) BlockedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockedUntil
}

func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return DefaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}
