// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter paces requests to a single host so a crawl following next-page
// links does not hammer the server it is walking.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for the given URL can proceed immediately.
	Allow(urlStr string) bool
}

// DomainLimiter keeps one token bucket per host
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per host.
// A negative rate disables limiting; zero selects the default of 5 rps.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	limit := rate.Limit(requestsPerSecond)
	switch {
	case requestsPerSecond < 0:
		limit = rate.Inf
	case requestsPerSecond == 0:
		limit = 5.0
	}
	if burst <= 0 {
		burst = 10
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

// Wait blocks until the request for the given URL can proceed
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	host := hostOf(urlStr)
	if host == "" {
		// unparseable URLs are rejected by the scraper before reaching here
		return nil
	}
	return dl.limiter(host).Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DomainLimiter) Allow(urlStr string) bool {
	host := hostOf(urlStr)
	if host == "" {
		return true
	}
	return dl.limiter(host).Allow()
}

func (dl *DomainLimiter) limiter(host string) *rate.Limiter {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	l, ok := dl.limiters[host]
	if !ok {
		l = rate.NewLimiter(dl.perHost, dl.burst)
		dl.limiters[host] = l
	}
	return l
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
