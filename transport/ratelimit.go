package transport

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit holds each request until limiter admits it, so a busy client
// never trips the backend's own limiter. A cancelled context fails the request.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &rateLimitTransport{next: orDefault(next), limiter: limiter}
	}
}

// NewLimiter allows rps requests per second with bursts of burst.
// A non-positive rps means unlimited.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.RoundTrip(req)
}

func (t *rateLimitTransport) Unwrap() http.RoundTripper { return t.next }
