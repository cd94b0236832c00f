package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader is set on outbound requests that do not carry one already.
const RequestIDHeader = "X-Request-ID"

type Middleware func(http.RoundTripper) http.RoundTripper

// Chain layers mw over base; mw[0] ends up outermost.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// Intercept is NewInterceptor as a Middleware. It leaves next alone when an
// interceptor is already somewhere in it.
func Intercept(ender SessionEnder, nav Navigator, opts ...Option) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if HasInterceptor(next) {
			return next
		}
		return NewInterceptor(next, ender, nav, opts...)
	}
}

// HasInterceptor walks rt's Unwrap chain looking for an *Interceptor.
func HasInterceptor(rt http.RoundTripper) bool {
	for rt != nil {
		if _, ok := rt.(*Interceptor); ok {
			return true
		}
		u, ok := rt.(interface{ Unwrap() http.RoundTripper })
		if !ok {
			return false
		}
		rt = u.Unwrap()
	}
	return false
}

// RequestID tags each request with a fresh UUID. The caller's request is cloned, not modified.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &requestIDTransport{next: orDefault(next)}
	}
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.next.RoundTrip(r)
}

func (t *requestIDTransport) Unwrap() http.RoundTripper { return t.next }

// Logging logs every exchange at debug level.
func Logging(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &loggingTransport{next: orDefault(next), logger: logger}
	}
}

type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	event := t.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Dur("elapsed", time.Since(start))
	if err != nil {
		event.Err(err).Msg("Request failed")
		return resp, err
	}
	event.Int("status", resp.StatusCode).Msg("Request completed")
	return resp, nil
}

func (t *loggingTransport) Unwrap() http.RoundTripper { return t.next }

func orDefault(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
