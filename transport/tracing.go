package transport

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracing records a client span per request through the global OpenTelemetry
// provider and propagates the trace context. With no provider installed the
// spans are no-ops.
func Tracing() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		next = orDefault(next)
		return &tracingTransport{
			next: next,
			traced: otelhttp.NewTransport(next,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return r.Method + " " + r.URL.Path
				}),
			),
		}
	}
}

// tracingTransport keeps next reachable for HasInterceptor.
type tracingTransport struct {
	next   http.RoundTripper
	traced http.RoundTripper
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.traced.RoundTrip(req)
}

func (t *tracingTransport) Unwrap() http.RoundTripper { return t.next }
