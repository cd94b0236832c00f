package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ClientConfig configures NewClient. The zero value is usable.
type ClientConfig struct {
	Base    http.RoundTripper // defaults to http.DefaultTransport
	Timeout time.Duration
	Logger  *zerolog.Logger // defaults to the global zerolog logger
	Limiter *rate.Limiter   // nil means unlimited
	Tracing bool
	Options []Option // interceptor options
}

// NewClient returns the HTTP client every consumer should share. Its
// transport tags requests, logs them, and ends the session on the sentinel
// status. Building all clients here is what keeps the interceptor single.
func NewClient(ender SessionEnder, nav Navigator, cfg ClientConfig) *http.Client {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	opts := append([]Option{WithLogger(logger)}, cfg.Options...)

	var mw []Middleware
	if cfg.Tracing {
		mw = append(mw, Tracing())
	}
	mw = append(mw, RequestID(), Logging(logger))
	if cfg.Limiter != nil {
		mw = append(mw, RateLimit(cfg.Limiter))
	}
	mw = append(mw, Intercept(ender, nav, opts...))

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: Chain(orDefault(cfg.Base), mw...),
	}
}
