// Package transport wraps outbound HTTP so that a server-side session
// invalidation ends the local session wherever the request came from.
package transport

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/book-inventory-client/internal/config"
)

// SessionEnder is satisfied by *session.Store.
type SessionEnder interface {
	EndSession()
}

// Navigator performs a full navigation to path, discarding in-process UI state.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Interceptor is an http.RoundTripper that watches responses for the
// "session invalid" status. On that status it ends the session and navigates
// to the login path, then returns the response untouched. Requests, other
// responses and transport errors pass through unchanged.
type Interceptor struct {
	base      http.RoundTripper
	ender     SessionEnder
	nav       Navigator
	sentinel  int
	loginPath string
	logger    zerolog.Logger
}

var _ http.RoundTripper = (*Interceptor)(nil)

type Option func(*Interceptor)

// WithSentinelStatus overrides the status that forces a logout (498).
func WithSentinelStatus(status int) Option {
	return func(i *Interceptor) { i.sentinel = status }
}

// WithLoginPath overrides the navigation target ("/login").
func WithLoginPath(path string) Option {
	return func(i *Interceptor) { i.loginPath = path }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(i *Interceptor) { i.logger = logger }
}

// NewInterceptor wraps base. Wrapping an *Interceptor returns it as is, so the
// logout reaction can never be layered twice. A nil base means http.DefaultTransport.
func NewInterceptor(base http.RoundTripper, ender SessionEnder, nav Navigator, opts ...Option) *Interceptor {
	if existing, ok := base.(*Interceptor); ok {
		return existing
	}
	i := &Interceptor{
		base:      orDefault(base),
		ender:     ender,
		nav:       nav,
		sentinel:  config.StatusSessionInvalid,
		loginPath: "/login",
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := i.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode == i.sentinel {
		i.forceLogout(req)
	}
	return resp, nil
}

// Unwrap returns the transport the interceptor delegates to.
func (i *Interceptor) Unwrap() http.RoundTripper {
	return i.base
}

func (i *Interceptor) SentinelStatus() int {
	return i.sentinel
}

func (i *Interceptor) forceLogout(req *http.Request) {
	i.logger.Warn().
		Int("status", i.sentinel).
		Str("url", req.URL.String()).
		Str("method", req.Method).
		Msg("Session invalidated by server, logging out")

	if i.ender != nil {
		i.ender.EndSession()
	}
	if i.nav != nil {
		i.nav.Navigate(i.loginPath)
	}
}

// Install puts an interceptor in front of client's transport and returns a
// teardown func restoring the previous transport. Installing on a client whose
// transport already contains one is a no-op with a no-op teardown. Install is not safe to
// call while client is in use.
func Install(client *http.Client, ender SessionEnder, nav Navigator, opts ...Option) (teardown func()) {
	original := client.Transport
	if HasInterceptor(original) {
		return func() {}
	}
	client.Transport = NewInterceptor(original, ender, nav, opts...)
	return func() { client.Transport = original }
}
