// Package api is the shared plumbing of the REST consumers: request building,
// bearer authentication through the session store, and envelope decoding.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/book-inventory-client/internal/config"
)

// Client talks to the inventory backend. Anonymous calls (login, register)
// go through the shared intercepted client as is; authenticated calls add the
// session's bearer token on top of it.
type Client struct {
	baseURL  string
	anon     *http.Client
	authed   *http.Client
	sentinel int
}

type Option func(*Client)

// WithSentinelStatus must match the interceptor's sentinel (498 by default).
func WithSentinelStatus(status int) Option {
	return func(c *Client) { c.sentinel = status }
}

// NewClient builds a client for baseURL, e.g. "http://localhost:3000/api/v1".
// httpClient should come from transport.NewClient; tokens is normally
// (*session.Store).TokenSource().
func NewClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anon:    httpClient,
		authed: &http.Client{
			Timeout:       httpClient.Timeout,
			CheckRedirect: httpClient.CheckRedirect,
			Jar:           httpClient.Jar,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   httpClient.Transport,
			},
		},
		sentinel: config.StatusSessionInvalid,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call. Body is JSON encoded unless RawBody is set.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     io.Reader
	ContentType string
	Anonymous   bool
}

// Do sends r and returns the response for any 2xx status. The caller closes
// the body. Other statuses are returned as *Error or ErrSessionExpired.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	httpClient := c.authed
	if r.Anonymous {
		httpClient = c.anon
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[api %s %s] %w", req.Method, r.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.errorFrom(resp)
	}
	return resp, nil
}

// DoJSON sends r and decodes the unwrapped envelope payload into out.
// A nil out discards the body.
func (c *Client) DoJSON(ctx context.Context, r Request, out any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[api %s %s] read body: %w", r.Method, r.Path, err)
	}
	if out == nil {
		return nil
	}
	if err := UnwrapInto(body, out); err != nil {
		return fmt.Errorf("[api %s %s] %w", r.Method, r.Path, err)
	}
	return nil
}

// Stream copies a successful response body to w, e.g. for CSV exports.
func (c *Client) Stream(ctx context.Context, r Request, w io.Writer) (int64, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("[api %s %s] copy body: %w", r.Method, r.Path, err)
	}
	return n, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	contentType := r.ContentType
	switch {
	case r.RawBody != nil:
		body = r.RawBody
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("[api %s %s] encode body: %w", method, r.Path, err)
		}
		body = bytes.NewReader(data)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[api %s %s] new request: %w", method, r.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}
