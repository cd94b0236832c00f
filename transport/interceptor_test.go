package transport_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/book-inventory-client/transport"
	"github.com/stretchr/testify/require"
)

type countingEnder struct{ calls int }

func (c *countingEnder) EndSession() { c.calls++ }

type recordingNavigator struct{ paths []string }

func (r *recordingNavigator) Navigate(path string) { r.paths = append(r.paths, path) }

// stubTransport answers every request with the configured status and body.
type stubTransport struct {
	status int
	body   string
	err    error
	seen   []*http.Request
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.seen = append(s.seen, req)
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Status:     http.StatusText(s.status),
		Header:     http.Header{"X-Upstream": []string{"stub"}},
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "http://inventory.test/api/v1/books/search", strings.NewReader(`{"query":{}}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer abc")
	return req
}

func TestInterceptor_ReactsOnlyOnSentinel(t *testing.T) {
	tests := []struct {
		status   int
		reaction bool
	}{
		{http.StatusOK, false},
		{http.StatusUnauthorized, false},
		{498, true},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			stub := &stubTransport{status: tt.status, body: `{"message":"m"}`}
			ender := &countingEnder{}
			nav := &recordingNavigator{}
			interceptor := transport.NewInterceptor(stub, ender, nav)

			req := newRequest(t)
			resp, err := interceptor.RoundTrip(req)
			require.NoError(t, err)

			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, "stub", resp.Header.Get("X-Upstream"))
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, `{"message":"m"}`, string(body))

			require.Len(t, stub.seen, 1)
			require.Same(t, req, stub.seen[0], "request must be passed through untouched")

			if tt.reaction {
				require.Equal(t, 1, ender.calls)
				require.Equal(t, []string{"/login"}, nav.paths)
			} else {
				require.Zero(t, ender.calls)
				require.Empty(t, nav.paths)
			}
		})
	}
}

func TestInterceptor_NotSingleShot(t *testing.T) {
	stub := &stubTransport{status: 498}
	ender := &countingEnder{}
	nav := &recordingNavigator{}
	interceptor := transport.NewInterceptor(stub, ender, nav)

	for i := 0; i < 3; i++ {
		_, err := interceptor.RoundTrip(newRequest(t))
		require.NoError(t, err)
	}
	require.Equal(t, 3, ender.calls)
	require.Len(t, nav.paths, 3)
}

func TestInterceptor_Options(t *testing.T) {
	stub := &stubTransport{status: 440}
	ender := &countingEnder{}
	nav := &recordingNavigator{}
	interceptor := transport.NewInterceptor(stub, ender, nav,
		transport.WithSentinelStatus(440),
		transport.WithLoginPath("/auth/login"),
	)
	require.Equal(t, 440, interceptor.SentinelStatus())

	_, err := interceptor.RoundTrip(newRequest(t))
	require.NoError(t, err)
	require.Equal(t, 1, ender.calls)
	require.Equal(t, []string{"/auth/login"}, nav.paths)

	stub.status = 498
	_, err = interceptor.RoundTrip(newRequest(t))
	require.NoError(t, err)
	require.Equal(t, 1, ender.calls)
}

func TestInterceptor_TransportErrorPassesThrough(t *testing.T) {
	netErr := errors.New("connection reset")
	ender := &countingEnder{}
	interceptor := transport.NewInterceptor(&stubTransport{err: netErr}, ender, nil)

	resp, err := interceptor.RoundTrip(newRequest(t))
	require.Nil(t, resp)
	require.Same(t, netErr, err)
	require.Zero(t, ender.calls)
}

func TestInterceptor_NilCollaborators(t *testing.T) {
	interceptor := transport.NewInterceptor(&stubTransport{status: 498}, nil, nil)
	require.NotPanics(t, func() {
		_, err := interceptor.RoundTrip(newRequest(t))
		require.NoError(t, err)
	})
}

func TestNewInterceptor_DoesNotDoubleWrap(t *testing.T) {
	stub := &stubTransport{status: 498}
	ender := &countingEnder{}
	nav := &recordingNavigator{}

	first := transport.NewInterceptor(stub, ender, nav)
	second := transport.NewInterceptor(first, ender, nav)
	require.Same(t, first, second)
	require.Same(t, stub, second.Unwrap())

	_, err := second.RoundTrip(newRequest(t))
	require.NoError(t, err)
	require.Equal(t, 1, ender.calls)
	require.Len(t, nav.paths, 1)
}

func TestInstall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/expired" {
			w.WriteHeader(498)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{}
	ender := &countingEnder{}
	nav := &recordingNavigator{}

	teardown := transport.Install(client, ender, nav)
	noop := transport.Install(client, ender, nav)

	t.Run("installing twice reacts once", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/expired")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, 498, resp.StatusCode)
		require.Equal(t, 1, ender.calls)
		require.Len(t, nav.paths, 1)
	})

	t.Run("second teardown keeps the interceptor", func(t *testing.T) {
		noop()
		require.True(t, transport.HasInterceptor(client.Transport))
	})

	t.Run("teardown restores the original transport", func(t *testing.T) {
		teardown()
		require.Nil(t, client.Transport)

		resp, err := client.Get(server.URL + "/expired")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, 1, ender.calls)
	})
}
