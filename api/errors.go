package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

// ErrSessionExpired is returned for the sentinel status. By the time a caller
// sees it the interceptor has already ended the local session.
var ErrSessionExpired = apperrors.ErrSessionExpired

// Error is a non-2xx reply from the backend.
type Error struct {
	StatusCode int
	Message    string
	// Fields holds per-field validation messages when the backend sends them.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// StatusCode returns the HTTP status of err when it is an *Error, else 0.
func StatusCode(err error) int {
	var apiErr *Error
	if apperrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func (c *Client) errorFrom(resp *http.Response) error {
	if resp.StatusCode == c.sentinel {
		return fmt.Errorf("[api %s %s] %w", resp.Request.Method, resp.Request.URL.Path, ErrSessionExpired)
	}

	apiErr := &Error{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return apiErr
	}
	apiErr.Message = messageText(payload.Message)
	if apiErr.Message == "" {
		apiErr.Message = messageText(payload.Error)
	}
	apiErr.Fields = fieldErrors(payload.Errors)
	return apiErr
}

// fieldErrors reads an {"field": "message"} object. Any other shape, such as
// a list of messages, yields nil.
func fieldErrors(raw json.RawMessage) map[string]string {
	var fields map[string]string
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	return fields
}
