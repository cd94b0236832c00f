package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

// Envelope is the backend's response wrapper.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Status  json.RawMessage `json:"status,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Unwrap returns the data member of a {data, status, message} envelope, or
// body itself when it is not wrapped.
func Unwrap(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return trimmed
	}
	return env.Data
}

// UnwrapInto decodes the unwrapped payload of body into out.
func UnwrapInto(body []byte, out any) error {
	if err := json.Unmarshal(Unwrap(body), out); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUnexpectedReply, err)
	}
	return nil
}

// UnwrapTwiceInto handles endpoints that wrap an envelope inside another one.
func UnwrapTwiceInto(body []byte, out any) error {
	if err := json.Unmarshal(Unwrap(Unwrap(body)), out); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUnexpectedReply, err)
	}
	return nil
}

// messageText flattens a message that may be a string or a list of strings.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return joinMessages(list)
	}
	return ""
}

func joinMessages(list []string) string {
	var buf bytes.Buffer
	for i, m := range list {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(m)
	}
	return buf.String()
}
