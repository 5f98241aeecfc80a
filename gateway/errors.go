package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks input rejected locally, before any network call.
var ErrValidation = errors.New("validation failed")

// Error is a transport failure: either the request never completed
// (StatusCode == 0) or the backend answered with a non-success status.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("Server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err carries a *Error.
func IsTransport(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}
	return 0
}

func newStatusError(op string, status int, body []byte) *Error {
	return &Error{Op: op, StatusCode: status, Message: extractMessage(body)}
}

func newNetworkError(op string, err error) *Error {
	return &Error{Op: op, Message: err.Error(), Err: err}
}

// extractMessage pulls a human readable message out of an error body.
// FastAPI style {"detail": "..."} and common {"error"|"message": "..."}
// bodies are unwrapped; anything else is returned verbatim.
func extractMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "{") {
		return text
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return text
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return text
}
