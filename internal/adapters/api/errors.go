package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors matched with errors.Is against *Error.
var (
	ErrUnauthorized      = errors.New("api: unauthorized")
	ErrNotFound          = errors.New("api: not found")
	ErrMalformedResponse = errors.New("api: malformed response body")
)

// Error is a non-success HTTP response from the activities API.
// Message holds the server's "error" field, or "message" for endpoints that send it.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) and errors.Is(err, ErrNotFound) match by status.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// TransportError is a failure to reach the API at all (DNS, refused, timeout).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the server-provided message carried by err, or "".
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Body fields carrying the server message. Only activity deletion answers with "message".
var (
	errorKeys   = []string{"error"}
	messageKeys = []string{"error", "message"}
)

// newError reads the first non-blank string among keys from a JSON error body.
func newError(status int, body []byte, keys []string) *Error {
	var payload map[string]any
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, k := range keys {
			if s, ok := payload[k].(string); ok && strings.TrimSpace(s) != "" {
				msg = s
				break
			}
		}
	}
	return &Error{Status: status, Message: strings.TrimSpace(msg)}
}
