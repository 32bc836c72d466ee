package statsapi

import (
	"strconv"
	"strings"
)

// TransportError reports a failed fetch: a network failure or a non-2xx
// response. Any of StatusCode, StatusText and Body may be empty.
type TransportError struct {
	StatusCode int
	StatusText string
	Body       string
	Err        error
}

// Diagnostic joins whichever of status code, status text and body are
// present with " / ". It is empty when none are present.
func (e *TransportError) Diagnostic() string {
	parts := make([]string, 0, 3)
	if e.StatusCode != 0 {
		parts = append(parts, strconv.Itoa(e.StatusCode))
	}
	if e.StatusText != "" {
		parts = append(parts, e.StatusText)
	}
	if e.Body != "" {
		parts = append(parts, e.Body)
	}
	return strings.Join(parts, " / ")
}

func (e *TransportError) Error() string {
	if d := e.Diagnostic(); d != "" {
		return "statsapi: fetch failed: " + d
	}
	if e.Err != nil {
		return "statsapi: fetch failed: " + e.Err.Error()
	}
	return "statsapi: fetch failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedPayloadError reports a 2xx response whose body does not match
// the expected schema.
type MalformedPayloadError struct {
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	return "statsapi: malformed payload: " + e.Reason
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }
