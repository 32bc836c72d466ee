package statsapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_Diagnostic(t *testing.T) {
	tests := []struct {
		name string
		err  TransportError
		want string
	}{
		{"code only", TransportError{StatusCode: 503}, "503"},
		{"code and text", TransportError{StatusCode: 404, StatusText: "Not Found"}, "404 / Not Found"},
		{"all parts", TransportError{StatusCode: 500, StatusText: "Internal Server Error", Body: "boom"}, "500 / Internal Server Error / boom"},
		{"text and body", TransportError{StatusText: "Bad", Body: "body"}, "Bad / body"},
		{"body only", TransportError{Body: "body"}, "body"},
		{"nothing", TransportError{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Diagnostic())
		})
	}
}

func TestTransportError_StillSignalsWithoutDiagnostic(t *testing.T) {
	err := error(&TransportError{})
	assert.Equal(t, "statsapi: fetch failed", err.Error())

	cause := errors.New("connection refused")
	err = &TransportError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
