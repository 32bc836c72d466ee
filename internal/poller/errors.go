package poller

import (
	"errors"
	"time"

	"github.com/tinytelemetry/statshaus/internal/model"
	"github.com/tinytelemetry/statshaus/internal/statsapi"
)

// ErrorInfoFor classifies a fetch failure into a dismissible notice.
func ErrorInfoFor(err error, at time.Time) model.ErrorInfo {
	info := model.ErrorInfo{
		Kind:    model.ErrorTransport,
		Message: err.Error(),
		At:      at,
	}

	var malformed *statsapi.MalformedPayloadError
	switch {
	case errors.Is(err, statsapi.ErrConfigMissing):
		info.Kind = model.ErrorConfigMissing
	case errors.As(err, &malformed):
		info.Kind = model.ErrorMalformedPayload
	}
	return info
}
