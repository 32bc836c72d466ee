package statsapi

import (
	"bytes"
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/tinytelemetry/statshaus/internal/model"
)

// Payload is a decoded and validated response body.
//
// Wire shape:
//
//	{
//	  "user2lastactivity": { "<name>": [<unix seconds>, "<stream>"], ... },
//	  "now": <unix seconds>
//	}
type Payload struct {
	Activity map[string]model.RawActivity
	Now      int64
}

type wirePayload struct {
	UserLastActivity map[string]wireActivity `json:"user2lastactivity"`
	Now              *float64                `json:"now"`
}

type wireActivity model.RawActivity

// UnmarshalJSON accepts exactly [number, string].
func (a *wireActivity) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("expected [timestamp, stream]: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("expected [timestamp, stream], got %d elements", len(parts))
	}
	if isNull(parts[0]) || isNull(parts[1]) {
		return fmt.Errorf("expected [timestamp, stream], got null element")
	}

	var ts float64
	if err := json.Unmarshal(parts[0], &ts); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	var stream string
	if err := json.Unmarshal(parts[1], &stream); err != nil {
		return fmt.Errorf("stream: %w", err)
	}

	secs, err := unixSeconds(ts)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	a.Timestamp = secs
	a.Stream = stream
	return nil
}

// unixSeconds truncates ts to whole seconds, rejecting values outside int64.
func unixSeconds(ts float64) (int64, error) {
	if math.IsNaN(ts) || ts < math.MinInt64 || ts >= math.MaxInt64 {
		return 0, fmt.Errorf("%g out of range", ts)
	}
	return int64(ts), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodePayload validates body against the wire schema.
func decodePayload(body []byte) (Payload, error) {
	var wp wirePayload
	if err := json.Unmarshal(body, &wp); err != nil {
		return Payload{}, &MalformedPayloadError{Reason: err.Error(), Err: err}
	}
	if wp.UserLastActivity == nil {
		return Payload{}, &MalformedPayloadError{Reason: `missing "user2lastactivity"`}
	}
	if wp.Now == nil {
		return Payload{}, &MalformedPayloadError{Reason: `missing "now"`}
	}

	activity := make(map[string]model.RawActivity, len(wp.UserLastActivity))
	for name, a := range wp.UserLastActivity {
		activity[name] = model.RawActivity(a)
	}
	now, err := unixSeconds(*wp.Now)
	if err != nil {
		return Payload{}, &MalformedPayloadError{Reason: fmt.Sprintf(`"now": %v`, err), Err: err}
	}
	return Payload{Activity: activity, Now: now}, nil
}
