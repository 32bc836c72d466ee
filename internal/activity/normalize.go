// Package activity turns raw last-activity payloads into table records and
// keeps them ordered for display.
package activity

import (
	"maps"
	"slices"

	"github.com/tinytelemetry/statshaus/internal/model"
)

// Normalize converts the per-user activity mapping into one record per key.
// Callers must not rely on the output order; sort with Apply.
func Normalize(raw map[string]model.RawActivity) []model.ActivityRecord {
	records := make([]model.ActivityRecord, 0, len(raw))
	// Lexical key order keeps equal-key ties reproducible between fetches.
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		a := raw[name]
		records = append(records, model.ActivityRecord{
			Name:      name,
			Timestamp: a.Timestamp,
			Stream:    a.Stream,
		})
	}
	return records
}

// StreamCount is the number of users whose last activity was on Stream.
type StreamCount struct {
	Stream string
	Count  int
}

// CountByStream groups records by stream, most populated first, ties by name.
func CountByStream(records []model.ActivityRecord) []StreamCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Stream]++
	}
	out := make([]StreamCount, 0, len(counts))
	for stream, n := range counts {
		out = append(out, StreamCount{Stream: stream, Count: n})
	}
	slices.SortFunc(out, func(a, b StreamCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Stream < b.Stream {
			return -1
		}
		if a.Stream > b.Stream {
			return 1
		}
		return 0
	})
	return out
}
