package model

import "time"

// ActivityRecord is one user's most recent activity as reported by the
// remote stats endpoint. Records are immutable once produced for a snapshot.
type ActivityRecord struct {
	Name      string `json:"name" yaml:"name"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // unix seconds
	Stream    string `json:"stream" yaml:"stream"`
}

// LastSeen returns the record timestamp as a time.Time.
func (r ActivityRecord) LastSeen() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// RawActivity is the validated [timestamp, stream] pair of the wire payload.
type RawActivity struct {
	Timestamp int64
	Stream    string
}

// Snapshot is one complete set of activity records. A new snapshot replaces
// the previous one wholesale; there is no incremental merge.
type Snapshot struct {
	Records   []ActivityRecord `json:"records" yaml:"records"`
	FetchedAt int64            `json:"fetched_at" yaml:"fetched_at"` // server "now", unix seconds
}

// Clone returns a copy whose record slice does not alias s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Records:   append([]ActivityRecord(nil), s.Records...),
		FetchedAt: s.FetchedAt,
	}
}

// SortField selects the record field used for ordering.
type SortField string

const (
	SortByName      SortField = "name"
	SortByTimestamp SortField = "timestamp"
)

// ParseSortField maps a user-supplied string to a SortField.
func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case SortByName, SortByTimestamp:
		return SortField(s), true
	}
	return "", false
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortState is the active ordering of the activity table.
type SortState struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// ErrorKind classifies a surfaced failure.
type ErrorKind string

const (
	ErrorConfigMissing    ErrorKind = "config_missing"
	ErrorTransport        ErrorKind = "transport"
	ErrorMalformedPayload ErrorKind = "malformed_payload"
)

// ErrorInfo is a dismissible error notice held by the scheduler.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// PollState is a read-only view of the scheduler's fetch-timing state.
// TicksRemaining is nil while polling is paused.
type PollState struct {
	TicksRemaining *int       `json:"ticks_remaining"`
	Threshold      int        `json:"threshold"`
	InFlight       bool       `json:"in_flight"`
	Err            *ErrorInfo `json:"error"`
}

// Paused reports whether tick-driven polling is suspended.
func (p PollState) Paused() bool {
	return p.TicksRemaining == nil
}
