package poller

import "github.com/tinytelemetry/statshaus/internal/model"

// EventKind identifies a scheduler state change.
type EventKind int

const (
	EventFetchStarted EventKind = iota
	EventSnapshot
	EventError
	EventErrorCleared
	EventPaused
	EventResumed
)

func (k EventKind) String() string {
	switch k {
	case EventFetchStarted:
		return "fetch_started"
	case EventSnapshot:
		return "snapshot"
	case EventError:
		return "error"
	case EventErrorCleared:
		return "error_cleared"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after every state change.
// Snapshot is set only for EventSnapshot.
type Event struct {
	Kind     EventKind
	State    model.PollState
	Snapshot *model.Snapshot
}
