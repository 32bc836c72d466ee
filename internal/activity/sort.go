package activity

import (
	"cmp"
	"slices"
	"sync"

	"github.com/tinytelemetry/statshaus/internal/model"
)

// Apply returns a stably sorted copy of records. Records with equal keys
// keep their input order in both directions.
func Apply(records []model.ActivityRecord, state model.SortState) []model.ActivityRecord {
	out := append([]model.ActivityRecord(nil), records...)
	compare := compareBy(state.Field)
	if state.Direction == model.Descending {
		asc := compare
		compare = func(a, b model.ActivityRecord) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func compareBy(field model.SortField) func(a, b model.ActivityRecord) int {
	switch field {
	case model.SortByTimestamp:
		return func(a, b model.ActivityRecord) int { return cmp.Compare(a.Timestamp, b.Timestamp) }
	default:
		return func(a, b model.ActivityRecord) int { return cmp.Compare(a.Name, b.Name) }
	}
}

// NextSortState applies the click contract: clicking the active field flips
// the direction, clicking another field selects it with a descending order.
func NextSortState(cur model.SortState, requested model.SortField) model.SortState {
	if requested == cur.Field {
		return model.SortState{Field: cur.Field, Direction: cur.Direction.Flip()}
	}
	return model.SortState{Field: requested, Direction: model.DefaultSortDirection}
}

// SortEngine owns the sort state and the committed (displayed) sequence.
// A recomputed order is committed, and listeners notified, only when it
// differs element-for-element from what is already committed.
type SortEngine struct {
	mu        sync.RWMutex
	state     model.SortState
	records   []model.ActivityRecord
	committed []model.ActivityRecord
	hasCommit bool
	listeners []func([]model.ActivityRecord)
}

// NewSortEngine returns an engine ordered by name, descending.
func NewSortEngine() *SortEngine {
	return &SortEngine{
		state: model.SortState{Field: model.DefaultSortField, Direction: model.DefaultSortDirection},
	}
}

// OnCommit registers fn to receive every newly committed sequence.
// fn runs synchronously with the change and must not call back into the engine.
func (e *SortEngine) OnCommit(fn func([]model.ActivityRecord)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// State returns the active sort state.
func (e *SortEngine) State() model.SortState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Sorted returns a copy of the committed sequence.
func (e *SortEngine) Sorted() []model.ActivityRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.ActivityRecord(nil), e.committed...)
}

// SetRecords replaces the input records and recomputes. It reports whether
// a new sequence was committed.
func (e *SortEngine) SetRecords(records []model.ActivityRecord) bool {
	e.mu.Lock()
	e.records = append([]model.ActivityRecord(nil), records...)
	changed, committed, listeners := e.recomputeLocked()
	e.mu.Unlock()
	notify(changed, listeners, committed)
	return changed
}

// SetState replaces the sort state outright and recomputes.
func (e *SortEngine) SetState(state model.SortState) bool {
	e.mu.Lock()
	e.state = state
	changed, committed, listeners := e.recomputeLocked()
	e.mu.Unlock()
	notify(changed, listeners, committed)
	return changed
}

// OnSortClick applies the click contract for requested and recomputes.
func (e *SortEngine) OnSortClick(requested model.SortField) model.SortState {
	e.mu.Lock()
	e.state = NextSortState(e.state, requested)
	state := e.state
	changed, committed, listeners := e.recomputeLocked()
	e.mu.Unlock()
	notify(changed, listeners, committed)
	return state
}

// recomputeLocked re-sorts and commits when the order changed. The returned
// slice and listeners are copies safe to use after unlocking.
func (e *SortEngine) recomputeLocked() (bool, []model.ActivityRecord, []func([]model.ActivityRecord)) {
	sorted := Apply(e.records, e.state)
	if e.hasCommit && slices.Equal(sorted, e.committed) {
		return false, nil, nil
	}
	e.committed = sorted
	e.hasCommit = true
	out := append([]model.ActivityRecord(nil), sorted...)
	return true, out, slices.Clone(e.listeners)
}

func notify(changed bool, listeners []func([]model.ActivityRecord), committed []model.ActivityRecord) {
	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(committed)
	}
}
