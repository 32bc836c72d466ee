// Package poller decides when the activity snapshot is fetched.
//
// Scheduler is a plain state machine driven by one event queue (the TUI's
// Update loop or Service's loop goroutine). It is not safe for concurrent use.
package poller

import (
	"time"

	"github.com/tinytelemetry/statshaus/internal/model"
)

// Phase is the scheduler's externally visible state.
type Phase int

const (
	PhaseCounting Phase = iota
	PhasePaused
	PhaseFetching
	PhaseErrorFrozen
)

func (p Phase) String() string {
	switch p {
	case PhasePaused:
		return "paused"
	case PhaseFetching:
		return "fetching"
	case PhaseErrorFrozen:
		return "error"
	default:
		return "counting"
	}
}

// Scheduler owns fetch timing: the tick countdown, pause, the single-flight
// flag and the error freeze. Callers run the fetch themselves whenever an
// operation reports that an attempt was started, then hand the outcome to
// Complete.
type Scheduler struct {
	ticks     *int // nil while paused
	threshold int
	inFlight  bool
	err       *model.ErrorInfo
	snapshot  *model.Snapshot

	listeners []func(Event)
	now       func() time.Time
}

// NewScheduler returns a scheduler counting from zero toward threshold.
func NewScheduler(threshold int) *Scheduler {
	if threshold < 0 {
		threshold = model.DefaultFetchThreshold
	}
	zero := 0
	return &Scheduler{
		ticks:     &zero,
		threshold: threshold,
		now:       time.Now,
	}
}

// Subscribe registers fn for every state change. Listeners run synchronously
// on the caller's goroutine.
func (s *Scheduler) Subscribe(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

// Phase reports the current state. An in-flight fetch takes precedence,
// then an error, then pause.
func (s *Scheduler) Phase() Phase {
	switch {
	case s.inFlight:
		return PhaseFetching
	case s.err != nil:
		return PhaseErrorFrozen
	case s.ticks == nil:
		return PhasePaused
	default:
		return PhaseCounting
	}
}

// State returns a copy of the poll state.
func (s *Scheduler) State() model.PollState {
	st := model.PollState{
		Threshold: s.threshold,
		InFlight:  s.inFlight,
	}
	if s.ticks != nil {
		n := *s.ticks
		st.TicksRemaining = &n
	}
	if s.err != nil {
		e := *s.err
		st.Err = &e
	}
	return st
}

// Snapshot returns the last successfully fetched snapshot.
func (s *Scheduler) Snapshot() (model.Snapshot, bool) {
	if s.snapshot == nil {
		return model.Snapshot{}, false
	}
	return s.snapshot.Clone(), true
}

// Tick advances the countdown by one heartbeat. It reports whether a fetch
// attempt was started. Ticks are ignored while paused, fetching or frozen.
func (s *Scheduler) Tick() bool {
	if s.ticks == nil || s.inFlight || s.err != nil {
		return false
	}
	if *s.ticks >= s.threshold {
		*s.ticks = 0
		return s.begin()
	}
	*s.ticks++
	return false
}

// Pause stops tick-driven fetching. An in-flight fetch is not cancelled.
func (s *Scheduler) Pause() {
	s.ticks = nil
	s.emit(EventPaused)
}

// Resume starts an immediate fetch attempt and restarts the countdown from
// zero with the given threshold. It reports whether the attempt started.
func (s *Scheduler) Resume(threshold int) bool {
	started := s.begin()
	if threshold < 0 {
		threshold = model.DefaultResumeThreshold
	}
	zero := 0
	s.ticks = &zero
	s.threshold = threshold
	s.emit(EventResumed)
	return started
}

// ManualRefresh starts a fetch attempt without touching the countdown.
// It is a no-op while a fetch is already in flight.
func (s *Scheduler) ManualRefresh() bool {
	return s.begin()
}

// ClearError dismisses the current error. Counting restarts from zero
// unless polling was paused meanwhile.
func (s *Scheduler) ClearError() {
	if s.err == nil {
		return
	}
	s.err = nil
	if s.ticks != nil {
		*s.ticks = 0
	}
	s.emit(EventErrorCleared)
}

// Complete records the outcome of the attempt started by Tick, Resume or
// ManualRefresh. A completion without an attempt in flight is ignored.
func (s *Scheduler) Complete(snap model.Snapshot, err error) bool {
	if !s.inFlight {
		return false
	}
	s.inFlight = false
	if err != nil {
		info := ErrorInfoFor(err, s.now())
		s.err = &info
		s.emit(EventError)
		return true
	}
	snap = snap.Clone()
	s.snapshot = &snap
	s.err = nil
	s.emit(EventSnapshot)
	return true
}

// begin is the single entry point for fetch attempts. Every path that sets
// inFlight either hands the attempt to the caller or clears it again before
// returning.
func (s *Scheduler) begin() bool {
	if s.inFlight {
		return false
	}
	s.inFlight = true
	if s.err != nil {
		s.inFlight = false
		return false
	}
	s.emit(EventFetchStarted)
	return true
}

func (s *Scheduler) emit(kind EventKind) {
	if len(s.listeners) == 0 {
		return
	}
	ev := Event{Kind: kind, State: s.State()}
	if kind == EventSnapshot && s.snapshot != nil {
		snap := s.snapshot.Clone()
		ev.Snapshot = &snap
	}
	for _, fn := range s.listeners {
		fn(ev)
	}
}
