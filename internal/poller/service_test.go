package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tinytelemetry/statshaus/internal/model"
)

type fetchResult struct {
	snap model.Snapshot
	err  error
}

// gatedFetcher blocks each fetch until a result is released.
type gatedFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	results chan fetchResult
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		started: make(chan struct{}, 64),
		results: make(chan fetchResult),
	}
}

func (f *gatedFetcher) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	select {
	case r := <-f.results:
		return r.snap, r.err
	case <-ctx.Done():
		return model.Snapshot{}, ctx.Err()
	}
}

func (f *gatedFetcher) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch to start")
	}
}

func (f *gatedFetcher) release(t *testing.T, r fetchResult) {
	t.Helper()
	select {
	case f.results <- r:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out releasing fetch")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startService(t *testing.T, f model.SnapshotFetcher, cfg ServiceConfig) *Service {
	t.Helper()
	svc := NewService(f, cfg)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_ResumeFetchesImmediately(t *testing.T) {
	f := newGatedFetcher()
	svc := startService(t, f, ServiceConfig{TickInterval: time.Hour})

	svc.Pause()
	if !svc.State().Paused() {
		t.Fatal("expected paused")
	}

	if !svc.Resume() {
		t.Fatal("resume did not start a fetch")
	}
	if !svc.State().InFlight {
		t.Fatal("expected in-flight as soon as Resume returns")
	}
	f.waitStarted(t)
	f.release(t, fetchResult{snap: testSnapshot})

	waitFor(t, "snapshot", func() bool {
		_, ok := svc.Snapshot()
		return ok
	})
	if st := svc.State(); st.Threshold != model.DefaultResumeThreshold || st.Paused() {
		t.Fatalf("state after resume = %+v", st)
	}
}

func TestService_SingleFlightUnderFastTicks(t *testing.T) {
	f := newGatedFetcher()
	svc := startService(t, f, ServiceConfig{TickInterval: time.Millisecond, FetchThreshold: 1})

	f.waitStarted(t)
	time.Sleep(50 * time.Millisecond)
	if got := f.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d while first is in flight, want 1", got)
	}
	if svc.Refresh() {
		t.Fatal("manual refresh started a second fetch")
	}

	f.release(t, fetchResult{snap: testSnapshot})
	waitFor(t, "in-flight cleared", func() bool { return !svc.State().InFlight || f.calls.Load() > 1 })
}

func TestService_ErrorFreezesUntilCleared(t *testing.T) {
	f := newGatedFetcher()
	svc := startService(t, f, ServiceConfig{TickInterval: time.Millisecond, FetchThreshold: 1})

	f.waitStarted(t)
	f.release(t, fetchResult{err: errors.New("boom")})
	waitFor(t, "error", func() bool { return svc.State().Err != nil })

	time.Sleep(30 * time.Millisecond)
	if got := f.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d while frozen, want 1", got)
	}
	if svc.Refresh() {
		t.Fatal("refresh fetched while frozen")
	}
	if svc.State().InFlight {
		t.Fatal("skipped refresh left in-flight set")
	}

	svc.ClearError()
	f.waitStarted(t)
	f.release(t, fetchResult{snap: testSnapshot})
	waitFor(t, "snapshot after clear", func() bool {
		_, ok := svc.Snapshot()
		return ok
	})
}

func TestService_PauseStopsTicks(t *testing.T) {
	f := newGatedFetcher()
	svc := startService(t, f, ServiceConfig{TickInterval: 2 * time.Millisecond, FetchThreshold: 3})
	svc.Pause()

	time.Sleep(30 * time.Millisecond)
	if got := f.calls.Load(); got != 0 {
		t.Fatalf("fetch calls = %d while paused, want 0", got)
	}
}

func TestService_InitialFetchAndSubscribe(t *testing.T) {
	f := newGatedFetcher()
	svc := NewService(f, ServiceConfig{TickInterval: time.Hour, InitialFetch: true})

	var mu sync.Mutex
	var got []EventKind
	svc.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e.Kind)
		mu.Unlock()
	})
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(svc.Stop)

	f.waitStarted(t)
	f.release(t, fetchResult{snap: testSnapshot})

	waitFor(t, "snapshot event", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})
	mu.Lock()
	defer mu.Unlock()
	if got[0] != EventFetchStarted || got[1] != EventSnapshot {
		t.Fatalf("events = %v", got)
	}
}

func TestService_CommandsFailWhenStopped(t *testing.T) {
	svc := NewService(newGatedFetcher(), ServiceConfig{})
	if svc.Pause() {
		t.Fatal("pause succeeded on a service that was never started")
	}
	if svc.Resume() {
		t.Fatal("resume succeeded on a service that was never started")
	}
}

func TestService_StopCancelsInFlight(t *testing.T) {
	f := newGatedFetcher()
	svc := NewService(f, ServiceConfig{TickInterval: time.Hour, InitialFetch: true})
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.waitStarted(t)

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on in-flight fetch")
	}
}

func TestService_StartTwice(t *testing.T) {
	svc := startService(t, newGatedFetcher(), ServiceConfig{TickInterval: time.Hour})
	if err := svc.Start(); err == nil {
		t.Fatal("expected error starting a running service")
	}
}

func TestNewService_ThresholdDefaults(t *testing.T) {
	t.Parallel()

	zero := NewService(newGatedFetcher(), ServiceConfig{TickInterval: time.Second})
	if got := zero.sched.State().Threshold; got != 0 {
		t.Fatalf("zero threshold became %d", got)
	}
	if zero.cfg.ResumeThreshold != 0 {
		t.Fatalf("zero resume threshold became %d", zero.cfg.ResumeThreshold)
	}

	neg := NewService(newGatedFetcher(), ServiceConfig{FetchThreshold: -1, ResumeThreshold: -1})
	if got := neg.sched.State().Threshold; got != model.DefaultFetchThreshold {
		t.Fatalf("threshold = %d, want %d", got, model.DefaultFetchThreshold)
	}
	if neg.cfg.ResumeThreshold != model.DefaultResumeThreshold {
		t.Fatalf("resume threshold = %d, want %d", neg.cfg.ResumeThreshold, model.DefaultResumeThreshold)
	}
}

func TestZeroThresholdFetchesEveryTick(t *testing.T) {
	f := newGatedFetcher()
	svc := startService(t, f, ServiceConfig{TickInterval: time.Millisecond})

	for i := 0; i < 3; i++ {
		f.waitStarted(t)
		f.release(t, fetchResult{snap: model.Snapshot{FetchedAt: int64(i + 1)}})
	}
	waitFor(t, "third snapshot", func() bool {
		snap, ok := svc.Snapshot()
		return ok && snap.FetchedAt >= 3
	})
}
