package poller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tinytelemetry/statshaus/internal/model"
)

const opQueueSize = 16

// ServiceConfig controls a Service.
type ServiceConfig struct {
	TickInterval    time.Duration
	FetchThreshold  int
	ResumeThreshold int
	// InitialFetch starts one fetch as soon as the service starts.
	InitialFetch bool
}

// Service runs a Scheduler on its own event loop. Ticks, user commands and
// fetch completions are all serialized through that loop; the fetch itself
// is the only work done off-loop.
type Service struct {
	cfg     ServiceConfig
	sched   *Scheduler
	fetcher model.SnapshotFetcher
	ticker  *Ticker

	ops chan func()

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService wires a scheduler to fetcher.
func NewService(fetcher model.SnapshotFetcher, cfg ServiceConfig) *Service {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = model.DefaultTickInterval
	}
	if cfg.FetchThreshold < 0 {
		cfg.FetchThreshold = model.DefaultFetchThreshold
	}
	if cfg.ResumeThreshold < 0 {
		cfg.ResumeThreshold = model.DefaultResumeThreshold
	}
	return &Service{
		cfg:     cfg,
		sched:   NewScheduler(cfg.FetchThreshold),
		fetcher: fetcher,
		ticker:  NewTicker(),
		ops:     make(chan func(), opQueueSize),
	}
}

// Subscribe registers fn for scheduler events. Listeners run on the service
// loop and must not call back into the Service synchronously. Register
// listeners before Start.
func (s *Service) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Subscribe(fn)
}

// Start launches the event loop and the ticker.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("poller: service already running")
	}
	if s.fetcher == nil {
		return errors.New("poller: no fetcher configured")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.wg.Add(1)
	go s.loop(s.ctx)

	if err := s.ticker.Start(s.cfg.TickInterval, s.onTick); err != nil {
		s.cancel()
		s.running = false
		s.wg.Wait()
		return err
	}

	if s.cfg.InitialFetch {
		s.ops <- func() {
			if s.sched.ManualRefresh() {
				s.launchFetch()
			}
		}
	}

	log.Printf("poller: started (tick %s, threshold %d)", s.cfg.TickInterval, s.cfg.FetchThreshold)
	return nil
}

// Stop halts the ticker and the loop. Any in-flight request is cancelled.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	s.ticker.Stop()
	cancel()
	s.wg.Wait()
	log.Printf("poller: stopped")
}

// Pause suspends tick-driven fetching.
func (s *Service) Pause() bool {
	return s.do(func() { s.sched.Pause() })
}

// Resume fetches immediately and restarts the countdown with the configured
// resume threshold. It reports whether a fetch attempt started; the attempt
// is begun before Resume returns.
func (s *Service) Resume() bool {
	var started bool
	s.do(func() {
		started = s.sched.Resume(s.cfg.ResumeThreshold)
		if started {
			s.launchFetch()
		}
	})
	return started
}

// Refresh starts a fetch unless one is in flight or an error is present.
func (s *Service) Refresh() bool {
	var started bool
	s.do(func() {
		started = s.sched.ManualRefresh()
		if started {
			s.launchFetch()
		}
	})
	return started
}

// ClearError dismisses the current error notice.
func (s *Service) ClearError() bool {
	return s.do(func() { s.sched.ClearError() })
}

// State returns the current poll state.
func (s *Service) State() model.PollState {
	var st model.PollState
	if !s.do(func() { st = s.sched.State() }) {
		return s.sched.State()
	}
	return st
}

// Snapshot returns the most recent snapshot, if any.
func (s *Service) Snapshot() (model.Snapshot, bool) {
	var (
		snap model.Snapshot
		ok   bool
	)
	s.do(func() { snap, ok = s.sched.Snapshot() })
	return snap, ok
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-s.ops:
			op()
		}
	}
}

// onTick runs on the ticker goroutine. A tick that cannot be queued is
// dropped rather than delaying the ticker.
func (s *Service) onTick() {
	select {
	case s.ops <- s.tick:
	default:
	}
}

func (s *Service) tick() {
	if s.sched.Tick() {
		s.launchFetch()
	}
}

// launchFetch must run on the loop, right after the scheduler began an attempt.
func (s *Service) launchFetch() {
	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		snap, err := s.fetcher.FetchSnapshot(ctx)
		if err != nil && ctx.Err() == nil {
			log.Printf("poller: fetch failed: %v", err)
		}
		s.post(func() { s.sched.Complete(snap, err) })
	}()
}

// post queues op without waiting for it to run.
func (s *Service) post(op func()) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	select {
	case s.ops <- op:
	case <-ctx.Done():
	}
}

// do runs op on the loop and waits for it. It reports false when the
// service is not running.
func (s *Service) do(op func()) bool {
	s.mu.Lock()
	running, ctx := s.running, s.ctx
	s.mu.Unlock()
	if !running {
		return false
	}

	done := make(chan struct{})
	select {
	case s.ops <- func() { op(); close(done) }:
	case <-ctx.Done():
		return false
	}
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
