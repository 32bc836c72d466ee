package poller

import (
	"errors"
	"sync"
	"time"
)

// Ticker emits heartbeats at an approximately fixed period. onTick calls
// never overlap: each runs to completion on the ticker goroutine before the
// next is considered.
type Ticker struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTicker returns a stopped ticker.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Start begins emitting onTick every period.
func (t *Ticker) Start(period time.Duration, onTick func()) error {
	if period <= 0 {
		return errors.New("poller: ticker period must be positive")
	}
	if onTick == nil {
		return errors.New("poller: ticker callback is nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return errors.New("poller: ticker already started")
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.run(period, onTick, t.stop, t.done)
	return nil
}

func (t *Ticker) run(period time.Duration, onTick func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tk := time.NewTicker(period)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			onTick()
		}
	}
}

// Stop ends emission and waits for an in-progress onTick to return.
// It is safe to call on a stopped ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
