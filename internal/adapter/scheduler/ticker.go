// Package scheduler provides frame schedulers and timers: a ticker-driven
// scheduler for real displays and manual clocks for deterministic tests.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// DefaultFrameRate is used when a non-positive rate is configured.
const DefaultFrameRate = 60

// pending is one outstanding frame request.
type pending struct {
	id uint64
	cb ports.FrameCallback
}

// Ticker delivers frame callbacks from a single goroutine at a fixed rate,
// standing in for a display refresh signal. Each request runs at most once,
// on the next tick after it was made.
//
// Thread-safety: This implementation is thread-safe.
type Ticker struct {
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	next    *pending
	nextID  uint64
	stopped bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewTicker starts a scheduler ticking at fps frames per second.
func NewTicker(fps int, logger *slog.Logger) *Ticker {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Ticker{
		logger:   logger.With(slog.String("component", "frame_ticker")),
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

func (t *Ticker) run() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case now := <-ticker.C:
			t.mu.Lock()
			p := t.next
			t.next = nil
			t.mu.Unlock()
			if p != nil {
				p.cb(now)
			}
		}
	}
}

// ScheduleNextFrame queues cb for the next tick, replacing any earlier
// request that has not run yet.
func (t *Ticker) ScheduleNextFrame(cb ports.FrameCallback) ports.CancelFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return func() {}
	}
	t.nextID++
	id := t.nextID
	t.next = &pending{id: id, cb: cb}
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.next != nil && t.next.id == id {
			t.next = nil
		}
	}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Stop drops any pending request and ends the goroutine. Safe to call twice.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.next = nil
	t.mu.Unlock()

	close(t.stop)
	t.wg.Wait()
	t.logger.Debug("frame ticker stopped")
}

// RealTimer implements ports.Timer with time.AfterFunc.
type RealTimer struct{}

// AfterFunc runs f after d on its own goroutine.
func (RealTimer) AfterFunc(d time.Duration, f func()) ports.CancelFunc {
	timer := time.AfterFunc(d, f)
	return func() { timer.Stop() }
}

var (
	_ ports.Scheduler = (*Ticker)(nil)
	_ ports.Timer     = RealTimer{}
)
