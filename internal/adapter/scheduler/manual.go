package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Manual is a frame scheduler driven by the caller. Step runs the pending
// callback on the calling goroutine.
type Manual struct {
	mu     sync.Mutex
	next   *pending
	nextID uint64
	now    time.Time
	frames int
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// ScheduleNextFrame stores cb as the pending request.
func (m *Manual) ScheduleNextFrame(cb ports.FrameCallback) ports.CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.next = &pending{id: id, cb: cb}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.next != nil && m.next.id == id {
			m.next = nil
		}
	}
}

// Pending reports whether a frame is requested.
func (m *Manual) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next != nil
}

// Step advances the clock by dt and runs the pending callback, if any.
// It reports whether a callback ran.
func (m *Manual) Step(dt time.Duration) bool {
	m.mu.Lock()
	m.now = m.now.Add(dt)
	p, now := m.next, m.now
	m.next = nil
	if p != nil {
		m.frames++
	}
	m.mu.Unlock()

	if p == nil {
		return false
	}
	p.cb(now)
	return true
}

// Run steps n frames of dt each and returns how many callbacks ran.
func (m *Manual) Run(n int, dt time.Duration) int {
	ran := 0
	for i := 0; i < n; i++ {
		if m.Step(dt) {
			ran++
		}
	}
	return ran
}

// Frames returns how many callbacks have run.
func (m *Manual) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// ManualTimer is a ports.Timer whose clock only moves on Advance.
type ManualTimer struct {
	mu     sync.Mutex
	now    time.Duration
	nextID uint64
	timers map[uint64]*manualEntry
}

type manualEntry struct {
	id  uint64
	due time.Duration
	f   func()
}

// NewManualTimer creates a timer at time zero.
func NewManualTimer() *ManualTimer {
	return &ManualTimer{timers: make(map[uint64]*manualEntry)}
}

// AfterFunc registers f to run once the clock passes d from now.
func (m *ManualTimer) AfterFunc(d time.Duration, f func()) ports.CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.timers[id] = &manualEntry{id: id, due: m.now + d, f: f}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.timers, id)
	}
}

// Advance moves the clock and fires due timers in deadline order, on the
// calling goroutine.
func (m *ManualTimer) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualEntry
	for id, e := range m.timers {
		if e.due <= m.now {
			due = append(due, e)
			delete(m.timers, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].id < due[j].id
		}
		return due[i].due < due[j].due
	})
	for _, e := range due {
		e.f()
	}
}

// Active returns how many timers are waiting.
func (m *ManualTimer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

var (
	_ ports.Scheduler = (*Manual)(nil)
	_ ports.Timer     = (*ManualTimer)(nil)
)
