// Package notify implements the media notification fan-out shared by the
// audio adapters.
package notify

import (
	"sync"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// Notifier keeps per-kind handler lists. Handlers run on the emitting
// goroutine, outside the lock.
type Notifier struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[domain.MediaEvent]map[uint64]func()
	order    map[domain.MediaEvent][]uint64
}

// On registers handler for kind and returns its teardown.
func (n *Notifier) On(kind domain.MediaEvent, handler func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handlers == nil {
		n.handlers = make(map[domain.MediaEvent]map[uint64]func())
		n.order = make(map[domain.MediaEvent][]uint64)
	}
	if n.handlers[kind] == nil {
		n.handlers[kind] = make(map[uint64]func())
	}
	n.nextID++
	id := n.nextID
	n.handlers[kind][id] = handler
	n.order[kind] = append(n.order[kind], id)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.handlers[kind], id)
		})
	}
}

// Emit calls every live handler for kind in registration order.
func (n *Notifier) Emit(kind domain.MediaEvent) {
	n.mu.Lock()
	ids := n.order[kind]
	live := ids[:0:0]
	calls := make([]func(), 0, len(ids))
	for _, id := range ids {
		if h, ok := n.handlers[kind][id]; ok {
			live = append(live, id)
			calls = append(calls, h)
		}
	}
	if n.order != nil {
		n.order[kind] = live
	}
	n.mu.Unlock()

	for _, h := range calls {
		h()
	}
}

// Count returns the number of live handlers across all kinds.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, hs := range n.handlers {
		total += len(hs)
	}
	return total
}

// Reset drops every handler.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = nil
	n.order = nil
}
