// Package eventbus provides the in-process event bus.
package eventbus

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// ErrClosed is returned by Close on a bus that is already closed.
var ErrClosed = errors.New("event bus already closed")

// routes is an immutable routing table. Every change builds a new one, so
// Publish reads it without locking or allocating.
type routes struct {
	byType map[domain.EventType][]subscription
	all    []subscription
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

var emptyRoutes = &routes{byType: map[domain.EventType][]subscription{}}

// SyncEventBus delivers events on the publishing goroutine: typed
// subscribers first, in subscription order, then wildcard subscribers.
//
// Handlers run against the table as it was when Publish started, so a
// handler may subscribe or unsubscribe (itself included) freely.
type SyncEventBus struct {
	logger *slog.Logger
	table  atomic.Pointer[routes]

	// mu serialises writers.
	mu     sync.Mutex
	owner  map[domain.SubscriptionID]ownerKey
	nextID uint64
	closed bool
}

// ownerKey locates a subscription in the table.
type ownerKey struct {
	eventType domain.EventType
	wildcard  bool
}

// NewSyncEventBus creates a bus. A nil logger drops handler panics silently.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger != nil {
		logger = logger.With(slog.String("component", "eventbus"))
	}
	bus := &SyncEventBus{
		logger: logger,
		owner:  make(map[domain.SubscriptionID]ownerKey),
	}
	bus.table.Store(emptyRoutes)
	return bus
}

// Publish delivers event to its subscribers. Nil events and a closed bus are
// ignored. A panicking handler is logged and the rest still run.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}
	t := bus.table.Load()
	for _, sub := range t.byType[event.Type()] {
		bus.deliver(sub.handler, event)
	}
	for _, sub := range t.all {
		bus.deliver(sub.handler, event)
	}
}

func (bus *SyncEventBus) deliver(handler domain.EventHandler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && bus.logger != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())))
		}
	}()
	handler(event)
}

// Subscribe registers handler for one event type. On a closed bus nothing is
// registered and the returned ID is empty.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(ownerKey{eventType: eventType}, handler)
}

// SubscribeAll registers handler for every event type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(ownerKey{wildcard: true}, handler)
}

func (bus *SyncEventBus) add(key ownerKey, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.closed {
		return ""
	}

	bus.nextID++
	prefix := "sub-"
	if key.wildcard {
		prefix = "sub-all-"
	}
	id := domain.SubscriptionID(prefix + strconv.FormatUint(bus.nextID, 10))
	sub := subscription{id: id, handler: handler}

	next := bus.table.Load().clone()
	if key.wildcard {
		next.all = append(next.all, sub)
	} else {
		next.byType[key.eventType] = append(next.byType[key.eventType], sub)
	}
	bus.owner[id] = key
	bus.table.Store(next)
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	key, ok := bus.owner[id]
	if !ok {
		return
	}
	delete(bus.owner, id)

	match := func(s subscription) bool { return s.id == id }
	next := bus.table.Load().clone()
	if key.wildcard {
		next.all = slices.DeleteFunc(next.all, match)
	} else {
		subs := slices.DeleteFunc(next.byType[key.eventType], match)
		if len(subs) == 0 {
			delete(next.byType, key.eventType)
		} else {
			next.byType[key.eventType] = subs
		}
	}
	bus.table.Store(next)
}

// HasSubscribers reports whether an event of eventType would reach anyone.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	t := bus.table.Load()
	return len(t.byType[eventType]) > 0 || len(t.all) > 0
}

// SubscriberCount returns the number of live subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.owner)
}

// Close drops every subscription. Later publishes are no-ops and later
// subscriptions are refused.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	clear(bus.owner)
	bus.table.Store(emptyRoutes)
	return nil
}

// clone copies the slices it may later modify; the original stays untouched
// for publishers still iterating it.
func (r *routes) clone() *routes {
	next := &routes{
		byType: make(map[domain.EventType][]subscription, len(r.byType)+1),
		all:    slices.Clone(r.all),
	}
	for k, v := range r.byType {
		next.byType[k] = slices.Clone(v)
	}
	return next
}

var _ ports.EventBus = (*SyncEventBus)(nil)
