// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
//
// The store publishes state changes on it, the render loop publishes rendered
// frames, and the presenter and broadcaster consume them without knowing who
// produced them.
//
// Thread-safety: Implementations must be thread-safe; media notifications
// publish from decoder goroutines while the loop publishes from its own.
//
// Example usage:
//
//	id := bus.Subscribe(domain.EventModeChanged, func(event domain.Event) {
//	    e := event.(domain.ModeChangedEvent)
//	    view.SetMode(e.Mode)
//	})
//	defer bus.Unsubscribe(id)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	// Handlers should return quickly; the render loop publishes every frame.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// Returns a SubscriptionID that can be used to unsubscribe later.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered handler.
	// Unknown or already removed IDs are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events regardless of type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether anyone listens for eventType.
	// The render loop uses it to skip building per-frame events.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and drops all subscriptions.
	Close() error
}
