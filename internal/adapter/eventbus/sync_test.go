package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
)

func newTestBus(t *testing.T) *SyncEventBus {
	t.Helper()
	bus := NewSyncEventBus(logger.NewTestLogger())
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestNewSyncEventBus(t *testing.T) {
	bus := NewSyncEventBus(nil)
	require.NotNil(t, bus)
	assert.Equal(t, 0, bus.SubscriberCount())
	assert.False(t, bus.closed)
}

func TestPublishSubscribe(t *testing.T) {
	bus := newTestBus(t)

	var received []domain.Event
	id := bus.Subscribe(domain.EventModeChanged, func(e domain.Event) {
		received = append(received, e)
	})
	require.NotEmpty(t, id)

	bus.Publish(domain.NewModeChangedEvent(domain.ModeGalaxy))

	require.Len(t, received, 1)
	assert.Equal(t, domain.EventModeChanged, received[0].Type())
	assert.Equal(t, domain.ModeGalaxy, received[0].(domain.ModeChangedEvent).Mode)
	assert.False(t, received[0].Timestamp().IsZero())
}

func TestDeliveryOrderSurvivesUnsubscribe(t *testing.T) {
	bus := newTestBus(t)

	var order []int
	ids := make([]domain.SubscriptionID, 4)
	for i := range ids {
		n := i
		ids[i] = bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {
			order = append(order, n)
		})
	}
	bus.Unsubscribe(ids[1])

	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	assert.Equal(t, []int{0, 2, 3}, order)
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus(t)

	var calls int32
	id := bus.Subscribe(domain.EventPlaybackChanged, func(domain.Event) {
		atomic.AddInt32(&calls, 1)
	})
	bus.Publish(domain.NewPlaybackChangedEvent(true))
	bus.Unsubscribe(id)
	bus.Publish(domain.NewPlaybackChangedEvent(false))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, bus.HasSubscribers(domain.EventPlaybackChanged))

	// unknown and empty IDs are ignored
	bus.Unsubscribe("sub-999")
	bus.Unsubscribe("")
}

func TestSubscribeAll(t *testing.T) {
	bus := newTestBus(t)

	var types []domain.EventType
	id := bus.SubscribeAll(func(e domain.Event) { types = append(types, e.Type()) })

	bus.Publish(domain.NewModeChangedEvent(domain.ModeBars))
	bus.Publish(domain.NewFullscreenToggledEvent(true))
	bus.Publish(domain.NewPlaybackEndedEvent())

	assert.Equal(t, []domain.EventType{
		domain.EventModeChanged, domain.EventFullscreenToggled, domain.EventPlaybackEnded,
	}, types)
	assert.True(t, bus.HasSubscribers(domain.EventFrameRendered))

	bus.Unsubscribe(id)
	assert.False(t, bus.HasSubscribers(domain.EventFrameRendered))
}

func TestHandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := newTestBus(t)

	var reached bool
	bus.Subscribe(domain.EventPlaybackEnded, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventPlaybackEnded, func(domain.Event) { reached = true })

	assert.NotPanics(t, func() { bus.Publish(domain.NewPlaybackEndedEvent()) })
	assert.True(t, reached)
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := newTestBus(t)

	var calls int
	var id domain.SubscriptionID
	id = bus.Subscribe(domain.EventModeChanged, func(domain.Event) {
		calls++
		bus.Unsubscribe(id)
	})

	bus.Publish(domain.NewModeChangedEvent(domain.ModeDNA))
	bus.Publish(domain.NewModeChangedEvent(domain.ModeBlob))
	assert.Equal(t, 1, calls)
}

func TestClose(t *testing.T) {
	bus := NewSyncEventBus(nil)

	var calls int
	bus.Subscribe(domain.EventModeChanged, func(domain.Event) { calls++ })

	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Close(), ErrClosed)
	assert.Equal(t, 0, bus.SubscriberCount())

	bus.Publish(domain.NewModeChangedEvent(domain.ModeBars))
	assert.Zero(t, calls)
	assert.Empty(t, bus.Subscribe(domain.EventModeChanged, func(domain.Event) {}))
}

func TestNilEventAndHandler(t *testing.T) {
	bus := newTestBus(t)
	assert.NotPanics(t, func() { bus.Publish(nil) })
	assert.Panics(t, func() { bus.Subscribe(domain.EventModeChanged, nil) })
	assert.Panics(t, func() { bus.SubscribeAll(nil) })
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := newTestBus(t)

	var delivered int64
	bus.Subscribe(domain.EventPlaybackTimeUpdate, func(domain.Event) {
		atomic.AddInt64(&delivered, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(domain.NewPlaybackTimeUpdateEvent(0, 0))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {})
				bus.Unsubscribe(id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), atomic.LoadInt64(&delivered))
	assert.Equal(t, 1, bus.SubscriberCount())
}

func TestSubscribeDuringPublishWaitsForNextEvent(t *testing.T) {
	bus := newTestBus(t)

	var late int
	bus.Subscribe(domain.EventFrameRendered, func(domain.Event) {
		if bus.SubscriberCount() == 1 {
			bus.Subscribe(domain.EventFrameRendered, func(domain.Event) { late++ })
		}
	})

	bus.Publish(domain.NewFrameRenderedEvent(domain.ModeBars, false, nil, 0))
	assert.Zero(t, late)

	bus.Publish(domain.NewFrameRenderedEvent(domain.ModeBars, false, nil, 0))
	assert.Equal(t, 1, late)
}
