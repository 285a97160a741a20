package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
	"github.com/tejashwikalptaru/beatviz/internal/testutil"
)

func TestBroadcastsFrames(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreHTTPGoroutines()...)

	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	defer bus.Close()

	b := New(logger.NewTestLogger(), bus, Config{Address: "127.0.0.1:0"})
	require.NoError(t, b.Start())
	require.NoError(t, b.Start())
	assert.True(t, bus.HasSubscribers(domain.EventFrameRendered))

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+b.Addr()+Path, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer conn.Close()
	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 5*time.Millisecond)

	bus.Publish(domain.NewFrameRenderedEvent(domain.ModeRings, false,
		domain.FrequencySnapshot{200, 180, 50}, 1500*time.Millisecond))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, Message{Mode: "rings", ElapsedMS: 1500, Bins: []int{200, 180, 50}}, msg)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.False(t, bus.HasSubscribers(domain.EventFrameRendered))
	assert.Zero(t, b.Clients())
	assert.ErrorIs(t, b.Start(), ErrClosed)
}

func TestClientDisconnect(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreHTTPGoroutines()...)

	bus := eventbus.NewSyncEventBus(nil)
	defer bus.Close()
	b := New(nil, bus, Config{Address: "127.0.0.1:0"})
	require.NoError(t, b.Start())
	defer b.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+b.Addr()+Path, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return b.Clients() == 0 }, time.Second, 5*time.Millisecond)

	// publishing with nobody connected is fine
	bus.Publish(domain.NewFrameRenderedEvent(domain.ModeBars, true, nil, 0))
}

func TestRateLimit(t *testing.T) {
	b := New(nil, eventbus.NewSyncEventBus(nil), Config{MaxRate: 1})
	for i := 0; i < 5; i++ {
		b.onFrame(domain.NewFrameRenderedEvent(domain.ModeBars, false, nil, 0))
	}
	assert.Len(t, b.frames, 1)

	// other events are ignored
	b.onFrame(domain.NewPlaybackEndedEvent())
	assert.Len(t, b.frames, 1)
}

func TestCloseBeforeStart(t *testing.T) {
	b := New(nil, eventbus.NewSyncEventBus(nil), Config{Address: "127.0.0.1:0"})
	assert.Empty(t, b.Addr())
	assert.NoError(t, b.Close())
}
