package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/surface/record"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
	"github.com/tejashwikalptaru/beatviz/internal/render"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

const frameStep = 16 * time.Millisecond

// fakeContainer is a resizable container whose resize notifications are
// fired by the test.
type fakeContainer struct {
	mu       sync.Mutex
	w, h     float64
	ratio    float64
	handlers map[int]func()
	nextID   int
}

func newContainer(w, h, ratio float64) *fakeContainer {
	return &fakeContainer{w: w, h: h, ratio: ratio, handlers: make(map[int]func())}
}

func (c *fakeContainer) Bounds() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

func (c *fakeContainer) DevicePixelRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratio
}

func (c *fakeContainer) OnResize(handler func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// resize changes the bounds and notifies every listener.
func (c *fakeContainer) resize(w, h float64) {
	c.mu.Lock()
	c.w, c.h = w, h
	hs := make([]func(), 0, len(c.handlers))
	for _, h := range c.handlers {
		hs = append(hs, h)
	}
	c.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (c *fakeContainer) listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

type harness struct {
	bus       *eventbus.SyncEventBus
	store     *store.Store
	audioCtx  *mock.Context
	factory   *mock.Factory
	spectral  *SpectralAdapter
	timer     *scheduler.ManualTimer
	viewport  *ViewportManager
	registry  *render.Registry
	sched     *scheduler.Manual
	engine    *Engine
	bridge    *TransportBridge
	loader    *mock.Loader
	sources   *SourceService
	surface   *record.Surface
	container *fakeContainer
}

// newHarness wires the engine against mocks. The analyser has 64 bins so
// bars map one-to-one onto them.
func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.NewTestLogger()

	h := &harness{
		bus:       eventbus.NewSyncEventBus(log),
		audioCtx:  mock.NewContext(log),
		timer:     scheduler.NewManualTimer(),
		registry:  render.NewRegistry(render.DefaultConfig()),
		sched:     scheduler.NewManual(time.Unix(0, 0)),
		loader:    mock.NewLoader(3 * time.Minute),
		surface:   record.New(domain.Viewport{}),
		container: newContainer(400, 200, 1),
	}
	t.Cleanup(func() { _ = h.bus.Close() })

	h.factory = mock.NewFactory(h.audioCtx)
	h.store = store.New(log, h.bus, domain.ModeBars)

	var err error
	h.spectral, err = NewSpectralAdapter(log, h.store, h.bus, h.factory.New, SpectralConfig{FFTSize: 128, Smoothing: 0.8})
	require.NoError(t, err)

	h.viewport = NewViewportManager(log, h.store, h.timer, DefaultViewportConfig())
	h.engine = NewEngine(log, h.store, h.bus, h.spectral, h.viewport, h.registry, h.sched,
		EngineConfig{EnergyThreshold: DefaultEnergyThreshold})
	h.bridge = NewTransportBridge(log, h.store, h.spectral)
	h.sources = NewSourceService(log, h.store, h.loader, h.bridge, h.spectral)
	t.Cleanup(h.engine.Unmount)
	return h
}

func (h *harness) mount(t *testing.T) {
	t.Helper()
	require.NoError(t, h.engine.Mount(h.surface, h.container))
}

// frames collects FrameRendered events.
func (h *harness) frames() *[]domain.FrameRenderedEvent {
	var out []domain.FrameRenderedEvent
	h.bus.Subscribe(domain.EventFrameRendered, func(e domain.Event) {
		out = append(out, e.(domain.FrameRenderedEvent))
	})
	return &out
}

// playing loads a track and starts it; the analyser reports data.
func (h *harness) playing(t *testing.T, data []uint8) *mock.Source {
	t.Helper()
	require.NoError(t, h.sources.LoadFile("/music/song.mp3"))
	require.NoError(t, h.bridge.Play())
	analysers := h.audioCtx.Analysers()
	require.Len(t, analysers, 1)
	analysers[0].SetData(data)
	opened := h.loader.Opened()
	return opened[len(opened)-1]
}
