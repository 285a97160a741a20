package service

import (
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/render"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

// DefaultEnergyThreshold is the bin magnitude a snapshot must exceed somewhere
// to count as audible.
const DefaultEnergyThreshold = 4

// trail is painted over the previous frame instead of clearing it, leaving
// motion trails.
var trail = color.NRGBA{R: 4, G: 4, B: 12, A: 64}

// EngineConfig tunes the render loop.
type EngineConfig struct {
	EnergyThreshold uint8
}

// Engine is the render loop. Each tick applies a pending resize, samples the
// spectrum, draws either the selected mode or the idle animation, advances
// every simulation, presents, and asks the scheduler for the next frame.
// Ticks never overlap: the next one is only requested at the end of the
// current one.
type Engine struct {
	logger    *slog.Logger
	store     *store.Store
	bus       ports.EventBus
	spectral  *SpectralAdapter
	viewport  *ViewportManager
	registry  *render.Registry
	scheduler ports.Scheduler
	cfg       EngineConfig

	mu          sync.Mutex
	mounted     bool
	surface     ports.Surface
	cancelFrame ports.CancelFunc
	unsubResize func()
	start, last time.Time
	frames      uint64
}

// NewEngine wires a render loop. Nothing runs until Mount.
func NewEngine(
	logger *slog.Logger,
	st *store.Store,
	bus ports.EventBus,
	spectral *SpectralAdapter,
	viewport *ViewportManager,
	registry *render.Registry,
	scheduler ports.Scheduler,
	cfg EngineConfig,
) *Engine {
	return &Engine{
		logger:    componentLogger(logger, "engine"),
		store:     st,
		bus:       bus,
		spectral:  spectral,
		viewport:  viewport,
		registry:  registry,
		scheduler: scheduler,
		cfg:       cfg,
	}
}

// Mount starts the loop on surface, sized to container. A nil container
// leaves sizing to explicit viewport updates.
func (e *Engine) Mount(surface ports.Surface, container ports.Container) error {
	if surface == nil {
		return domain.ErrRenderSurfaceMissing
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mounted {
		return domain.ErrAlreadyInitialized
	}

	e.mounted = true
	e.surface = surface
	e.start, e.last = time.Time{}, time.Time{}

	// a new surface starts unsized
	e.viewport.Reset()
	if container != nil {
		e.viewport.SetPending(e.viewport.Measure(container))
		e.unsubResize = container.OnResize(func() {
			e.viewport.RequestResize(container)
		})
	}
	e.cancelFrame = e.scheduler.ScheduleNextFrame(e.tick)
	e.logger.Debug("render loop mounted")
	return nil
}

// Unmount stops the loop and releases every subscription and timer. Safe to
// call more than once.
func (e *Engine) Unmount() {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return
	}
	e.mounted = false
	cancel, unsub := e.cancelFrame, e.unsubResize
	e.cancelFrame, e.unsubResize, e.surface = nil, nil, nil
	frames := e.frames
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsub != nil {
		unsub()
	}
	e.viewport.Cancel()
	e.logger.Debug("render loop unmounted", slog.Uint64("frames", frames))
}

// Mounted reports whether the loop is running.
func (e *Engine) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// Frames returns how many ticks have drawn a frame.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return
	}
	surface := e.surface
	if e.start.IsZero() {
		e.start, e.last = now, now
	}
	elapsed, delta := now.Sub(e.start), now.Sub(e.last)
	e.last = now
	e.mu.Unlock()

	if surface != nil {
		e.draw(surface, elapsed, delta)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mounted {
		e.cancelFrame = e.scheduler.ScheduleNextFrame(e.tick)
	}
}

func (e *Engine) draw(surface ports.Surface, elapsed, delta time.Duration) {
	e.viewport.ApplyPending(surface)
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return
	}

	source := e.store.Source()
	playing := e.store.IsPlaying()
	var snapshot domain.FrequencySnapshot
	if playing {
		snapshot = e.spectral.Sample(source)
	} else {
		snapshot = e.spectral.Sample(nil)
	}

	frame := render.NewFrame(snapshot, w, h, elapsed, delta, e.registry.BassBand())
	mode := e.store.Mode()
	idle := !snapshot.HasEnergy(e.cfg.EnergyThreshold)

	surface.FillRect(0, 0, w, h, trail)
	if idle {
		e.registry.DrawIdle(surface, frame, idleCaption(source, playing))
	} else if err := e.registry.Draw(mode, surface, frame); err != nil {
		e.logger.Error("draw failed", slog.String("mode", string(mode)), slog.Any("error", err))
	}
	e.registry.Advance(frame)
	surface.Present()

	e.mu.Lock()
	e.frames++
	e.mu.Unlock()

	if e.bus != nil && e.bus.HasSubscribers(domain.EventFrameRendered) {
		e.bus.Publish(domain.NewFrameRenderedEvent(mode, idle, snapshot, elapsed))
	}
}

func idleCaption(source ports.MediaSource, playing bool) string {
	switch {
	case source == nil:
		return render.CaptionNoSource
	case !playing:
		return render.CaptionPaused
	}
	return render.CaptionListening
}
