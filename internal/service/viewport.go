package service

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

// ViewportConfig tunes resize handling.
type ViewportConfig struct {
	// Debounce is how long the container must stay still before a resize applies.
	Debounce time.Duration

	// MaxPixelRatio caps the backing-store scale.
	MaxPixelRatio float64
}

// DefaultViewportConfig returns the stock settings.
func DefaultViewportConfig() ViewportConfig {
	return ViewportConfig{Debounce: 100 * time.Millisecond, MaxPixelRatio: 2}
}

// ViewportManager sizes the drawing surface to its container. Resize
// notifications are debounced; when the debounce fires the new size is only
// recorded, and the render loop applies it at the start of its next tick.
//
// Thread-safety: This implementation is thread-safe.
type ViewportManager struct {
	logger *slog.Logger
	store  *store.Store
	timer  ports.Timer
	cfg    ViewportConfig

	mu          sync.Mutex
	pending     *domain.Viewport
	cancel      ports.CancelFunc
	gen         uint64
	current     domain.Viewport
	allocations int
}

// NewViewportManager creates a manager.
func NewViewportManager(logger *slog.Logger, st *store.Store, timer ports.Timer, cfg ViewportConfig) *ViewportManager {
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.MaxPixelRatio < 1 {
		cfg.MaxPixelRatio = 1
	}
	return &ViewportManager{
		logger: componentLogger(logger, "viewport"),
		store:  st,
		timer:  timer,
		cfg:    cfg,
	}
}

// Measure reads the container's size and pixel ratio.
func (m *ViewportManager) Measure(c ports.Container) domain.Viewport {
	w, h := c.Bounds()
	ratio := c.DevicePixelRatio()
	if math.IsNaN(ratio) || ratio < 1 {
		ratio = 1
	}
	return domain.Viewport{
		Width:      max(0, w),
		Height:     max(0, h),
		PixelRatio: min(ratio, m.cfg.MaxPixelRatio),
	}
}

// SetPending records vp to be applied on the next tick.
func (m *ViewportManager) SetPending(vp domain.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &vp
}

// RequestResize restarts the debounce window. When it closes, the
// container is measured and the result becomes pending.
func (m *ViewportManager) RequestResize(c ports.Container) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	gen := m.gen
	m.cancel = m.timer.AfterFunc(m.cfg.Debounce, func() {
		vp := m.Measure(c)
		m.mu.Lock()
		defer m.mu.Unlock()
		// a newer request or Cancel superseded this one
		if m.gen != gen {
			return
		}
		m.pending = &vp
		m.cancel = nil
	})
}

// ApplyPending resizes s to the pending viewport, if one is waiting and it
// differs from the current one. It reports whether s was reallocated.
func (m *ViewportManager) ApplyPending(s ports.Surface) bool {
	m.mu.Lock()
	p := m.pending
	m.pending = nil
	if p == nil || *p == m.current {
		m.mu.Unlock()
		return false
	}
	vp := *p
	m.current = vp
	m.allocations++
	m.mu.Unlock()

	s.Resize(vp)
	m.logger.Debug("surface resized",
		slog.Float64("width", vp.Width),
		slog.Float64("height", vp.Height),
		slog.Float64("pixel_ratio", vp.PixelRatio))
	if m.store != nil {
		m.store.SetViewport(vp)
	}
	return true
}

// Cancel stops a pending debounce and drops any unapplied viewport.
func (m *ViewportManager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	m.pending = nil
}

// Reset cancels like Cancel and forgets the applied viewport, so the next
// pending one reaches a freshly mounted surface even when its size matches.
func (m *ViewportManager) Reset() {
	m.Cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Viewport{}
}

// Current returns the applied viewport.
func (m *ViewportManager) Current() domain.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Allocations returns how many times the surface was resized.
func (m *ViewportManager) Allocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocations
}
