// Package service implements the visualizer engine: spectral sampling,
// viewport management, the render loop and the transport bridge.
package service

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/beatviz/internal/analysis"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

// SpectralConfig configures the analyser the adapter creates.
type SpectralConfig struct {
	FFTSize   int
	Smoothing float64
}

// DefaultSpectralConfig returns the stock analyser settings.
func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{FFTSize: 512, Smoothing: 0.85}
}

// SpectralAdapter owns the audio graph lifecycle and turns the analyser's
// output into frequency snapshots.
//
// Once creating the audio context or analyser fails, analysis stays disabled
// for the adapter's lifetime and every sample is silence.
//
// Thread-safety: This implementation is thread-safe.
type SpectralAdapter struct {
	logger  *slog.Logger
	store   *store.Store
	bus     ports.EventBus
	factory ports.AudioContextFactory
	cfg     SpectralConfig

	mu        sync.Mutex
	disabled  error
	connected map[ports.MediaSource]struct{}
	zero      domain.FrequencySnapshot
	buf       domain.FrequencySnapshot
}

// NewSpectralAdapter validates cfg and creates an adapter. No audio
// resources are created until EnsureGraph.
func NewSpectralAdapter(
	logger *slog.Logger,
	st *store.Store,
	bus ports.EventBus,
	factory ports.AudioContextFactory,
	cfg SpectralConfig,
) (*SpectralAdapter, error) {
	if err := analysis.ValidateFFTSize(cfg.FFTSize); err != nil {
		return nil, err
	}
	if err := analysis.ValidateSmoothing(cfg.Smoothing); err != nil {
		return nil, err
	}
	return &SpectralAdapter{
		logger:    componentLogger(logger, "spectral"),
		store:     st,
		bus:       bus,
		factory:   factory,
		cfg:       cfg,
		connected: make(map[ports.MediaSource]struct{}),
		zero:      make(domain.FrequencySnapshot, cfg.FFTSize/2),
	}, nil
}

func componentLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String("component", name))
}

// BinCount returns the length of every snapshot.
func (a *SpectralAdapter) BinCount() int {
	return a.cfg.FFTSize / 2
}

// Disabled reports whether analysis has been turned off after a failure.
func (a *SpectralAdapter) Disabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disabled != nil
}

// EnsureGraph creates the audio context and analyser if the store has none,
// then routes source through the analyser. Routing a source twice is not an
// error.
func (a *SpectralAdapter) EnsureGraph(source ports.MediaSource) error {
	if source == nil {
		return domain.ErrNoSourceLoaded
	}

	a.mu.Lock()
	justDisabled, err := a.ensureGraph(source)
	a.mu.Unlock()

	if justDisabled && a.bus != nil {
		a.bus.Publish(domain.NewAnalysisDisabledEvent(err))
	}
	return err
}

// ensureGraph runs with a.mu held.
func (a *SpectralAdapter) ensureGraph(source ports.MediaSource) (justDisabled bool, err error) {
	if a.disabled != nil {
		return false, a.disabled
	}

	ctx, analyser := a.store.AudioGraph()
	if ctx == nil || analyser == nil {
		if ctx, analyser, err = a.createGraph(); err != nil {
			a.disable(err)
			return true, a.disabled
		}
	}

	if _, ok := a.connected[source]; ok {
		return false, nil
	}
	if err := ctx.Connect(source, analyser); err != nil {
		if !errors.Is(err, domain.ErrAlreadyConnected) {
			a.logger.Warn("failed to connect source", slog.Any("error", err))
			return false, err
		}
		a.logger.Debug("source already connected")
	}
	a.connected[source] = struct{}{}
	if len(a.buf) != analyser.FrequencyBinCount() {
		a.buf = make(domain.FrequencySnapshot, analyser.FrequencyBinCount())
	}
	return false, nil
}

// createGraph runs with a.mu held.
func (a *SpectralAdapter) createGraph() (ports.AudioContext, ports.Analyser, error) {
	ctx, err := a.factory()
	if err != nil {
		return nil, nil, err
	}
	analyser, err := ctx.CreateAnalyser(a.cfg.FFTSize, a.cfg.Smoothing)
	if err != nil {
		_ = ctx.Close()
		return nil, nil, err
	}
	if err := a.store.SetAudioGraph(ctx, analyser); err != nil {
		_ = ctx.Close()
		return nil, nil, err
	}
	a.logger.Debug("audio graph created",
		slog.Int("fft_size", analyser.FFTSize()),
		slog.Float64("smoothing", a.cfg.Smoothing))
	return ctx, analyser, nil
}

// disable runs with a.mu held.
func (a *SpectralAdapter) disable(cause error) {
	if !errors.Is(cause, domain.ErrDeviceUnavailable) {
		cause = domain.NewAudioGraphError("ensure_graph", errors.Join(domain.ErrDeviceUnavailable, cause))
	}
	a.disabled = cause
	a.logger.Warn("audio analysis disabled", slog.Any("error", cause))
}

// Sample returns the current spectrum for source. A nil, paused or
// unrouted source, or disabled analysis, reads as silence. The returned
// slice is reused by the next call and must not be modified.
func (a *SpectralAdapter) Sample(source ports.MediaSource) domain.FrequencySnapshot {
	if source == nil || source.Paused() {
		return a.zero
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disabled != nil {
		return a.zero
	}
	if _, ok := a.connected[source]; !ok {
		return a.zero
	}
	_, analyser := a.store.AudioGraph()
	if analyser == nil {
		return a.zero
	}
	analyser.GetByteFrequencyData(a.buf)
	return a.buf
}

// Resume wakes a suspended audio context. Without a graph it does nothing.
func (a *SpectralAdapter) Resume() error {
	ctx, _ := a.store.AudioGraph()
	if ctx == nil || ctx.State() != ports.ContextSuspended {
		return nil
	}
	if err := ctx.Resume(); err != nil {
		a.logger.Warn("failed to resume audio context", slog.Any("error", err))
		return err
	}
	return nil
}

// Forget drops source from the routed set, typically after it was closed.
func (a *SpectralAdapter) Forget(source ports.MediaSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.connected, source)
}
