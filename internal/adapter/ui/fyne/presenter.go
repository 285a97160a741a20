// Package fyne provides the Fyne UI adapter: the main window, its dialogs
// and the presenter that keeps them in step with the render state store.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/service"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

// Presenter implements the Presenter pattern (MVP architecture).
// Store events become view updates; view commands become store and
// transport calls.
//
// Thread-safety: This implementation is thread-safe.
type Presenter struct {
	logger *slog.Logger

	store     *store.Store
	transport *service.TransportBridge
	sources   *service.SourceService

	view ports.UI

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	unsubscribe  []func()
	shutdownOnce sync.Once
}

// NewPresenter creates a presenter and syncs the view with the store.
func NewPresenter(
	logger *slog.Logger,
	st *store.Store,
	transport *service.TransportBridge,
	sources *service.SourceService,
	view ports.UI,
) *Presenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:    logger.With(slog.String("component", "presenter")),
		store:     st,
		transport: transport,
		sources:   sources,
		view:      view,
		ctx:       ctx,
		cancel:    cancel,
	}

	p.subscribeToEvents()
	p.syncInitialState()
	return p
}

func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		domain.EventModeChanged:        p.onModeChanged,
		domain.EventFullscreenToggled:  p.onFullscreenToggled,
		domain.EventSourceLoaded:       p.onSourceLoaded,
		domain.EventAnalysisDisabled:   p.onAnalysisDisabled,
		domain.EventPlaybackChanged:    p.onPlaybackChanged,
		domain.EventPlaybackTimeUpdate: p.onTimeUpdate,
		domain.EventDurationChanged:    p.onDurationChanged,
		domain.EventVolumeChanged:      p.onVolumeChanged,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, handler := range subscriptions {
		p.unsubscribe = append(p.unsubscribe, p.store.Subscribe(eventType, handler))
	}
}

// syncInitialState pushes the current store state into the view.
func (p *Presenter) syncInitialState() {
	p.view.SetModes(domain.Modes())
	p.view.SetMode(p.store.Mode())
	p.view.SetFullscreen(p.store.Fullscreen())
	p.view.SetVolume(p.store.Volume())

	if track := p.store.Track(); track != nil {
		p.view.SetTrackInfo(*track)
	}
	state := p.store.Playback()
	p.view.SetPlayState(state.IsPlaying)
	p.view.SetProgress(state.CurrentTime, state.Duration)
}

// Event handlers

func (p *Presenter) onModeChanged(event domain.Event) {
	if e, ok := event.(domain.ModeChangedEvent); ok {
		p.view.SetMode(e.Mode)
	}
}

func (p *Presenter) onFullscreenToggled(event domain.Event) {
	if e, ok := event.(domain.FullscreenToggledEvent); ok {
		p.view.SetFullscreen(e.Enabled)
	}
}

func (p *Presenter) onSourceLoaded(event domain.Event) {
	if e, ok := event.(domain.SourceLoadedEvent); ok {
		p.view.SetTrackInfo(e.Track)
	}
}

// onAnalysisDisabled leaves a passive note only; the spectral adapter has
// already logged the cause and the idle animation keeps running.
func (p *Presenter) onAnalysisDisabled(event domain.Event) {
	if _, ok := event.(domain.AnalysisDisabledEvent); ok {
		p.view.ShowNotification("Visualizer", "Audio analysis is unavailable. Showing the idle animation.")
	}
}

func (p *Presenter) onPlaybackChanged(event domain.Event) {
	if e, ok := event.(domain.PlaybackChangedEvent); ok {
		p.view.SetPlayState(e.IsPlaying)
	}
}

func (p *Presenter) onTimeUpdate(event domain.Event) {
	if e, ok := event.(domain.PlaybackTimeUpdateEvent); ok {
		p.view.SetProgress(e.Position, e.Duration)
	}
}

func (p *Presenter) onDurationChanged(event domain.Event) {
	if e, ok := event.(domain.DurationChangedEvent); ok {
		p.view.SetProgress(p.store.Playback().CurrentTime, e.Duration)
	}
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	if e, ok := event.(domain.VolumeChangedEvent); ok {
		p.view.SetVolume(e.Volume)
	}
}

// UI command handlers (called by the view)

// OnModeSelected switches the render mode by identifier or display name.
func (p *Presenter) OnModeSelected(name string) {
	mode, err := domain.ParseRenderMode(name)
	if err == nil {
		err = p.store.SetMode(mode)
	}
	if err != nil {
		p.logger.Error("mode change failed", slog.String("mode", name), slog.Any("error", err))
		p.view.ShowError("Mode", fmt.Sprintf("Unknown mode %q", name))
	}
}

// OnModeIndex selects the i-th mode in display order.
func (p *Presenter) OnModeIndex(i int) {
	modes := domain.Modes()
	if i < 0 || i >= len(modes) {
		return
	}
	p.OnModeSelected(string(modes[i].Mode))
}

// OnFullscreenClicked toggles fullscreen presentation.
func (p *Presenter) OnFullscreenClicked() {
	p.store.ToggleFullscreen()
}

// OnFullscreenChanged records a fullscreen change made by the window itself.
func (p *Presenter) OnFullscreenChanged(enabled bool) {
	p.store.SetFullscreen(enabled)
}

// OnPlayClicked toggles playback.
func (p *Presenter) OnPlayClicked() {
	err := p.transport.TogglePlay()
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoSourceLoaded):
		p.view.ShowNotification("Nothing to play", "Open a file or URL first")
	default:
		p.logger.Error("play/pause failed", slog.Any("error", err))
		p.view.ShowError("Playback Error", fmt.Sprintf("Failed to start playback: %v", err))
	}
}

// OnSeekRequested seeks to position seconds.
func (p *Presenter) OnSeekRequested(position float64) {
	d := time.Duration(position * float64(time.Second))
	if err := p.transport.Seek(d); err != nil && !errors.Is(err, domain.ErrNoSourceLoaded) {
		p.logger.Error("seek failed", slog.Any("error", err))
		p.view.ShowError("Seek Error", fmt.Sprintf("Failed to seek: %v", err))
	}
}

// OnVolumeChanged handles the volume slider (0-100).
func (p *Presenter) OnVolumeChanged(volume float64) {
	normalized := volume / 100.0
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	err := p.transport.SetVolume(normalized)
	if errors.Is(err, domain.ErrNoSourceLoaded) {
		// remembered for the next source
		p.store.SetVolume(normalized)
		return
	}
	if err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
		p.view.ShowError("Volume Error", fmt.Sprintf("Failed to change volume: %v", err))
	}
}

// OnFileOpened loads a local file.
func (p *Presenter) OnFileOpened(filePath string) error {
	if err := p.sources.LoadFile(filePath); err != nil {
		p.logger.Error("open file failed", slog.String("path", filePath), slog.Any("error", err))
		return err
	}
	return nil
}

// OnURLEntered downloads and loads a remote file. It blocks until the
// download finishes or the presenter shuts down.
func (p *Presenter) OnURLEntered(rawURL string) error {
	if err := p.sources.LoadURL(p.ctx, rawURL); err != nil {
		p.logger.Error("open url failed", slog.String("url", rawURL), slog.Any("error", err))
		return err
	}
	return nil
}

// Shutdown unsubscribes from the store and aborts pending downloads.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.cancel()
		p.mu.Lock()
		unsubscribe := p.unsubscribe
		p.unsubscribe = nil
		p.mu.Unlock()
		for _, fn := range unsubscribe {
			fn()
		}
	})
}
