// Package store holds the render state shared by the render loop, the
// transport bridge and the UI.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// DefaultVolume is the volume a new store starts with.
const DefaultVolume = 0.7

// Store is the single source of truth for what is shown and played.
// Every setter publishes an event on the bus, but only when the value
// actually changed. Events are published after the lock is released, so
// handlers may read the store.
//
// Thread-safety: This implementation is thread-safe.
type Store struct {
	logger *slog.Logger
	bus    ports.EventBus

	mu         sync.RWMutex
	mode       domain.RenderMode
	fullscreen bool
	viewport   domain.Viewport

	audioCtx ports.AudioContext
	analyser ports.Analyser

	source      ports.MediaSource
	track       *domain.TrackInfo
	isPlaying   bool
	currentTime time.Duration
	duration    time.Duration
	volume      float64
}

// New creates a store showing mode. An invalid mode falls back to bars.
func New(logger *slog.Logger, bus ports.EventBus, mode domain.RenderMode) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !mode.Valid() {
		mode = domain.ModeBars
	}
	return &Store{
		logger: logger.With(slog.String("component", "store")),
		bus:    bus,
		mode:   mode,
		volume: DefaultVolume,
	}
}

func (s *Store) publish(events ...domain.Event) {
	if s.bus == nil {
		return
	}
	for _, e := range events {
		s.bus.Publish(e)
	}
}

// Subscribe registers handler for eventType and returns its teardown.
func (s *Store) Subscribe(eventType domain.EventType, handler domain.EventHandler) (unsubscribe func()) {
	if s.bus == nil {
		return func() {}
	}
	id := s.bus.Subscribe(eventType, handler)
	var once sync.Once
	return func() {
		once.Do(func() { s.bus.Unsubscribe(id) })
	}
}

// Mode returns the selected render mode.
func (s *Store) Mode() domain.RenderMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode selects a render mode.
func (s *Store) SetMode(mode domain.RenderMode) error {
	if !mode.Valid() {
		return domain.NewValidationError("mode", string(mode), "no such render mode").Wrap(domain.ErrUnknownMode)
	}
	s.mu.Lock()
	changed := s.mode != mode
	s.mode = mode
	s.mu.Unlock()

	if changed {
		s.logger.Debug("mode changed", slog.String("mode", string(mode)))
		s.publish(domain.NewModeChangedEvent(mode))
	}
	return nil
}

// Fullscreen reports whether fullscreen is on.
func (s *Store) Fullscreen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fullscreen
}

// SetFullscreen sets the fullscreen flag.
func (s *Store) SetFullscreen(on bool) {
	s.mu.Lock()
	changed := s.fullscreen != on
	s.fullscreen = on
	s.mu.Unlock()

	if changed {
		s.publish(domain.NewFullscreenToggledEvent(on))
	}
}

// ToggleFullscreen flips the fullscreen flag and returns the new value.
func (s *Store) ToggleFullscreen() bool {
	s.mu.Lock()
	s.fullscreen = !s.fullscreen
	on := s.fullscreen
	s.mu.Unlock()

	s.publish(domain.NewFullscreenToggledEvent(on))
	return on
}

// Viewport returns the last applied viewport.
func (s *Store) Viewport() domain.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetViewport records an applied viewport.
func (s *Store) SetViewport(vp domain.Viewport) {
	s.mu.Lock()
	changed := s.viewport != vp
	s.viewport = vp
	s.mu.Unlock()

	if changed {
		s.publish(domain.NewViewportResizedEvent(vp))
	}
}

// AudioGraph returns the audio context and analyser, either of which may be nil.
func (s *Store) AudioGraph() (ports.AudioContext, ports.Analyser) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audioCtx, s.analyser
}

// SetAudioGraph stores the audio context and analyser. It succeeds once;
// later calls return ErrAlreadyInitialized.
func (s *Store) SetAudioGraph(ctx ports.AudioContext, analyser ports.Analyser) error {
	if ctx == nil || analyser == nil {
		return domain.NewValidationError("audio_graph", "", "context and analyser are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audioCtx != nil {
		return domain.ErrAlreadyInitialized
	}
	s.audioCtx, s.analyser = ctx, analyser
	return nil
}

// Source returns the current media source, or nil.
func (s *Store) Source() ports.MediaSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// SetSource makes src the current source and resets the transport fields
// from it. The previous source is returned so the caller can close it.
func (s *Store) SetSource(src ports.MediaSource) (previous ports.MediaSource) {
	info := src.Info()
	duration := src.Duration()
	playing := !src.Paused()

	s.mu.Lock()
	previous = s.source
	s.source = src
	s.track = &info
	playingChanged := s.isPlaying != playing
	s.isPlaying = playing
	s.currentTime = src.CurrentTime()
	durationChanged := s.duration != duration
	s.duration = duration
	position := s.currentTime
	s.mu.Unlock()

	s.logger.Info("source loaded",
		slog.String("title", info.Title),
		slog.String("kind", string(info.Kind)),
		slog.Duration("duration", duration))

	events := []domain.Event{domain.NewSourceLoadedEvent(info)}
	if durationChanged {
		events = append(events, domain.NewDurationChangedEvent(duration))
	}
	events = append(events, domain.NewPlaybackTimeUpdateEvent(position, duration))
	if playingChanged {
		events = append(events, domain.NewPlaybackChangedEvent(playing))
	}
	s.publish(events...)
	return previous
}

// ClearSource forgets the current source and returns it.
func (s *Store) ClearSource() ports.MediaSource {
	s.mu.Lock()
	prev := s.source
	s.source, s.track = nil, nil
	wasPlaying := s.isPlaying
	s.isPlaying = false
	s.currentTime = 0
	s.mu.Unlock()

	if wasPlaying {
		s.publish(domain.NewPlaybackChangedEvent(false))
	}
	return prev
}

// Track returns a copy of the current track info, or nil.
func (s *Store) Track() *domain.TrackInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.track == nil {
		return nil
	}
	t := *s.track
	return &t
}

// IsPlaying reports the mirrored playing flag.
func (s *Store) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

// SetPlaying mirrors the source's playing state.
func (s *Store) SetPlaying(playing bool) {
	s.mu.Lock()
	changed := s.isPlaying != playing
	s.isPlaying = playing
	s.mu.Unlock()

	if changed {
		s.publish(domain.NewPlaybackChangedEvent(playing))
	}
}

// SetCurrentTime mirrors the playback position.
func (s *Store) SetCurrentTime(t time.Duration) {
	s.mu.Lock()
	changed := s.currentTime != t
	s.currentTime = t
	d := s.duration
	s.mu.Unlock()

	if changed {
		s.publish(domain.NewPlaybackTimeUpdateEvent(t, d))
	}
}

// SetDuration mirrors the source duration.
func (s *Store) SetDuration(d time.Duration) {
	s.mu.Lock()
	changed := s.duration != d
	s.duration = d
	s.mu.Unlock()

	if changed {
		s.publish(domain.NewDurationChangedEvent(d))
	}
}

// Volume returns the mirrored volume.
func (s *Store) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// SetVolume mirrors the source volume.
func (s *Store) SetVolume(v float64) {
	s.mu.Lock()
	changed := s.volume != v
	s.volume = v
	s.mu.Unlock()

	if changed {
		s.publish(domain.NewVolumeChangedEvent(v))
	}
}

// MarkEnded records that the source reached its end.
func (s *Store) MarkEnded() {
	s.mu.Lock()
	wasPlaying := s.isPlaying
	s.isPlaying = false
	s.mu.Unlock()

	if wasPlaying {
		s.publish(domain.NewPlaybackChangedEvent(false))
	}
	s.publish(domain.NewPlaybackEndedEvent())
}

// Playback returns a copy of the transport fields.
func (s *Store) Playback() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := domain.PlaybackState{
		Loaded:      s.source != nil,
		IsPlaying:   s.isPlaying,
		CurrentTime: s.currentTime,
		Duration:    s.duration,
		Volume:      s.volume,
	}
	if s.track != nil {
		t := *s.track
		st.Track = &t
	}
	return st
}
