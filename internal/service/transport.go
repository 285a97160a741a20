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

// TransportBridge forwards transport commands to the current media source
// and mirrors the source's notifications into the store. Commands never
// touch the store directly: the store only changes when the source reports
// that something happened.
//
// Thread-safety: This implementation is thread-safe.
type TransportBridge struct {
	logger   *slog.Logger
	store    *store.Store
	spectral *SpectralAdapter

	mu     sync.Mutex
	source ports.MediaSource
	unsubs []func()
}

// NewTransportBridge creates a bridge with no source attached.
func NewTransportBridge(logger *slog.Logger, st *store.Store, spectral *SpectralAdapter) *TransportBridge {
	return &TransportBridge{
		logger:   componentLogger(logger, "transport"),
		store:    st,
		spectral: spectral,
	}
}

// Attach detaches the previous source, subscribes to src's notifications
// and applies the store's volume to it.
func (b *TransportBridge) Attach(src ports.MediaSource) {
	b.Detach()
	if src == nil {
		return
	}

	handlers := map[domain.MediaEvent]func(){
		domain.MediaTimeUpdate:     func() { b.store.SetCurrentTime(src.CurrentTime()) },
		domain.MediaDurationChange: func() { b.store.SetDuration(src.Duration()) },
		domain.MediaPlay:           func() { b.store.SetPlaying(true) },
		domain.MediaPause:          func() { b.store.SetPlaying(false) },
		domain.MediaVolumeChange:   func() { b.store.SetVolume(src.Volume()) },
		domain.MediaEnded:          b.store.MarkEnded,
	}

	unsubs := make([]func(), 0, len(handlers))
	for _, ev := range domain.MediaEvents() {
		unsubs = append(unsubs, src.On(ev, handlers[ev]))
	}

	b.mu.Lock()
	b.source = src
	b.unsubs = unsubs
	b.mu.Unlock()

	if err := src.SetVolume(b.store.Volume()); err != nil {
		b.logger.Warn("failed to apply volume to new source", slog.Any("error", err))
	}
}

// Detach unsubscribes from the current source. The source itself is left
// open.
func (b *TransportBridge) Detach() {
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs, b.source = nil, nil
	b.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

// Source returns the attached source, or nil.
func (b *TransportBridge) Source() ports.MediaSource {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source
}

func (b *TransportBridge) current() (ports.MediaSource, error) {
	src := b.Source()
	if src == nil {
		return nil, domain.ErrNoSourceLoaded
	}
	return src, nil
}

// Play routes the source through the analyser, wakes the audio context and
// starts playback. Analysis failures never block playback.
func (b *TransportBridge) Play() error {
	src, err := b.current()
	if err != nil {
		return err
	}
	if b.spectral != nil {
		if err := b.spectral.EnsureGraph(src); err != nil {
			b.logger.Debug("playing without analysis", slog.Any("error", err))
		} else if err := b.spectral.Resume(); err != nil {
			b.logger.Debug("audio context not resumed", slog.Any("error", err))
		}
	}
	if err := src.Play(); err != nil {
		b.logger.Warn("play rejected", slog.Any("error", err))
		return err
	}
	return nil
}

// Pause pauses playback.
func (b *TransportBridge) Pause() error {
	src, err := b.current()
	if err != nil {
		return err
	}
	return src.Pause()
}

// TogglePlay plays a paused source and pauses a playing one.
func (b *TransportBridge) TogglePlay() error {
	src, err := b.current()
	if err != nil {
		return err
	}
	if src.Paused() {
		return b.Play()
	}
	return src.Pause()
}

// Seek moves the playback position.
func (b *TransportBridge) Seek(position time.Duration) error {
	src, err := b.current()
	if err != nil {
		return err
	}
	if d := src.Duration(); position < 0 || (d > 0 && position > d) {
		return domain.NewValidationError("position", position, "outside the track").Wrap(domain.ErrInvalidPosition)
	}
	return src.Seek(position)
}

// SetVolume sets the source volume in [0, 1].
func (b *TransportBridge) SetVolume(volume float64) error {
	if math.IsNaN(volume) || volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0 and 1").Wrap(domain.ErrInvalidVolume)
	}
	src, err := b.current()
	if err != nil {
		return err
	}
	return src.SetVolume(volume)
}
