package mock

import (
	"context"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/notify"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Source is a mock media source. Transport calls change state and emit the
// same notifications a real element would; tests drive time with Advance.
//
// Thread-safety: This implementation is thread-safe.
type Source struct {
	notify.Notifier

	mu       sync.Mutex
	info     domain.TrackInfo
	paused   bool
	position time.Duration
	duration time.Duration
	volume   float64
	closed   bool

	failPlay bool
}

// NewSource creates a paused source at volume 1.
func NewSource(info domain.TrackInfo, duration time.Duration) *Source {
	return &Source{
		info:     info,
		paused:   true,
		duration: duration,
		volume:   1,
	}
}

// SetFailPlay makes Play fail (for testing autoplay rejection).
func (s *Source) SetFailPlay(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPlay = fail
}

// Play starts playback and emits play.
func (s *Source) Play() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSourceClosed
	}
	if s.failPlay {
		s.mu.Unlock()
		return domain.NewSourceError("play", s.info.Location, errors.New("mock play rejected"))
	}
	changed := s.paused
	s.paused = false
	s.mu.Unlock()

	if changed {
		s.Emit(domain.MediaPlay)
	}
	return nil
}

// Pause pauses playback and emits pause.
func (s *Source) Pause() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSourceClosed
	}
	changed := !s.paused
	s.paused = true
	s.mu.Unlock()

	if changed {
		s.Emit(domain.MediaPause)
	}
	return nil
}

// Seek moves the position and emits time.
func (s *Source) Seek(position time.Duration) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSourceClosed
	}
	if position < 0 || (s.duration > 0 && position > s.duration) {
		s.mu.Unlock()
		return domain.ErrInvalidPosition
	}
	s.position = position
	s.mu.Unlock()

	s.Emit(domain.MediaTimeUpdate)
	return nil
}

// SetVolume sets the level and emits volume.
func (s *Source) SetVolume(volume float64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSourceClosed
	}
	if volume < 0 || volume > 1 {
		s.mu.Unlock()
		return domain.ErrInvalidVolume
	}
	s.volume = volume
	s.mu.Unlock()

	s.Emit(domain.MediaVolumeChange)
	return nil
}

// Paused reports whether the source is paused.
func (s *Source) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// CurrentTime returns the position.
func (s *Source) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the length.
func (s *Source) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Volume returns the level.
func (s *Source) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Info returns the track metadata.
func (s *Source) Info() domain.TrackInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Close stops playback and drops every handler.
func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.paused = true
	s.mu.Unlock()
	s.Reset()
	return nil
}

// Closed reports whether Close ran.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SetDuration reports a newly known length and emits duration.
func (s *Source) SetDuration(d time.Duration) {
	s.mu.Lock()
	s.duration = d
	s.mu.Unlock()
	s.Emit(domain.MediaDurationChange)
}

// Advance moves a playing source forward and emits time. Reaching the end
// pauses the source and emits pause then ended.
func (s *Source) Advance(d time.Duration) {
	s.mu.Lock()
	if s.paused || s.closed {
		s.mu.Unlock()
		return
	}
	s.position += d
	ended := s.duration > 0 && s.position >= s.duration
	if ended {
		s.position = s.duration
		s.paused = true
	}
	s.mu.Unlock()

	s.Emit(domain.MediaTimeUpdate)
	if ended {
		s.Emit(domain.MediaPause)
		s.Emit(domain.MediaEnded)
	}
}

// Loader opens mock sources without touching the filesystem or network.
type Loader struct {
	mu       sync.Mutex
	duration time.Duration
	opened   []*Source
	failOpen error
}

// NewLoader creates a loader whose sources report duration.
func NewLoader(duration time.Duration) *Loader {
	return &Loader{duration: duration}
}

// SetFailOpen makes the next opens fail with err (nil to clear).
func (l *Loader) SetFailOpen(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failOpen = err
}

// OpenFile returns a source titled after the file name.
func (l *Loader) OpenFile(p string) (ports.MediaSource, error) {
	base := filepath.Base(p)
	return l.open(domain.TrackInfo{
		Title:    strings.TrimSuffix(base, filepath.Ext(base)),
		Artist:   "Local File",
		Location: p,
		Kind:     domain.SourceFile,
	})
}

// OpenURL returns a source titled after the last path segment.
func (l *Loader) OpenURL(ctx context.Context, rawURL string) (ports.MediaSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.NewSourceError("open", rawURL, err)
	}
	return l.open(domain.TrackInfo{
		Title:    path.Base(u.Path),
		Artist:   u.Hostname(),
		Location: rawURL,
		Kind:     domain.SourceURL,
	})
}

func (l *Loader) open(info domain.TrackInfo) (ports.MediaSource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failOpen != nil {
		return nil, domain.NewSourceError("open", info.Location, l.failOpen)
	}
	src := NewSource(info, l.duration)
	l.opened = append(l.opened, src)
	return src, nil
}

// Opened returns every source handed out so far.
func (l *Loader) Opened() []*Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Source(nil), l.opened...)
}

var (
	_ ports.MediaSource = (*Source)(nil)
	_ ports.MediaLoader = (*Loader)(nil)
)
