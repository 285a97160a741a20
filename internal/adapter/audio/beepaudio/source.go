package beepaudio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/notify"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Source is a decoded track playing through the shared Output.
//
// The chain is decoder -> tap -> volume -> pause control -> resampler.
// Fields reached from the speaker goroutine (ctrl, vol, decoder position)
// are only touched under speaker.Lock.
type Source struct {
	notify.Notifier

	logger *slog.Logger
	out    *Output
	info   domain.TrackInfo

	decoder beep.StreamSeekCloser
	format  beep.Format
	tap     *tap
	vol     *effects.Volume
	ctrl    *beep.Ctrl

	mu      sync.Mutex
	volume  float64
	mixed   bool
	ended   bool
	closed  bool
	endedCh chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
}

func newSource(out *Output, decoder beep.StreamSeekCloser, format beep.Format,
	info domain.TrackInfo, interval time.Duration, logger *slog.Logger) *Source {
	s := &Source{
		logger:  logger.With(slog.String("source", info.Title)),
		out:     out,
		info:    info,
		decoder: decoder,
		format:  format,
		volume:  1,
		endedCh: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	s.tap = newTap(decoder)
	s.vol = &effects.Volume{Streamer: s.tap, Base: 2}
	s.ctrl = &beep.Ctrl{Streamer: s.vol, Paused: true}

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	s.wg.Add(1)
	go s.progressLoop(interval)
	return s
}

// chain builds the streamer handed to the mixer. The callback runs on the
// speaker goroutine with the speaker lock held, so it only signals.
func (s *Source) chain() beep.Streamer {
	var out beep.Streamer = s.ctrl
	if s.format.SampleRate != s.out.SampleRate() {
		out = beep.Resample(resampleQuality, s.format.SampleRate, s.out.SampleRate(), out)
	}
	return beep.Seq(out, beep.Callback(func() {
		select {
		case s.endedCh <- struct{}{}:
		default:
		}
	}))
}

func (s *Source) progressLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.Paused() {
				s.Emit(domain.MediaTimeUpdate)
			}
		case <-s.endedCh:
			speaker.Lock()
			s.ctrl.Paused = true
			speaker.Unlock()
			s.mu.Lock()
			s.ended = true
			s.mixed = false
			s.mu.Unlock()
			s.Emit(domain.MediaTimeUpdate)
			s.Emit(domain.MediaPause)
			s.Emit(domain.MediaEnded)
		}
	}
}

// attach routes the tap into sink; used by Context.Connect.
func (s *Source) attach(sink SampleSink) bool {
	return s.tap.attach(sink)
}

// Play opens the device if needed and starts playback. Playing an ended
// source restarts it from the beginning.
func (s *Source) Play() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSourceClosed
	}
	restart := s.ended
	needMix := !s.mixed
	s.mu.Unlock()

	if err := s.out.Start(); err != nil {
		return domain.NewSourceError("play", s.info.Location, err)
	}

	speaker.Lock()
	if restart {
		if err := s.decoder.Seek(0); err != nil {
			speaker.Unlock()
			return domain.NewSourceError("play", s.info.Location, err)
		}
	}
	wasPaused := s.ctrl.Paused
	s.ctrl.Paused = false
	speaker.Unlock()

	if needMix {
		if err := s.out.Add(s.chain()); err != nil {
			return domain.NewSourceError("play", s.info.Location, err)
		}
	}

	s.mu.Lock()
	s.ended = false
	s.mixed = true
	s.mu.Unlock()

	if wasPaused {
		s.logger.Debug("playback started")
		s.Emit(domain.MediaPlay)
	}
	return nil
}

// Pause pauses playback and emits pause.
func (s *Source) Pause() error {
	if s.isClosed() {
		return domain.ErrSourceClosed
	}
	speaker.Lock()
	wasPaused := s.ctrl.Paused
	s.ctrl.Paused = true
	speaker.Unlock()

	if !wasPaused {
		s.Emit(domain.MediaPause)
	}
	return nil
}

// Seek moves the decoder position and emits time.
func (s *Source) Seek(position time.Duration) error {
	if s.isClosed() {
		return domain.ErrSourceClosed
	}
	if position < 0 || position > s.Duration() {
		return domain.ErrInvalidPosition
	}

	n := s.format.SampleRate.N(position)
	speaker.Lock()
	err := s.decoder.Seek(min(n, s.decoder.Len()))
	speaker.Unlock()
	if err != nil {
		return domain.NewSourceError("seek", s.info.Location, err)
	}

	s.mu.Lock()
	s.ended = false
	s.mu.Unlock()
	s.Emit(domain.MediaTimeUpdate)
	return nil
}

// SetVolume sets the linear level (0.0 to 1.0) and emits volume.
// beep volume is logarithmic, so the level maps through log2.
func (s *Source) SetVolume(volume float64) error {
	if s.isClosed() {
		return domain.ErrSourceClosed
	}
	if math.IsNaN(volume) || volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}

	speaker.Lock()
	s.vol.Silent = volume == 0
	if volume > 0 {
		s.vol.Volume = math.Log2(volume)
	}
	speaker.Unlock()

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
	s.Emit(domain.MediaVolumeChange)
	return nil
}

// Paused reports whether playback is paused.
func (s *Source) Paused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.ctrl.Paused
}

// CurrentTime returns the decoder position.
func (s *Source) CurrentTime() time.Duration {
	speaker.Lock()
	pos := s.decoder.Position()
	speaker.Unlock()
	return s.format.SampleRate.D(pos)
}

// Duration returns the decoded length.
func (s *Source) Duration() time.Duration {
	speaker.Lock()
	n := s.decoder.Len()
	speaker.Unlock()
	return s.format.SampleRate.D(n)
}

// Volume returns the linear level.
func (s *Source) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Info returns the track metadata.
func (s *Source) Info() domain.TrackInfo {
	return s.info
}

func (s *Source) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops playback, ends the progress goroutine and releases the decoder.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()

	// the decoder closes the underlying reader; a nil Ctrl streamer drains,
	// so the mixer drops the chain on its next pass
	speaker.Lock()
	s.ctrl.Paused = true
	s.ctrl.Streamer = nil
	err := s.decoder.Close()
	speaker.Unlock()

	s.Reset()
	return err
}

var _ ports.MediaSource = (*Source)(nil)
