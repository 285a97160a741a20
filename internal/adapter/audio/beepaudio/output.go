// Package beepaudio implements the audio ports on top of faiface/beep:
// decoding, the output device, per-source volume and the analyser tap.
package beepaudio

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// DefaultSampleRate is the device rate every source is resampled to.
const DefaultSampleRate = beep.SampleRate(44100)

// resampleQuality trades CPU for fidelity when a file's rate differs from the device.
const resampleQuality = 4

// Output owns the process speaker. The device is opened lazily on the first
// Start so decoding and metadata work on hosts without audio hardware.
//
// Thread-safety: This implementation is thread-safe.
type Output struct {
	logger *slog.Logger
	rate   beep.SampleRate
	buffer time.Duration

	mu      sync.Mutex
	started bool
	err     error
	mixer   *beep.Mixer
}

// NewOutput creates an output at rate with the given device buffer.
// Small buffers keep latency interactive.
func NewOutput(rate beep.SampleRate, buffer time.Duration, logger *slog.Logger) *Output {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Output{
		logger: logger.With(slog.String("adapter", "beep_output")),
		rate:   rate,
		buffer: buffer,
	}
}

// SampleRate returns the device rate.
func (o *Output) SampleRate() beep.SampleRate { return o.rate }

// Start opens the speaker once. A failure is remembered and returned by
// every later call.
func (o *Output) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return o.err
	}
	o.started = true

	if err := speaker.Init(o.rate, o.rate.N(o.buffer)); err != nil {
		o.err = domain.NewAudioGraphError("speaker_init", errors.Join(domain.ErrDeviceUnavailable, err))
		o.logger.Warn("audio output unavailable", slog.Any("error", err))
		return o.err
	}
	o.mixer = &beep.Mixer{}
	speaker.Play(o.mixer)
	o.logger.Info("audio output started",
		slog.Int("sample_rate", int(o.rate)),
		slog.Duration("buffer", o.buffer))
	return nil
}

// Add mixes s into the device output. Start must have succeeded.
func (o *Output) Add(s beep.Streamer) error {
	o.mu.Lock()
	mixer, err := o.mixer, o.err
	o.mu.Unlock()

	if err != nil {
		return err
	}
	if mixer == nil {
		return domain.NewAudioGraphError("mix", domain.ErrDeviceUnavailable)
	}
	speaker.Lock()
	mixer.Add(s)
	speaker.Unlock()
	return nil
}

// Running reports whether the device is open.
func (o *Output) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started && o.err == nil
}

// Close silences everything still playing.
func (o *Output) Close() {
	if !o.Running() {
		return
	}
	speaker.Clear()
}
