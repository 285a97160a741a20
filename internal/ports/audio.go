// Package ports define interfaces for dependency inversion.
// These interfaces keep the render core independent of the audio host, the
// drawing backend and the UI toolkit.
package ports

import (
	"context"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// AudioContextState reports whether a context is producing audio.
type AudioContextState string

// Context states.
const (
	ContextRunning   AudioContextState = "running"
	ContextSuspended AudioContextState = "suspended"
	ContextClosed    AudioContextState = "closed"
)

// AudioContext is the host audio graph. One context exists per process;
// sources are routed through an analyser to the output device.
//
// Implementations must be thread-safe.
type AudioContext interface {
	// CreateAnalyser creates a frequency analyser.
	// fftSize: Transform size, a power of two
	// smoothing: Time constant in [0, 1] blending successive frames
	CreateAnalyser(fftSize int, smoothing float64) (Analyser, error)

	// Connect routes source -> analyser -> output.
	// A source can only be routed once per context; a second call returns
	// domain.ErrAlreadyConnected.
	Connect(source MediaSource, analyser Analyser) error

	// Resume resumes a suspended context. Hosts may keep a context suspended
	// until a user gesture starts playback.
	Resume() error

	// State returns the current context state.
	State() AudioContextState

	// Close releases the output device.
	Close() error
}

// AudioContextFactory creates the process audio context on first use.
type AudioContextFactory func() (AudioContext, error)

// Analyser produces per-bin frequency magnitudes for whatever is routed through it.
//
// Thread-safety: GetByteFrequencyData may run concurrently with audio delivery.
type Analyser interface {
	// FFTSize returns the transform size.
	FFTSize() int

	// FrequencyBinCount returns FFTSize()/2.
	FrequencyBinCount() int

	// GetByteFrequencyData fills dst with magnitudes mapped to 0-255.
	// Only min(len(dst), FrequencyBinCount()) entries are written.
	GetByteFrequencyData(dst []uint8)
}

// MediaSource is a playable, seekable audio element.
// State changes are reported through On notifications, which may arrive on
// any goroutine.
type MediaSource interface {
	// Transport commands

	// Play starts or resumes playback.
	Play() error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Seek moves the playback position.
	Seek(position time.Duration) error

	// SetVolume sets the output level (0.0 to 1.0).
	SetVolume(volume float64) error

	// State queries

	// Paused reports whether the source is paused (true before the first Play).
	Paused() bool

	// CurrentTime returns the playback position.
	CurrentTime() time.Duration

	// Duration returns the total length, or 0 if unknown.
	Duration() time.Duration

	// Volume returns the output level.
	Volume() float64

	// Info returns display metadata.
	Info() domain.TrackInfo

	// On registers a handler for a notification kind and returns its teardown.
	On(event domain.MediaEvent, handler func()) (unsubscribe func())

	// Close stops playback and releases decoder resources.
	Close() error
}

// MediaLoader opens media sources.
type MediaLoader interface {
	// OpenFile decodes a local audio file.
	OpenFile(path string) (MediaSource, error)

	// OpenURL fetches and decodes a remote audio file.
	OpenURL(ctx context.Context, rawURL string) (MediaSource, error)
}
