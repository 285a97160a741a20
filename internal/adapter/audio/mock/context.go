// Package mock provides in-memory implementations of the audio ports.
// This is used for testing services and running the UI without an output device.
package mock

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Context is a mock audio context. It records connections and enforces the
// one-connection-per-source rule a real host has.
//
// Thread-safety: This implementation is thread-safe.
type Context struct {
	logger *slog.Logger

	mu        sync.Mutex
	state     ports.AudioContextState
	connected map[ports.MediaSource]ports.Analyser
	analysers []*Analyser
	resumes   int

	// Behavior configuration (for testing error scenarios)
	failAnalyser bool
	failConnect  bool
}

// NewContext creates a suspended mock context.
func NewContext(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Context{
		logger:    logger.With(slog.String("adapter", "mock_audio")),
		state:     ports.ContextSuspended,
		connected: make(map[ports.MediaSource]ports.Analyser),
	}
}

// SetFailCreateAnalyser makes CreateAnalyser fail (for testing).
func (c *Context) SetFailCreateAnalyser(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAnalyser = fail
}

// SetFailConnect makes Connect fail with a generic error (for testing).
func (c *Context) SetFailConnect(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failConnect = fail
}

// CreateAnalyser returns a mock analyser with fftSize/2 silent bins.
func (c *Context) CreateAnalyser(fftSize int, smoothing float64) (ports.Analyser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failAnalyser {
		return nil, domain.NewAudioGraphError("create_analyser", errors.New("mock analyser unavailable"))
	}
	a := NewAnalyser(fftSize)
	a.smoothing = smoothing
	c.analysers = append(c.analysers, a)
	return a, nil
}

// Connect records source -> analyser routing.
func (c *Context) Connect(source ports.MediaSource, analyser ports.Analyser) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failConnect {
		return domain.NewAudioGraphError("connect", errors.New("mock connect failed"))
	}
	if _, ok := c.connected[source]; ok {
		return domain.NewAudioGraphError("connect", domain.ErrAlreadyConnected)
	}
	c.connected[source] = analyser
	c.logger.Debug("source connected", slog.String("title", source.Info().Title))
	return nil
}

// Resume marks the context running.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return domain.NewAudioGraphError("resume", errors.New("context closed"))
	}
	c.state = ports.ContextRunning
	c.resumes++
	return nil
}

// State returns the context state.
func (c *Context) State() ports.AudioContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close marks the context closed.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ports.ContextClosed
	return nil
}

// Connections returns how many sources have been routed.
func (c *Context) Connections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.connected)
}

// Resumes returns how many times Resume succeeded.
func (c *Context) Resumes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumes
}

// Analysers returns every analyser created so far.
func (c *Context) Analysers() []*Analyser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Analyser(nil), c.analysers...)
}

// Factory hands out one shared Context and counts creation attempts.
type Factory struct {
	mu    sync.Mutex
	ctx   *Context
	fail  bool
	calls int
}

// NewFactory creates a factory that returns ctx.
func NewFactory(ctx *Context) *Factory {
	return &Factory{ctx: ctx}
}

// SetFail makes New fail as if no output device were present.
func (f *Factory) SetFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// New implements ports.AudioContextFactory.
func (f *Factory) New() (ports.AudioContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, domain.NewAudioGraphError("create_context", errors.New("mock device missing"))
	}
	return f.ctx, nil
}

// Calls returns how many times New ran.
func (f *Factory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Analyser is a mock analyser whose output is set directly by tests.
type Analyser struct {
	mu        sync.Mutex
	fftSize   int
	smoothing float64
	data      []uint8
	reads     int
}

// NewAnalyser creates a silent mock analyser.
func NewAnalyser(fftSize int) *Analyser {
	return &Analyser{fftSize: fftSize, data: make([]uint8, fftSize/2)}
}

// SetData replaces the spectrum returned by GetByteFrequencyData.
// Entries beyond the bin count are dropped; missing ones read as zero.
func (a *Analyser) SetData(data []uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.data)
	copy(a.data, data)
}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns FFTSize()/2.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// GetByteFrequencyData copies the configured spectrum into dst.
func (a *Analyser) GetByteFrequencyData(dst []uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	copy(dst, a.data)
}

// Reads returns how many times the spectrum was read.
func (a *Analyser) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

var (
	_ ports.AudioContext = (*Context)(nil)
	_ ports.Analyser     = (*Analyser)(nil)
)
