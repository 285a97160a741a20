package beepaudio

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/beatviz/internal/analysis"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

var errForeignSource = errors.New("source was not opened by this audio backend")

// Context is the analysis graph over an Output. Routing a source installs
// an analyser on its tap; playback itself never depends on the context.
type Context struct {
	logger *slog.Logger
	out    *Output

	mu    sync.Mutex
	state ports.AudioContextState
}

// NewContextFactory returns a factory that opens the output device and
// builds a context over it. Device failures wrap domain.ErrDeviceUnavailable.
func NewContextFactory(out *Output, logger *slog.Logger) ports.AudioContextFactory {
	return func() (ports.AudioContext, error) {
		if err := out.Start(); err != nil {
			return nil, domain.NewAudioGraphError("create_context", err)
		}
		return &Context{
			logger: logger.With(slog.String("adapter", "beep_context")),
			out:    out,
			state:  ports.ContextSuspended,
		}, nil
	}
}

// CreateAnalyser builds an FFT analyser.
func (c *Context) CreateAnalyser(fftSize int, smoothing float64) (ports.Analyser, error) {
	a, err := analysis.New(fftSize, smoothing)
	if err != nil {
		return nil, domain.NewAudioGraphError("create_analyser", err)
	}
	return a, nil
}

// Connect routes source into analyser. Each source accepts one analyser.
func (c *Context) Connect(source ports.MediaSource, analyser ports.Analyser) error {
	src, ok := source.(*Source)
	if !ok {
		return domain.NewAudioGraphError("connect", errForeignSource)
	}
	sink, ok := analyser.(SampleSink)
	if !ok {
		return domain.NewAudioGraphError("connect", errors.New("analyser cannot receive samples"))
	}
	if !src.attach(sink) {
		return domain.NewAudioGraphError("connect", domain.ErrAlreadyConnected)
	}
	c.logger.Debug("source connected", slog.String("title", src.Info().Title))
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
	return nil
}

// State returns the context state.
func (c *Context) State() ports.AudioContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close silences the output.
func (c *Context) Close() error {
	c.mu.Lock()
	c.state = ports.ContextClosed
	c.mu.Unlock()
	c.out.Close()
	return nil
}

var _ ports.AudioContext = (*Context)(nil)
