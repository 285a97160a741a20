// Package render contains the mode renderers and the registry that owns
// their simulation state.
//
// Every renderer draws one frame from a read-only Frame. Renderers with
// simulation state also implement Simulation; the registry advances every
// simulation each tick whatever mode is on screen, so switching modes never
// changes how another mode's state evolves.
package render

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Frame is everything a renderer may read for one tick.
type Frame struct {
	Snapshot domain.FrequencySnapshot
	Width    float64
	Height   float64

	// Time is seconds since the loop started; Delta is seconds since the last tick.
	Time  float64
	Delta float64

	// Bass is the bass-band mean in [0, 1].
	Bass float64
}

// NewFrame builds a frame, computing the bass average over band.
func NewFrame(snapshot domain.FrequencySnapshot, width, height float64, elapsed, delta time.Duration, band domain.BandRange) *Frame {
	return &Frame{
		Snapshot: snapshot,
		Width:    width,
		Height:   height,
		Time:     elapsed.Seconds(),
		Delta:    delta.Seconds(),
		Bass:     snapshot.BandMean(band.Start, band.End),
	}
}

// MinDim returns the smaller side.
func (f *Frame) MinDim() float64 {
	return min(f.Width, f.Height)
}

// Sample returns the normalized magnitude for slot i of n, picking the
// nearest snapshot bin. Short snapshots wrap.
func (f *Frame) Sample(i, n int) float64 {
	l := len(f.Snapshot)
	if l == 0 || n <= 0 {
		return 0
	}
	return f.Snapshot.Norm(i * l / n)
}

// Renderer draws one frame.
type Renderer interface {
	Draw(s ports.Surface, f *Frame)
}

// Simulation is a renderer whose state evolves every tick.
type Simulation interface {
	Advance(f *Frame)
}

// Config holds renderer tuning.
type Config struct {
	// ParticlePoolSize is the fixed galaxy pool size.
	ParticlePoolSize int

	// BassBand is the bin range averaged into Frame.Bass.
	BassBand domain.BandRange

	// Seed makes every stochastic mode reproducible.
	Seed uint64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		ParticlePoolSize: 100,
		BassBand:         domain.BandRange{Start: 0, End: 8},
		Seed:             1,
	}
}

// Registry owns one renderer per mode plus the idle animation. It is only
// used from the render loop goroutine.
type Registry struct {
	cfg       Config
	renderers map[domain.RenderMode]Renderer
	sims      []Simulation
	idle      *Idle

	bars      *Bars
	galaxy    *Galaxy
	fireworks *Fireworks
	matrix    *Matrix
}

// NewRegistry builds every renderer once.
func NewRegistry(cfg Config) *Registry {
	if cfg.ParticlePoolSize <= 0 {
		cfg.ParticlePoolSize = DefaultConfig().ParticlePoolSize
	}
	if cfg.BassBand.End <= cfg.BassBand.Start {
		cfg.BassBand = DefaultConfig().BassBand
	}

	// each stochastic mode gets its own stream so one mode's draws never
	// shift another's sequence
	rng := func(stream uint64) *rand.Rand {
		return rand.New(rand.NewPCG(cfg.Seed, stream))
	}

	r := &Registry{
		cfg:       cfg,
		bars:      NewBars(),
		galaxy:    NewGalaxy(cfg.ParticlePoolSize, rng(1)),
		fireworks: NewFireworks(rng(2)),
		matrix:    NewMatrix(rng(3)),
		idle:      NewIdle(),
	}
	r.renderers = map[domain.RenderMode]Renderer{
		domain.ModeBars:      r.bars,
		domain.ModeWave:      NewWave(),
		domain.ModeCircular:  NewCircular(),
		domain.ModeGalaxy:    r.galaxy,
		domain.ModeDNA:       NewDNA(),
		domain.ModeFireworks: r.fireworks,
		domain.ModeMatrix:    r.matrix,
		domain.ModeRings:     NewRings(),
		domain.ModeMountains: NewMountains(),
		domain.ModeBlob:      NewBlob(),
	}
	// fixed order keeps advancement deterministic
	r.sims = []Simulation{r.galaxy, r.fireworks, r.matrix}
	return r
}

// BassBand returns the configured bass band.
func (r *Registry) BassBand() domain.BandRange {
	return r.cfg.BassBand
}

// Renderer returns the renderer for mode.
func (r *Registry) Renderer(mode domain.RenderMode) (Renderer, bool) {
	rd, ok := r.renderers[mode]
	return rd, ok
}

// Draw dispatches to the renderer for mode.
func (r *Registry) Draw(mode domain.RenderMode, s ports.Surface, f *Frame) error {
	rd, ok := r.renderers[mode]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}
	rd.Draw(s, f)
	return nil
}

// DrawIdle draws the ambient animation with caption.
func (r *Registry) DrawIdle(s ports.Surface, f *Frame, caption string) {
	r.idle.Draw(s, f, caption)
}

// Advance steps every simulation by one tick.
func (r *Registry) Advance(f *Frame) {
	for _, sim := range r.sims {
		sim.Advance(f)
	}
}

// Galaxy exposes the galaxy simulation for inspection.
func (r *Registry) Galaxy() *Galaxy { return r.galaxy }

// Fireworks exposes the fireworks simulation for inspection.
func (r *Registry) Fireworks() *Fireworks { return r.fireworks }

// Matrix exposes the matrix simulation for inspection.
func (r *Registry) Matrix() *Matrix { return r.matrix }
