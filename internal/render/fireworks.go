package render

import (
	"math"
	"math/rand/v2"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const (
	fireworksBassThreshold = 0.55
	fireworksSpawnGate     = 0.25
	fireworksBurstSize     = 40
	fireworksMaxBursts     = 8
	fireworksDecay         = 0.02
	fireworksGravity       = 0.0002
)

type spark struct {
	x, y   float64 // fractions of the viewport
	vx, vy float64
	life   float64
}

type burst struct {
	hue    float64
	sparks [fireworksBurstSize]spark
}

func (b *burst) alive() bool {
	for i := range b.sparks {
		if b.sparks[i].life > 0 {
			return true
		}
	}
	return false
}

// Fireworks launches particle bursts on strong bass. At most
// fireworksMaxBursts are live at once; spent bursts are recycled.
type Fireworks struct {
	rng    *rand.Rand
	live   []*burst
	spares []*burst
}

// NewFireworks creates the fireworks simulation.
func NewFireworks(rng *rand.Rand) *Fireworks {
	return &Fireworks{
		rng:  rng,
		live: make([]*burst, 0, fireworksMaxBursts),
	}
}

// Bursts returns the number of live bursts.
func (fw *Fireworks) Bursts() int { return len(fw.live) }

// LiveParticles counts sparks with life left.
func (fw *Fireworks) LiveParticles() int {
	n := 0
	for _, b := range fw.live {
		for i := range b.sparks {
			if b.sparks[i].life > 0 {
				n++
			}
		}
	}
	return n
}

// Advance decays existing bursts, drops spent ones and maybe launches one.
func (fw *Fireworks) Advance(f *Frame) {
	kept := fw.live[:0]
	for _, b := range fw.live {
		for i := range b.sparks {
			sp := &b.sparks[i]
			if sp.life <= 0 {
				continue
			}
			sp.x += sp.vx
			sp.y += sp.vy
			sp.vy += fireworksGravity
			sp.life = max(0, sp.life-fireworksDecay)
		}
		if b.alive() {
			kept = append(kept, b)
		} else {
			fw.spares = append(fw.spares, b)
		}
	}
	clear(fw.live[len(kept):])
	fw.live = kept

	if f.Bass > fireworksBassThreshold && fw.rng.Float64() < fireworksSpawnGate && len(fw.live) < fireworksMaxBursts {
		fw.launch()
	}
}

func (fw *Fireworks) launch() {
	var b *burst
	if n := len(fw.spares); n > 0 {
		b = fw.spares[n-1]
		fw.spares = fw.spares[:n-1]
	} else {
		b = &burst{}
	}

	x := 0.2 + fw.rng.Float64()*0.6
	y := 0.2 + fw.rng.Float64()*0.4
	b.hue = fw.rng.Float64()
	for i := range b.sparks {
		a := fw.rng.Float64() * 2 * math.Pi
		v := 0.004 + fw.rng.Float64()*0.008
		sin, cos := math.Sincos(a)
		b.sparks[i] = spark{x: x, y: y, vx: cos * v, vy: sin * v, life: 1}
	}
	fw.live = append(fw.live, b)
}

// Draw implements Renderer.
func (fw *Fireworks) Draw(s ports.Surface, f *Frame) {
	for _, b := range fw.live {
		for i := range b.sparks {
			sp := &b.sparks[i]
			if sp.life <= 0 {
				continue
			}
			s.FillCircle(sp.x*f.Width, sp.y*f.Height, 0.5+2*sp.life, hsla(b.hue, 1, 0.6, sp.life))
		}
	}
}
