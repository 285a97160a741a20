package render

import (
	"math"
	"math/rand/v2"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// galaxyExpansion is how far orbits grow at full bass.
const galaxyExpansion = 0.8

type star struct {
	angle   float64
	base    float64 // orbit radius as a fraction of the smaller side
	radius  float64 // current radius after bass expansion
	speed   float64 // radians per tick
	size    float64
	hue     float64
	opacity float64
}

// Galaxy orbits a fixed pool of particles around the centre. Orbits swell
// with the bass. The pool is allocated once and never grows.
type Galaxy struct {
	stars []star
}

// NewGalaxy seeds a pool of n particles from rng.
func NewGalaxy(n int, rng *rand.Rand) *Galaxy {
	g := &Galaxy{stars: make([]star, n)}
	for i := range g.stars {
		base := 0.05 + rng.Float64()*0.4
		g.stars[i] = star{
			angle:   rng.Float64() * 2 * math.Pi,
			base:    base,
			radius:  base,
			speed:   (0.002 + rng.Float64()*0.01) * (1 - base),
			size:    0.8 + rng.Float64()*2.2,
			hue:     0.55 + rng.Float64()*0.35,
			opacity: 0.3 + rng.Float64()*0.7,
		}
	}
	return g
}

// Len returns the pool size.
func (g *Galaxy) Len() int { return len(g.stars) }

// Positions appends each particle's angle and current radius to dst.
func (g *Galaxy) Positions(dst [][2]float64) [][2]float64 {
	for _, st := range g.stars {
		dst = append(dst, [2]float64{st.angle, st.radius})
	}
	return dst
}

// Advance rotates every particle by its speed and rescales its orbit.
func (g *Galaxy) Advance(f *Frame) {
	grow := 1 + f.Bass*galaxyExpansion
	for i := range g.stars {
		st := &g.stars[i]
		st.angle = math.Mod(st.angle+st.speed, 2*math.Pi)
		st.radius = st.base * grow
	}
}

// Draw implements Renderer.
func (g *Galaxy) Draw(s ports.Surface, f *Frame) {
	cx, cy := f.Width/2, f.Height/2
	d := f.MinDim()

	s.FillCircle(cx, cy, d*0.04*(1+f.Bass), hsla(0.75, 0.6, 0.7, 0.25+f.Bass*0.5))
	for _, st := range g.stars {
		sin, cos := math.Sincos(st.angle)
		s.FillCircle(cx+cos*st.radius*d, cy+sin*st.radius*d, st.size*(1+f.Bass),
			hsla(st.hue, 0.8, 0.65, st.opacity*(0.5+f.Bass)))
	}
}
