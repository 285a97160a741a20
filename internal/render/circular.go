package render

import (
	"math"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const (
	circularSpokes   = 128
	circularRotation = 0.25 // rad/s
)

// Circular draws radial spokes around a slowly rotating circle with a
// glowing centre.
type Circular struct{}

// NewCircular creates the circular renderer.
func NewCircular() *Circular { return &Circular{} }

// Draw implements Renderer.
func (c *Circular) Draw(s ports.Surface, f *Frame) {
	cx, cy := f.Width/2, f.Height/2
	d := f.MinDim()
	inner := d * 0.2
	rot := f.Time * circularRotation

	s.FillCircle(cx, cy, inner*0.9, hsla(f.Time*0.05, 0.8, 0.6, f.Snapshot.Mean()))

	for i := 0; i < circularSpokes; i++ {
		v := f.Sample(i, circularSpokes)
		a := float64(i)/circularSpokes*2*math.Pi + rot
		sin, cos := math.Sincos(a)
		outer := inner + v*d*0.3
		s.StrokeLine(cx+cos*inner, cy+sin*inner, cx+cos*outer, cy+sin*outer, 2,
			hsla(float64(i)/circularSpokes, 0.85, 0.6, 0.4+v*0.6))
	}
}
