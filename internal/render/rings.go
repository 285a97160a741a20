package render

import (
	"math"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const ringCount = 5

// Rings draws concentric rings, one per frequency band, each breathing with
// its band's energy.
type Rings struct{}

// NewRings creates the rings renderer.
func NewRings() *Rings { return &Rings{} }

// Draw implements Renderer.
func (r *Rings) Draw(s ports.Surface, f *Frame) {
	cx, cy := f.Width/2, f.Height/2
	d := f.MinDim()
	n := len(f.Snapshot)
	span := max(1, n/ringCount)

	for k := 0; k < ringCount; k++ {
		band := f.Snapshot.BandMean(k*span, (k+1)*span)
		radius := d*(0.08+0.08*float64(k))*(1+band*0.5) + math.Sin(f.Time*1.5+float64(k))*4
		if radius <= 0 {
			continue
		}
		s.StrokeCircle(cx, cy, radius, 2+band*4,
			hsla(float64(k)/ringCount+f.Time*0.02, 0.8, 0.6, 0.3+band))
	}
}
