package render

import (
	"math"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const dnaPairs = 48

// DNA draws a double helix whose strand amplitude follows the spectrum.
type DNA struct{}

// NewDNA creates the helix renderer.
func NewDNA() *DNA { return &DNA{} }

// Draw implements Renderer.
func (h *DNA) Draw(s ports.Surface, f *Frame) {
	mid := f.Height / 2
	for i := 0; i < dnaPairs; i++ {
		v := f.Sample(i, dnaPairs)
		x := f.Width * (float64(i) + 0.5) / dnaPairs
		sin, cos := math.Sincos(f.Time*2 + float64(i)*0.35)
		amp := f.Height * 0.25 * (0.4 + v*0.6)
		y1, y2 := mid+sin*amp, mid-sin*amp

		// strand nearer the viewer is brighter
		near := (cos + 1) / 2
		s.StrokeLine(x, y1, x, y2, 1.5, rgba(180, 200, 255, 0.3+0.5*v))
		s.FillCircle(x, y1, 2+v*4, hsla(0.55, 0.9, 0.4+0.3*near, 0.9))
		s.FillCircle(x, y2, 2+v*4, hsla(0.9, 0.9, 0.7-0.3*near, 0.9))
	}
}
