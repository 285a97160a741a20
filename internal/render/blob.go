package render

import (
	"math"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const blobVertices = 64

// Blob draws a closed organic shape whose radius at each vertex follows the
// spectrum, smoothed through vertex midpoints.
type Blob struct {
	path domain.Path
	xs   [blobVertices]float64
	ys   [blobVertices]float64
}

// NewBlob creates the blob renderer.
func NewBlob() *Blob { return &Blob{} }

// Draw implements Renderer.
func (b *Blob) Draw(s ports.Surface, f *Frame) {
	cx, cy := f.Width/2, f.Height/2
	d := f.MinDim()

	for i := 0; i < blobVertices; i++ {
		v := f.Sample(i, blobVertices)
		r := d*0.22*(1+v*0.6) + math.Sin(f.Time*2+float64(i)*0.35)*d*0.02
		sin, cos := math.Sincos(float64(i) / blobVertices * 2 * math.Pi)
		b.xs[i], b.ys[i] = cx+cos*r, cy+sin*r
	}

	last := blobVertices - 1
	b.path.Reset()
	b.path.MoveTo((b.xs[last]+b.xs[0])/2, (b.ys[last]+b.ys[0])/2)
	for i := 0; i < blobVertices; i++ {
		j := (i + 1) % blobVertices
		b.path.QuadTo(b.xs[i], b.ys[i], (b.xs[i]+b.xs[j])/2, (b.ys[i]+b.ys[j])/2)
	}
	b.path.Close()

	hue := f.Time * 0.03
	s.FillPath(&b.path, hsla(hue, 0.7, 0.5, 0.55))
	s.StrokePath(&b.path, 2, hsla(hue+0.1, 0.8, 0.7, 0.9))
}
