package render

import (
	"math"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const (
	mountainLayers = 4
	mountainPoints = 48
)

// Mountains draws layered ridgelines, back to front, each shaped by the
// spectrum.
type Mountains struct {
	path domain.Path
}

// NewMountains creates the mountains renderer.
func NewMountains() *Mountains { return &Mountains{} }

// Draw implements Renderer.
func (m *Mountains) Draw(s ports.Surface, f *Frame) {
	step := f.Width / (mountainPoints - 1)

	for k := 0; k < mountainLayers; k++ {
		lift := f.Height * (0.45 - 0.1*float64(k))
		amp := f.Height * (0.15 + 0.05*float64(k))

		m.path.Reset()
		m.path.MoveTo(0, f.Height)
		for i := 0; i < mountainPoints; i++ {
			v := f.Sample(i+k*3, mountainPoints)
			y := f.Height - (lift + v*amp + math.Sin(f.Time*0.5+float64(i)*0.3+float64(k))*6)
			m.path.LineTo(float64(i)*step, y)
		}
		m.path.LineTo(f.Width, f.Height)
		m.path.Close()

		depth := float64(k) / (mountainLayers - 1)
		s.FillPath(&m.path, hsla(0.62-0.08*depth, 0.5, 0.15+0.25*depth, 0.6+0.4*depth))
	}
}
