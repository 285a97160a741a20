package render

import (
	"math"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const (
	waveTraces = 3
	wavePoints = 64
	waveOffset = 14.0
)

// Wave draws layered, filled waveform traces smoothed with quadratic curves.
type Wave struct {
	line domain.Path
	fill domain.Path
	ys   [wavePoints]float64
}

// NewWave creates the wave renderer.
func NewWave() *Wave { return &Wave{} }

// Draw draws the back trace first.
func (wv *Wave) Draw(s ports.Surface, f *Frame) {
	step := f.Width / (wavePoints - 1)
	amp := f.Height * 0.35

	for k := waveTraces - 1; k >= 0; k-- {
		mid := f.Height/2 + float64(k)*waveOffset
		for i := range wv.ys {
			v := f.Sample(i, wavePoints)
			sway := 0.6 + 0.4*math.Sin(f.Time*2+float64(i)*0.3+float64(k))
			wv.ys[i] = mid - v*amp*sway
		}

		wv.line.Reset()
		wv.line.MoveTo(0, wv.ys[0])
		for i := 1; i < wavePoints; i++ {
			x0, x1 := float64(i-1)*step, float64(i)*step
			wv.line.QuadTo(x0, wv.ys[i-1], (x0+x1)/2, (wv.ys[i-1]+wv.ys[i])/2)
		}
		wv.line.LineTo(f.Width, wv.ys[wavePoints-1])

		wv.fill.Reset()
		wv.fill.Segments = append(wv.fill.Segments, wv.line.Segments...)
		wv.fill.LineTo(f.Width, f.Height)
		wv.fill.LineTo(0, f.Height)
		wv.fill.Close()

		hue := 0.5 + float64(k)*0.1 + f.Time*0.05
		s.FillPath(&wv.fill, hsla(hue, 0.8, 0.55, 0.35))
		s.StrokePath(&wv.line, 2, hsla(hue, 0.9, 0.65, 0.9))
	}
}
