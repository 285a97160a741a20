package render

import "github.com/tejashwikalptaru/beatviz/internal/ports"

const (
	barCount       = 64
	barHeightCap   = 0.7
	barBaseline    = 0.8
	barGap         = 2.0
	barReflection  = 0.25
	barReflectGain = 0.3
)

// Bars draws vertical bars over the spectrum with a faded reflection below
// the baseline.
type Bars struct{}

// NewBars creates the bars renderer.
func NewBars() *Bars { return &Bars{} }

// Draw draws every bar first, then every reflection.
func (b *Bars) Draw(s ports.Surface, f *Frame) {
	w := f.Width / barCount
	base := f.Height * barBaseline
	inset := min(barGap, w/2)

	for i := 0; i < barCount; i++ {
		v := f.Sample(i, barCount)
		h := v * f.Height * barHeightCap
		s.FillRect(float64(i)*w+inset/2, base-h, w-inset, h,
			hsla(float64(i)/barCount*0.8, 0.85, 0.45+0.2*v, 1))
	}
	for i := 0; i < barCount; i++ {
		v := f.Sample(i, barCount)
		h := v * f.Height * barHeightCap
		s.FillRect(float64(i)*w+inset/2, base, w-inset, h*barReflection,
			hsla(float64(i)/barCount*0.8, 0.85, 0.45+0.2*v, barReflectGain*v))
	}
}
