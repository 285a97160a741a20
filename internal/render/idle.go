package render

import (
	"math"
	"unicode/utf8"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Idle captions.
const (
	CaptionNoSource  = "Load a track to begin"
	CaptionPaused    = "Paused"
	CaptionListening = "Listening..."
)

const (
	idleRings = 3
	// glyph advance of the raster surface's font
	idleGlyphWidth = 7.0
)

// TextMeasurer is implemented by surfaces that can measure text.
type TextMeasurer interface {
	MeasureText(text string) float64
}

// Idle is the ambient animation shown when there is no audio energy.
type Idle struct{}

// NewIdle creates the idle renderer.
func NewIdle() *Idle { return &Idle{} }

// Draw draws expanding rings and a centred caption.
func (i *Idle) Draw(s ports.Surface, f *Frame, caption string) {
	cx, cy := f.Width/2, f.Height/2
	d := f.MinDim()

	for k := 0; k < idleRings; k++ {
		phase := f.Time*0.8 + float64(k)/idleRings
		p := phase - math.Floor(phase)
		s.StrokeCircle(cx, cy, d*0.1+p*d*0.35, 2, hsla(0.6+0.1*float64(k), 0.6, 0.6, 0.5*(1-p)))
	}
	s.FillCircle(cx, cy, 6+3*math.Sin(f.Time*2), hsla(0.6, 0.6, 0.7, 0.8))

	if caption == "" {
		return
	}
	var tw float64
	if m, ok := s.(TextMeasurer); ok {
		tw = m.MeasureText(caption)
	} else {
		tw = float64(utf8.RuneCountInString(caption)) * idleGlyphWidth
	}
	s.FillText(caption, cx-tw/2, cy+d*0.4, rgba(220, 225, 240, 0.85))
}
