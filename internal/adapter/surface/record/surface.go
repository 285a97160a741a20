// Package record provides a ports.Surface that records draw calls instead of
// rasterising them. Renderer tests assert on the recorded geometry.
package record

import (
	"image/color"
	"sync"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Kind names a recorded draw call.
type Kind string

// Recorded call kinds.
const (
	KindClear        Kind = "clear"
	KindFillRect     Kind = "fill_rect"
	KindStrokeLine   Kind = "stroke_line"
	KindFillCircle   Kind = "fill_circle"
	KindStrokeCircle Kind = "stroke_circle"
	KindFillPath     Kind = "fill_path"
	KindStrokePath   Kind = "stroke_path"
	KindFillText     Kind = "fill_text"
)

// Op is one recorded call. Unused fields stay zero: rectangles use X, Y, W, H;
// lines use X, Y, X2, Y2 and Width; circles use X, Y, R; paths record their
// segment count in Segments.
type Op struct {
	Kind     Kind
	X, Y     float64
	X2, Y2   float64
	W, H     float64
	R        float64
	Width    float64
	Segments int
	Text     string
	Color    color.NRGBA
}

// Surface records draw calls.
//
// Thread-safety: This implementation is thread-safe.
type Surface struct {
	mu       sync.Mutex
	vp       domain.Viewport
	ops      []Op
	resizes  int
	presents int
}

// New creates a recording surface already sized to vp.
func New(vp domain.Viewport) *Surface {
	return &Surface{vp: vp}
}

func (s *Surface) add(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
}

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// Resize records the new viewport.
func (s *Surface) Resize(vp domain.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp = vp
	s.resizes++
}

// Size returns the logical size.
func (s *Surface) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp.Width, s.vp.Height
}

// Clear records a clear.
func (s *Surface) Clear(c color.Color) {
	s.add(Op{Kind: KindClear, Color: nrgba(c)})
}

// FillRect records a rectangle.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	s.add(Op{Kind: KindFillRect, X: x, Y: y, W: w, H: h, Color: nrgba(c)})
}

// StrokeLine records a line.
func (s *Surface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	s.add(Op{Kind: KindStrokeLine, X: x1, Y: y1, X2: x2, Y2: y2, Width: width, Color: nrgba(c)})
}

// FillCircle records a disc.
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	s.add(Op{Kind: KindFillCircle, X: cx, Y: cy, R: r, Color: nrgba(c)})
}

// StrokeCircle records a ring.
func (s *Surface) StrokeCircle(cx, cy, r, width float64, c color.Color) {
	s.add(Op{Kind: KindStrokeCircle, X: cx, Y: cy, R: r, Width: width, Color: nrgba(c)})
}

// FillPath records a filled path.
func (s *Surface) FillPath(p *domain.Path, c color.Color) {
	s.add(Op{Kind: KindFillPath, Segments: p.Len(), Color: nrgba(c)})
}

// StrokePath records a stroked path.
func (s *Surface) StrokePath(p *domain.Path, width float64, c color.Color) {
	s.add(Op{Kind: KindStrokePath, Segments: p.Len(), Width: width, Color: nrgba(c)})
}

// FillText records text.
func (s *Surface) FillText(text string, x, y float64, c color.Color) {
	s.add(Op{Kind: KindFillText, X: x, Y: y, Text: text, Color: nrgba(c)})
}

// Present counts a presented frame.
func (s *Surface) Present() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presents++
}

// Ops returns a copy of every recorded call.
func (s *Surface) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.ops...)
}

// OfKind returns the recorded calls of one kind, in order.
func (s *Surface) OfKind(kind Kind) []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Op
	for _, op := range s.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every string drawn.
func (s *Surface) Texts() []string {
	var out []string
	for _, op := range s.OfKind(KindFillText) {
		out = append(out, op.Text)
	}
	return out
}

// Reset forgets recorded calls but keeps counters.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = s.ops[:0]
}

// Presents returns how many frames were presented.
func (s *Surface) Presents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Resizes returns how many times Resize ran.
func (s *Surface) Resizes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resizes
}

var _ ports.Surface = (*Surface)(nil)
