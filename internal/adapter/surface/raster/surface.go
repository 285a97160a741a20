// Package raster implements ports.Surface over an image.RGBA, rasterising
// shapes with golang.org/x/image/vector and text with basicfont.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// quadSteps is how many segments a quadratic curve is flattened into for stroking.
const quadSteps = 12

// Surface is a double-buffered software canvas. Drawing happens on the back
// buffer from the render loop; Present copies it to the front buffer that UI
// goroutines read through CopyFrame.
type Surface struct {
	back  *image.RGBA
	vp    domain.Viewport
	scale float64
	rast  vector.Rasterizer
	face  font.Face

	mu        sync.Mutex
	front     *image.RGBA
	presented int
	onPresent func()
}

// New creates an empty surface; call Resize before drawing.
func New() *Surface {
	return &Surface{
		back:  image.NewRGBA(image.Rect(0, 0, 0, 0)),
		front: image.NewRGBA(image.Rect(0, 0, 0, 0)),
		scale: 1,
		face:  basicfont.Face7x13,
	}
}

// OnPresent registers a callback run after each Present, outside the lock.
func (s *Surface) OnPresent(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPresent = fn
}

// Resize reallocates both buffers for vp.
func (s *Surface) Resize(vp domain.Viewport) {
	w, h := vp.PixelSize()
	s.vp = vp
	s.scale = vp.PixelRatio
	if s.scale <= 0 {
		s.scale = 1
	}
	s.back = image.NewRGBA(image.Rect(0, 0, w, h))

	s.mu.Lock()
	s.front = image.NewRGBA(image.Rect(0, 0, w, h))
	s.mu.Unlock()
}

// Size returns the logical size.
func (s *Surface) Size() (float64, float64) {
	return s.vp.Width, s.vp.Height
}

// Clear fills every pixel with c, replacing what was there.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.back, s.back.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *Surface) begin() bool {
	b := s.back.Bounds()
	if b.Empty() {
		return false
	}
	s.rast.Reset(b.Dx(), b.Dy())
	s.rast.DrawOp = draw.Over
	return true
}

func (s *Surface) finish(c color.Color) {
	s.rast.Draw(s.back, s.back.Bounds(), image.NewUniform(c), image.Point{})
}

func (s *Surface) pt(x, y float64) (float32, float32) {
	return float32(x * s.scale), float32(y * s.scale)
}

func (s *Surface) moveTo(x, y float64) {
	px, py := s.pt(x, y)
	s.rast.MoveTo(px, py)
}

func (s *Surface) lineTo(x, y float64) {
	px, py := s.pt(x, y)
	s.rast.LineTo(px, py)
}

// FillRect blends a filled rectangle.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 || !s.begin() {
		return
	}
	s.moveTo(x, y)
	s.lineTo(x+w, y)
	s.lineTo(x+w, y+h)
	s.lineTo(x, y+h)
	s.rast.ClosePath()
	s.finish(c)
}

// addSegment adds a quad covering the line from (x1, y1) to (x2, y2).
func (s *Surface) addSegment(x1, y1, x2, y2, width float64) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	s.moveTo(x1+nx, y1+ny)
	s.lineTo(x2+nx, y2+ny)
	s.lineTo(x2-nx, y2-ny)
	s.lineTo(x1-nx, y1-ny)
	s.rast.ClosePath()
}

// StrokeLine blends a line of the given width.
func (s *Surface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	if width <= 0 || !s.begin() {
		return
	}
	s.addSegment(x1, y1, x2, y2, width)
	s.finish(c)
}

func (s *Surface) addCircle(cx, cy, r float64) {
	k := r * kappa
	s.moveTo(cx+r, cy)
	s.cubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	s.cubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	s.cubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	s.cubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	s.rast.ClosePath()
}

func (s *Surface) cubeTo(ax, ay, bx, by, x, y float64) {
	pax, pay := s.pt(ax, ay)
	pbx, pby := s.pt(bx, by)
	px, py := s.pt(x, y)
	s.rast.CubeTo(pax, pay, pbx, pby, px, py)
}

// FillCircle blends a filled circle.
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	if r <= 0 || !s.begin() {
		return
	}
	s.addCircle(cx, cy, r)
	s.finish(c)
}

// StrokeCircle blends a ring between r-width/2 and r+width/2.
func (s *Surface) StrokeCircle(cx, cy, r, width float64, c color.Color) {
	if r <= 0 || width <= 0 || !s.begin() {
		return
	}
	outer := r + width/2
	inner := math.Max(r-width/2, 0)

	// outer clockwise, inner counter-clockwise, so the hole cancels
	s.addCircle(cx, cy, outer)
	if inner > 0 {
		k := inner * kappa
		s.moveTo(cx+inner, cy)
		s.cubeTo(cx+inner, cy-k, cx+k, cy-inner, cx, cy-inner)
		s.cubeTo(cx-k, cy-inner, cx-inner, cy-k, cx-inner, cy)
		s.cubeTo(cx-inner, cy+k, cx-k, cy+inner, cx, cy+inner)
		s.cubeTo(cx+k, cy+inner, cx+inner, cy+k, cx+inner, cy)
		s.rast.ClosePath()
	}
	s.finish(c)
}

// FillPath blends the interior of p.
func (s *Surface) FillPath(p *domain.Path, c color.Color) {
	if p == nil || p.Len() == 0 || !s.begin() {
		return
	}
	// vector does not close sub-paths on MoveTo
	open := false
	for _, seg := range p.Segments {
		switch seg.Op {
		case domain.PathMoveTo:
			if open {
				s.rast.ClosePath()
			}
			s.moveTo(seg.X, seg.Y)
			open = true
		case domain.PathLineTo:
			s.lineTo(seg.X, seg.Y)
		case domain.PathQuadTo:
			cx, cy := s.pt(seg.CX, seg.CY)
			px, py := s.pt(seg.X, seg.Y)
			s.rast.QuadTo(cx, cy, px, py)
		case domain.PathClose:
			s.rast.ClosePath()
			open = false
		}
	}
	if open {
		s.rast.ClosePath()
	}
	s.finish(c)
}

// StrokePath blends the outline of p as a chain of segments.
// Quadratic curves are flattened first.
func (s *Surface) StrokePath(p *domain.Path, width float64, c color.Color) {
	if p == nil || p.Len() == 0 || width <= 0 || !s.begin() {
		return
	}
	var startX, startY, curX, curY float64
	for _, seg := range p.Segments {
		switch seg.Op {
		case domain.PathMoveTo:
			startX, startY = seg.X, seg.Y
			curX, curY = seg.X, seg.Y
		case domain.PathLineTo:
			s.addSegment(curX, curY, seg.X, seg.Y, width)
			curX, curY = seg.X, seg.Y
		case domain.PathQuadTo:
			prevX, prevY := curX, curY
			for i := 1; i <= quadSteps; i++ {
				t := float64(i) / quadSteps
				mt := 1 - t
				x := mt*mt*curX + 2*mt*t*seg.CX + t*t*seg.X
				y := mt*mt*curY + 2*mt*t*seg.CY + t*t*seg.Y
				s.addSegment(prevX, prevY, x, y, width)
				prevX, prevY = x, y
			}
			curX, curY = seg.X, seg.Y
		case domain.PathClose:
			s.addSegment(curX, curY, startX, startY, width)
			curX, curY = startX, startY
		}
	}
	s.finish(c)
}

// FillText draws text in the 7x13 bitmap face with its baseline at (x, y).
func (s *Surface) FillText(text string, x, y float64, c color.Color) {
	if text == "" || s.back.Bounds().Empty() {
		return
	}
	d := font.Drawer{
		Dst:  s.back,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.P(int(x*s.scale), int(y*s.scale)),
	}
	d.DrawString(text)
}

// MeasureText returns the logical advance width of text.
func (s *Surface) MeasureText(text string) float64 {
	adv := font.MeasureString(s.face, text)
	return float64(adv.Round()) / s.scale
}

// Present copies the back buffer to the front buffer.
func (s *Surface) Present() {
	s.mu.Lock()
	if s.front.Bounds() != s.back.Bounds() {
		s.front = image.NewRGBA(s.back.Bounds())
	}
	copy(s.front.Pix, s.back.Pix)
	s.presented++
	fn := s.onPresent
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Presented returns how many frames were presented.
func (s *Surface) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// CopyFrame copies the last presented frame into dst, reallocating dst when
// the size changed, and returns it.
func (s *Surface) CopyFrame(dst *image.RGBA) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dst == nil || dst.Bounds() != s.front.Bounds() {
		dst = image.NewRGBA(s.front.Bounds())
	}
	copy(dst.Pix, s.front.Pix)
	return dst
}

// Back exposes the drawing buffer for tests on the render goroutine.
func (s *Surface) Back() *image.RGBA {
	return s.back
}

var _ ports.Surface = (*Surface)(nil)
