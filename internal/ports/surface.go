package ports

import (
	"image/color"
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// Surface is a 2D drawing target addressed in logical units.
// The backing buffer is scaled by the viewport pixel ratio, so renderers never
// see device pixels.
//
// Thread-safety: drawing methods are only called from the render loop.
// Implementations that expose the presented image to other goroutines must
// guard it themselves.
type Surface interface {
	// Resize reallocates the backing buffer for vp. This discards the contents.
	Resize(vp domain.Viewport)

	// Size returns the logical width and height.
	Size() (width, height float64)

	// Clear replaces every pixel with c.
	Clear(c color.Color)

	// FillRect blends a filled rectangle.
	FillRect(x, y, w, h float64, c color.Color)

	// StrokeLine blends a line of the given width.
	StrokeLine(x1, y1, x2, y2, width float64, c color.Color)

	// FillCircle blends a filled circle.
	FillCircle(cx, cy, r float64, c color.Color)

	// StrokeCircle blends a circle outline.
	StrokeCircle(cx, cy, r, width float64, c color.Color)

	// FillPath blends a filled path (nonzero winding).
	FillPath(p *domain.Path, c color.Color)

	// StrokePath blends the outline of p.
	StrokePath(p *domain.Path, width float64, c color.Color)

	// FillText draws text with its baseline starting at (x, y).
	FillText(text string, x, y float64, c color.Color)

	// Present publishes the finished frame.
	Present()
}

// Container is the host element the surface is laid out in.
type Container interface {
	// Bounds returns the logical size the surface should fill.
	Bounds() (width, height float64)

	// DevicePixelRatio returns device pixels per logical unit.
	DevicePixelRatio() float64

	// OnResize registers a handler for layout changes and returns its teardown.
	OnResize(handler func()) (unsubscribe func())
}

// CancelFunc cancels a scheduled callback. Calling it more than once is a no-op.
type CancelFunc func()

// FrameCallback runs once per display frame.
type FrameCallback func(now time.Time)

// Scheduler requests display-synchronised callbacks.
// At most one callback is pending per request; the render loop re-requests
// at the end of every frame.
type Scheduler interface {
	ScheduleNextFrame(cb FrameCallback) CancelFunc
}

// Timer runs delayed callbacks, used for debouncing.
type Timer interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}
