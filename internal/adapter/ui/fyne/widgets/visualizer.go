// Package widgets provides custom Fyne widgets for beatviz.
package widgets

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/surface/raster"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

var _ ports.Container = (*Visualizer)(nil)
var _ fyne.DoubleTappable = (*Visualizer)(nil)

// Visualizer shows the frames presented on a raster surface and acts as the
// surface's layout container. The render loop draws off the UI thread; the
// widget only copies finished frames.
type Visualizer struct {
	widget.BaseWidget

	surface *raster.Surface
	raster  *canvas.Raster

	mu          sync.Mutex
	frame       *image.RGBA
	handlers    map[int]func()
	nextID      int
	onDoubleTap func()
}

// NewVisualizer creates a widget presenting surface.
func NewVisualizer(surface *raster.Surface) *Visualizer {
	v := &Visualizer{
		surface:  surface,
		handlers: make(map[int]func()),
	}
	v.raster = canvas.NewRaster(v.draw)
	v.raster.ScaleMode = canvas.ImageScaleFastest
	v.ExtendBaseWidget(v)

	surface.OnPresent(func() {
		fyne.Do(v.raster.Refresh)
	})
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *Visualizer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize keeps the widget expandable while leaving room for a caption.
func (v *Visualizer) MinSize() fyne.Size {
	return fyne.NewSize(160, 90)
}

// draw is the raster generator.
func (v *Visualizer) draw(w, h int) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = v.surface.CopyFrame(v.frame)
	if v.frame.Bounds().Empty() {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return v.frame
}

// Resize notifies resize handlers after the layout change.
func (v *Visualizer) Resize(size fyne.Size) {
	if size == v.Size() {
		return
	}
	v.BaseWidget.Resize(size)

	v.mu.Lock()
	handlers := make([]func(), 0, len(v.handlers))
	for _, h := range v.handlers {
		handlers = append(handlers, h)
	}
	v.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// Bounds implements ports.Container.
func (v *Visualizer) Bounds() (float64, float64) {
	s := v.Size()
	return float64(s.Width), float64(s.Height)
}

// DevicePixelRatio implements ports.Container using the canvas scale.
func (v *Visualizer) DevicePixelRatio() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	c := app.Driver().CanvasForObject(v)
	if c == nil {
		return 1
	}
	return float64(c.Scale())
}

// OnResize implements ports.Container.
func (v *Visualizer) OnResize(handler func()) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.handlers[id] = handler
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.handlers, id)
			v.mu.Unlock()
		})
	}
}

// SetOnDoubleTap sets the double-tap callback.
func (v *Visualizer) SetOnDoubleTap(fn func()) {
	v.mu.Lock()
	v.onDoubleTap = fn
	v.mu.Unlock()
}

// DoubleTapped implements fyne.DoubleTappable.
func (v *Visualizer) DoubleTapped(_ *fyne.PointEvent) {
	v.mu.Lock()
	fn := v.onDoubleTap
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}
