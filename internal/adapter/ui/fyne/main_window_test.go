package fyne

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/surface/raster"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{61*time.Second + 900*time.Millisecond, "01:01"},
		{125 * time.Minute, "125:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), tt.in.String())
	}
}

func TestMainWindowForwardsToPresenter(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	f := newFixture(t)
	w := NewMainWindow(app, raster.New(), logger.NewTestLogger())
	w.SetPresenter(f.presenter)
	assert.NotNil(t, w.Visualizer())

	test.Tap(w.fullscreenButton)
	assert.True(t, f.store.Fullscreen())

	w.modeSelect.OnChanged("Matrix")
	assert.Equal(t, domain.ModeMatrix, f.store.Mode())

	w.modeSelect.OnChanged("Nope")
	assert.Equal(t, domain.ModeMatrix, f.store.Mode())
	assert.Equal(t, []string{"Mode"}, f.view.errors)

	w.volumeSlider.OnChanged(20)
	assert.InDelta(t, 0.2, f.store.Volume(), 1e-9)
}
