package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/surface/record"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

func TestMeasureClampsPixelRatio(t *testing.T) {
	vm := NewViewportManager(nil, nil, scheduler.NewManualTimer(), DefaultViewportConfig())

	tests := []struct {
		ratio float64
		want  float64
	}{
		{1, 1},
		{1.5, 1.5},
		{3, 2},
		{0.5, 1},
		{0, 1},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		vp := vm.Measure(newContainer(300, 150, tt.ratio))
		assert.Equal(t, tt.want, vp.PixelRatio, "ratio %v", tt.ratio)
		assert.Equal(t, 300.0, vp.Width)
	}

	vp := vm.Measure(newContainer(-5, 10, 1))
	assert.Zero(t, vp.Width)
}

func TestBurstOfResizesAllocatesOnce(t *testing.T) {
	timer := scheduler.NewManualTimer()
	vm := NewViewportManager(nil, nil, timer, DefaultViewportConfig())
	s := record.New(domain.Viewport{})
	c := newContainer(100, 100, 1)

	for i := 0; i < 25; i++ {
		c.w = float64(100 + i)
		vm.RequestResize(c)
		timer.Advance(10 * time.Millisecond)
		assert.False(t, vm.ApplyPending(s))
	}
	timer.Advance(100 * time.Millisecond)
	assert.True(t, vm.ApplyPending(s))
	assert.False(t, vm.ApplyPending(s))

	assert.Equal(t, 1, vm.Allocations())
	assert.Equal(t, 1, s.Resizes())
	assert.Equal(t, 124.0, vm.Current().Width)
}

func TestApplySkipsUnchangedViewport(t *testing.T) {
	vm := NewViewportManager(nil, nil, scheduler.NewManualTimer(), DefaultViewportConfig())
	s := record.New(domain.Viewport{})
	vp := domain.Viewport{Width: 10, Height: 10, PixelRatio: 1}

	vm.SetPending(vp)
	assert.True(t, vm.ApplyPending(s))
	vm.SetPending(vp)
	assert.False(t, vm.ApplyPending(s))
	assert.Equal(t, 1, vm.Allocations())
}

func TestCancelDropsPendingResize(t *testing.T) {
	timer := scheduler.NewManualTimer()
	vm := NewViewportManager(nil, nil, timer, DefaultViewportConfig())
	c := newContainer(100, 100, 1)

	vm.RequestResize(c)
	vm.Cancel()
	timer.Advance(time.Second)
	assert.False(t, vm.ApplyPending(record.New(domain.Viewport{})))
	assert.Zero(t, timer.Active())
}

func TestResetForgetsAppliedViewport(t *testing.T) {
	vm := NewViewportManager(nil, nil, scheduler.NewManualTimer(), DefaultViewportConfig())
	vp := domain.Viewport{Width: 10, Height: 10, PixelRatio: 1}

	vm.SetPending(vp)
	require.True(t, vm.ApplyPending(record.New(domain.Viewport{})))

	vm.Reset()
	assert.Equal(t, domain.Viewport{}, vm.Current())

	fresh := record.New(domain.Viewport{})
	vm.SetPending(vp)
	assert.True(t, vm.ApplyPending(fresh))
	w, h := fresh.Size()
	assert.Equal(t, 10.0, w)
	assert.Equal(t, 10.0, h)
}
