package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

func TestEmitOrderAndTeardown(t *testing.T) {
	var n Notifier
	var got []string

	offA := n.On(domain.MediaPlay, func() { got = append(got, "a") })
	n.On(domain.MediaPlay, func() { got = append(got, "b") })
	n.On(domain.MediaPause, func() { got = append(got, "pause") })

	n.Emit(domain.MediaPlay)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 3, n.Count())

	offA()
	offA()
	got = nil
	n.Emit(domain.MediaPlay)
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, 2, n.Count())
}

func TestEmitWithoutHandlers(t *testing.T) {
	var n Notifier
	assert.NotPanics(t, func() { n.Emit(domain.MediaEnded) })
}

func TestHandlerMayRegisterDuringEmit(t *testing.T) {
	var n Notifier
	var calls int
	n.On(domain.MediaTimeUpdate, func() {
		calls++
		n.On(domain.MediaTimeUpdate, func() { calls += 10 })
	})

	n.Emit(domain.MediaTimeUpdate)
	assert.Equal(t, 1, calls)

	n.Reset()
	n.Emit(domain.MediaTimeUpdate)
	assert.Equal(t, 1, calls)
	assert.Zero(t, n.Count())
}
