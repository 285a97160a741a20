package beepaudio

import (
	"sync"

	"github.com/faiface/beep"
)

// SampleSink receives decoded stereo frames as they are played.
// analysis.Analyser satisfies it.
type SampleSink interface {
	Write(frames [][2]float64)
}

// tap wraps a streamer and copies every played frame into a sink, so the
// analyser sees exactly what reaches the speaker.
type tap struct {
	src beep.Streamer

	mu   sync.Mutex
	sink SampleSink
}

func newTap(src beep.Streamer) *tap {
	return &tap{src: src}
}

// attach installs sink. It reports false if one is already installed.
func (t *tap) attach(sink SampleSink) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sink != nil {
		return false
	}
	t.sink = sink
	return true
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		sink := t.sink
		t.mu.Unlock()
		if sink != nil {
			sink.Write(samples[:n])
		}
	}
	return n, ok
}

func (t *tap) Err() error { return t.src.Err() }
