package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) handle(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}

func newStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	t.Cleanup(func() { _ = bus.Close() })
	rec := &recorder{}
	bus.SubscribeAll(rec.handle)
	return New(logger.NewTestLogger(), bus, domain.ModeBars), rec
}

func TestDefaults(t *testing.T) {
	s, _ := newStore(t)
	assert.Equal(t, domain.ModeBars, s.Mode())
	assert.Equal(t, DefaultVolume, s.Volume())
	assert.False(t, s.Fullscreen())
	assert.Nil(t, s.Source())
	assert.Nil(t, s.Track())

	st := s.Playback()
	assert.False(t, st.Loaded)
	assert.False(t, st.IsPlaying)

	assert.Equal(t, domain.ModeBars, New(nil, nil, "nope").Mode())
}

func TestSettersPublishOnlyOnChange(t *testing.T) {
	s, rec := newStore(t)

	require.NoError(t, s.SetMode(domain.ModeBars))
	require.NoError(t, s.SetMode(domain.ModeGalaxy))
	require.NoError(t, s.SetMode(domain.ModeGalaxy))
	s.SetVolume(DefaultVolume)
	s.SetVolume(0.5)
	s.SetPlaying(false)
	s.SetPlaying(true)
	s.SetPlaying(true)
	s.SetCurrentTime(0)
	s.SetCurrentTime(time.Second)
	s.SetDuration(0)
	s.SetDuration(time.Minute)
	s.SetFullscreen(false)
	s.SetFullscreen(true)
	s.SetViewport(domain.Viewport{})
	s.SetViewport(domain.Viewport{Width: 10, Height: 10, PixelRatio: 1})

	assert.Equal(t, []domain.EventType{
		domain.EventModeChanged,
		domain.EventVolumeChanged,
		domain.EventPlaybackChanged,
		domain.EventPlaybackTimeUpdate,
		domain.EventDurationChanged,
		domain.EventFullscreenToggled,
		domain.EventViewportResized,
	}, rec.types())
}

func TestSetModeRejectsUnknown(t *testing.T) {
	s, rec := newStore(t)
	err := s.SetMode("plasma")
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
	assert.Equal(t, domain.ModeBars, s.Mode())
	assert.Empty(t, rec.types())
}

func TestToggleFullscreen(t *testing.T) {
	s, rec := newStore(t)
	assert.True(t, s.ToggleFullscreen())
	assert.False(t, s.ToggleFullscreen())
	assert.Len(t, rec.types(), 2)
}

func TestSetAudioGraphOnce(t *testing.T) {
	s, _ := newStore(t)
	ctx := mock.NewContext(nil)
	a := mock.NewAnalyser(512)

	require.NoError(t, s.SetAudioGraph(ctx, a))
	assert.ErrorIs(t, s.SetAudioGraph(ctx, a), domain.ErrAlreadyInitialized)

	var verr *domain.ValidationError
	assert.ErrorAs(t, New(nil, nil, domain.ModeBars).SetAudioGraph(nil, a), &verr)

	gotCtx, gotA := s.AudioGraph()
	assert.Same(t, ctx, gotCtx)
	assert.Same(t, a, gotA)
}

func TestSetSource(t *testing.T) {
	s, rec := newStore(t)
	s.SetPlaying(true)
	rec.events = nil

	src := mock.NewSource(domain.TrackInfo{Title: "Song", Kind: domain.SourceFile}, 3*time.Minute)
	prev := s.SetSource(src)
	assert.Nil(t, prev)

	assert.Equal(t, []domain.EventType{
		domain.EventSourceLoaded,
		domain.EventDurationChanged,
		domain.EventPlaybackTimeUpdate,
		domain.EventPlaybackChanged,
	}, rec.types())

	st := s.Playback()
	assert.True(t, st.Loaded)
	assert.False(t, st.IsPlaying)
	assert.Equal(t, 3*time.Minute, st.Duration)
	require.NotNil(t, st.Track)
	assert.Equal(t, "Song", st.Track.Title)

	// copies are detached from the store
	st.Track.Title = "changed"
	assert.Equal(t, "Song", s.Track().Title)

	next := mock.NewSource(domain.TrackInfo{Title: "Next"}, time.Minute)
	assert.Same(t, src, s.SetSource(next))

	assert.Same(t, next, s.ClearSource())
	assert.Nil(t, s.Source())
	assert.Nil(t, s.Track())
	assert.Nil(t, s.ClearSource())
}

func TestMarkEnded(t *testing.T) {
	s, rec := newStore(t)
	s.SetPlaying(true)
	rec.events = nil

	s.MarkEnded()
	assert.Equal(t, []domain.EventType{domain.EventPlaybackChanged, domain.EventPlaybackEnded}, rec.types())
	assert.False(t, s.IsPlaying())
}

func TestSubscribeTeardown(t *testing.T) {
	s, _ := newStore(t)
	var n int
	unsub := s.Subscribe(domain.EventModeChanged, func(domain.Event) { n++ })

	require.NoError(t, s.SetMode(domain.ModeDNA))
	unsub()
	unsub()
	require.NoError(t, s.SetMode(domain.ModeBlob))
	assert.Equal(t, 1, n)

	New(nil, nil, domain.ModeBars).Subscribe(domain.EventModeChanged, func(domain.Event) {})()
}

func TestHandlersMayReadStore(t *testing.T) {
	s, _ := newStore(t)
	var seen domain.RenderMode
	s.Subscribe(domain.EventModeChanged, func(domain.Event) { seen = s.Mode() })
	require.NoError(t, s.SetMode(domain.ModeRings))
	assert.Equal(t, domain.ModeRings, seen)
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetCurrentTime(time.Duration(i*100+j) * time.Millisecond)
				s.SetVolume(float64(j) / 100)
				_ = s.Playback()
				_ = s.Mode()
			}
		}(i)
	}
	wg.Wait()
}
