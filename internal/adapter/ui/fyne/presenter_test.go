package fyne

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
	"github.com/tejashwikalptaru/beatviz/internal/service"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

// fakeView records what the presenter asked it to show.
type fakeView struct {
	mu            sync.Mutex
	modes         []domain.ModeInfo
	mode          domain.RenderMode
	fullscreen    bool
	track         domain.TrackInfo
	playing       bool
	current       time.Duration
	total         time.Duration
	volume        float64
	notifications []string
	errors        []string
}

func (v *fakeView) SetModes(modes []domain.ModeInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modes = modes
}

func (v *fakeView) SetMode(mode domain.RenderMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = mode
}

func (v *fakeView) SetFullscreen(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fullscreen = enabled
}

func (v *fakeView) SetTrackInfo(track domain.TrackInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.track = track
}

func (v *fakeView) SetPlayState(playing bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = playing
}

func (v *fakeView) SetProgress(current, total time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current, v.total = current, total
}

func (v *fakeView) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *fakeView) ShowNotification(title, _ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, title)
}

func (v *fakeView) ShowError(title, _ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, title)
}

type fixture struct {
	store     *store.Store
	audioCtx  *mock.Context
	factory   *mock.Factory
	loader    *mock.Loader
	spectral  *service.SpectralAdapter
	bridge    *service.TransportBridge
	sources   *service.SourceService
	view      *fakeView
	presenter *Presenter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	t.Cleanup(func() { _ = bus.Close() })

	f := &fixture{
		store:    store.New(log, bus, domain.ModeWave),
		audioCtx: mock.NewContext(log),
		loader:   mock.NewLoader(2 * time.Minute),
		view:     &fakeView{},
	}
	f.factory = mock.NewFactory(f.audioCtx)

	var err error
	f.spectral, err = service.NewSpectralAdapter(log, f.store, bus, f.factory.New, service.DefaultSpectralConfig())
	require.NoError(t, err)
	f.bridge = service.NewTransportBridge(log, f.store, f.spectral)
	f.sources = service.NewSourceService(log, f.store, f.loader, f.bridge, f.spectral)
	f.presenter = NewPresenter(log, f.store, f.bridge, f.sources, f.view)
	t.Cleanup(f.presenter.Shutdown)
	return f
}

func TestPresenterSyncsInitialState(t *testing.T) {
	f := newFixture(t)
	assert.Len(t, f.view.modes, 10)
	assert.Equal(t, domain.ModeWave, f.view.mode)
	assert.False(t, f.view.fullscreen)
	assert.InDelta(t, store.DefaultVolume, f.view.volume, 1e-9)
	assert.False(t, f.view.playing)
}

func TestPresenterModeCommands(t *testing.T) {
	f := newFixture(t)

	f.presenter.OnModeSelected("Galaxy")
	assert.Equal(t, domain.ModeGalaxy, f.store.Mode())
	assert.Equal(t, domain.ModeGalaxy, f.view.mode)

	f.presenter.OnModeIndex(9)
	assert.Equal(t, domain.ModeBlob, f.view.mode)

	// out of range is ignored
	f.presenter.OnModeIndex(10)
	assert.Equal(t, domain.ModeBlob, f.store.Mode())

	f.presenter.OnModeSelected("disco")
	assert.Equal(t, domain.ModeBlob, f.store.Mode())
	assert.Equal(t, []string{"Mode"}, f.view.errors)
}

func TestPresenterFullscreen(t *testing.T) {
	f := newFixture(t)
	f.presenter.OnFullscreenClicked()
	assert.True(t, f.view.fullscreen)
	assert.True(t, f.store.Fullscreen())

	f.presenter.OnFullscreenChanged(false)
	assert.False(t, f.view.fullscreen)
}

func TestPresenterPlaybackFlow(t *testing.T) {
	f := newFixture(t)

	f.presenter.OnPlayClicked()
	assert.Equal(t, []string{"Nothing to play"}, f.view.notifications)

	require.NoError(t, f.presenter.OnFileOpened("/music/Night Drive.flac"))
	assert.Equal(t, "Night Drive", f.view.track.Title)
	assert.Equal(t, 2*time.Minute, f.view.total)

	f.presenter.OnPlayClicked()
	assert.True(t, f.view.playing)

	src := f.loader.Opened()[0]
	src.Advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, f.view.current)

	f.presenter.OnSeekRequested(75.5)
	assert.Equal(t, 75500*time.Millisecond, f.view.current)

	f.presenter.OnVolumeChanged(40)
	assert.InDelta(t, 0.4, f.view.volume, 1e-9)
	assert.InDelta(t, 0.4, src.Volume(), 1e-9)

	f.presenter.OnPlayClicked()
	assert.False(t, f.view.playing)
	assert.Empty(t, f.view.errors)
}

func TestPresenterVolumeWithoutSource(t *testing.T) {
	f := newFixture(t)
	f.presenter.OnVolumeChanged(150)
	assert.InDelta(t, 1.0, f.store.Volume(), 1e-9)
	assert.InDelta(t, 1.0, f.view.volume, 1e-9)

	// the next source starts at the remembered volume
	require.NoError(t, f.presenter.OnFileOpened("/music/a.mp3"))
	assert.InDelta(t, 1.0, f.loader.Opened()[0].Volume(), 1e-9)
}

func TestPresenterReportsFailures(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.presenter.OnFileOpened("/music/a.txt"), domain.ErrUnsupportedFormat)
	assert.ErrorIs(t, f.presenter.OnURLEntered("ftp://example.com/a.mp3"), domain.ErrInvalidSourceURL)

	require.NoError(t, f.presenter.OnURLEntered("https://example.com/a.mp3"))
	assert.Equal(t, domain.SourceURL, f.view.track.Kind)

	// seek past the end
	f.presenter.OnSeekRequested(10000)
	assert.Equal(t, []string{"Seek Error"}, f.view.errors)

	f.loader.SetFailOpen(errors.New("gone"))
	assert.Error(t, f.presenter.OnFileOpened("/music/b.mp3"))
}

func TestPresenterAnalysisDisabled(t *testing.T) {
	f := newFixture(t)
	f.factory.SetFail(true)
	require.NoError(t, f.presenter.OnFileOpened("/music/a.mp3"))

	f.presenter.OnPlayClicked()
	assert.True(t, f.view.playing)
	assert.Empty(t, f.view.errors)
	assert.Equal(t, []string{"Visualizer"}, f.view.notifications)
}

func TestPresenterShutdown(t *testing.T) {
	f := newFixture(t)
	f.presenter.Shutdown()
	f.presenter.Shutdown()

	require.NoError(t, f.store.SetMode(domain.ModeDNA))
	assert.Equal(t, domain.ModeWave, f.view.mode)

	// downloads after shutdown see a cancelled context
	assert.Error(t, f.presenter.OnURLEntered("https://example.com/a.mp3"))
}
