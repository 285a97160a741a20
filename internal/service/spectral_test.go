package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

func TestNewSpectralAdapterValidates(t *testing.T) {
	st := store.New(nil, nil, domain.ModeBars)
	f := mock.NewFactory(mock.NewContext(nil))

	_, err := NewSpectralAdapter(nil, st, nil, f.New, SpectralConfig{FFTSize: 1000, Smoothing: 0.5})
	assert.ErrorIs(t, err, domain.ErrInvalidFFTSize)

	_, err = NewSpectralAdapter(nil, st, nil, f.New, SpectralConfig{FFTSize: 512, Smoothing: 1.5})
	assert.Error(t, err)

	a, err := NewSpectralAdapter(nil, st, nil, f.New, DefaultSpectralConfig())
	require.NoError(t, err)
	assert.Equal(t, 256, a.BinCount())
	assert.Zero(t, f.Calls(), "no audio resources before the first EnsureGraph")
}

func TestEnsureGraphTwice(t *testing.T) {
	h := newHarness(t)
	src := mock.NewSource(domain.TrackInfo{Title: "a"}, 0)

	require.NoError(t, h.spectral.EnsureGraph(src))
	require.NoError(t, h.spectral.EnsureGraph(src))

	assert.Equal(t, 1, h.factory.Calls())
	assert.Len(t, h.audioCtx.Analysers(), 1)
	assert.Equal(t, 1, h.audioCtx.Connections())

	ctx, analyser := h.store.AudioGraph()
	assert.NotNil(t, ctx)
	assert.NotNil(t, analyser)
}

func TestEnsureGraphSwallowsAlreadyConnected(t *testing.T) {
	h := newHarness(t)
	src := mock.NewSource(domain.TrackInfo{Title: "a"}, 0)
	require.NoError(t, h.spectral.EnsureGraph(src))

	// the adapter forgot the source, but the context still routes it
	h.spectral.Forget(src)
	require.NoError(t, h.spectral.EnsureGraph(src))
	assert.Equal(t, 1, h.audioCtx.Connections())
}

func TestEnsureGraphNilSource(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.spectral.EnsureGraph(nil), domain.ErrNoSourceLoaded)
}

func TestAnalysisDisabledOnDeviceFailure(t *testing.T) {
	h := newHarness(t)
	var disabled []domain.AnalysisDisabledEvent
	h.bus.Subscribe(domain.EventAnalysisDisabled, func(e domain.Event) {
		disabled = append(disabled, e.(domain.AnalysisDisabledEvent))
	})
	h.factory.SetFail(true)
	src := mock.NewSource(domain.TrackInfo{Title: "a"}, 0)

	err := h.spectral.EnsureGraph(src)
	require.ErrorIs(t, err, domain.ErrDeviceUnavailable)
	var gerr *domain.AudioGraphError
	assert.ErrorAs(t, err, &gerr)

	h.factory.SetFail(false)
	assert.ErrorIs(t, h.spectral.EnsureGraph(src), domain.ErrDeviceUnavailable)
	assert.Equal(t, 1, h.factory.Calls(), "no retry once disabled")
	assert.True(t, h.spectral.Disabled())
	assert.Len(t, disabled, 1)

	require.NoError(t, src.Play())
	snap := h.spectral.Sample(src)
	assert.Len(t, snap, 64)
	assert.False(t, snap.HasEnergy(0))
}

func TestAnalyserFailureClosesContext(t *testing.T) {
	h := newHarness(t)
	h.audioCtx.SetFailCreateAnalyser(true)

	err := h.spectral.EnsureGraph(mock.NewSource(domain.TrackInfo{}, 0))
	assert.ErrorIs(t, err, domain.ErrDeviceUnavailable)
	assert.Equal(t, ports.ContextClosed, h.audioCtx.State())
	ctx, _ := h.store.AudioGraph()
	assert.Nil(t, ctx)
}

func TestConnectFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.audioCtx.SetFailConnect(true)
	src := mock.NewSource(domain.TrackInfo{}, 0)

	assert.Error(t, h.spectral.EnsureGraph(src))
	assert.False(t, h.spectral.Disabled())

	h.audioCtx.SetFailConnect(false)
	assert.NoError(t, h.spectral.EnsureGraph(src))
}

func TestSampleSilenceCases(t *testing.T) {
	h := newHarness(t)
	src := mock.NewSource(domain.TrackInfo{}, 0)

	assert.Len(t, h.spectral.Sample(nil), 64)

	// unrouted
	require.NoError(t, src.Play())
	assert.False(t, h.spectral.Sample(src).HasEnergy(0))

	require.NoError(t, h.spectral.EnsureGraph(src))
	h.audioCtx.Analysers()[0].SetData([]uint8{9, 9, 9})
	assert.Equal(t, uint8(9), h.spectral.Sample(src)[1])

	require.NoError(t, src.Pause())
	assert.False(t, h.spectral.Sample(src).HasEnergy(0))
}

func TestSampleReusesBuffer(t *testing.T) {
	h := newHarness(t)
	src := mock.NewSource(domain.TrackInfo{}, 0)
	require.NoError(t, h.spectral.EnsureGraph(src))
	require.NoError(t, src.Play())

	a := h.spectral.Sample(src)
	b := h.spectral.Sample(src)
	assert.Same(t, &a[0], &b[0])

	z1 := h.spectral.Sample(nil)
	z2 := h.spectral.Sample(nil)
	assert.Same(t, &z1[0], &z2[0])
}

func TestResume(t *testing.T) {
	h := newHarness(t)
	assert.NoError(t, h.spectral.Resume(), "nothing to resume without a graph")

	require.NoError(t, h.spectral.EnsureGraph(mock.NewSource(domain.TrackInfo{}, 0)))
	require.NoError(t, h.spectral.Resume())
	require.NoError(t, h.spectral.Resume())
	assert.Equal(t, 1, h.audioCtx.Resumes())
	assert.Equal(t, ports.ContextRunning, h.audioCtx.State())
}
