package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beatviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, domain.BandRange{Start: 0, End: 8}, cfg.BassBand())
	assert.Equal(t, domain.ModeBars, cfg.Mode())
	assert.Equal(t, 512, cfg.Visualizer.FFTSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Visualizer.ResizeDebounce)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
visualizer:
  fft_size: 2048
  smoothing: 0.5
  bass_band: [2, 12]
  resize_debounce: 250ms
  default_mode: galaxy
audio:
  progress_interval: 1s
broadcast:
  enabled: true
  address: "127.0.0.1:0"
`)
	cfg, err := load(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2048, cfg.Visualizer.FFTSize)
	assert.Equal(t, 0.5, cfg.Visualizer.Smoothing)
	assert.Equal(t, domain.BandRange{Start: 2, End: 12}, cfg.BassBand())
	assert.Equal(t, 250*time.Millisecond, cfg.Visualizer.ResizeDebounce)
	assert.Equal(t, domain.ModeGalaxy, cfg.Mode())
	assert.Equal(t, time.Second, cfg.Audio.ProgressInterval)
	assert.True(t, cfg.Broadcast.Enabled)

	// untouched fields keep their defaults
	assert.Equal(t, 100, cfg.Visualizer.ParticlePoolSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Audio.BufferSize)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, "visualizer:\n  fft_size: 2048\n")
	cfg, err := load(path, env(map[string]string{
		"BEATVIZ_FFT_SIZE":          "1024",
		"BEATVIZ_SMOOTHING":         "0.2",
		"BEATVIZ_MODE":              "matrix",
		"BEATVIZ_SEED":              "42",
		"BEATVIZ_BROADCAST_ENABLED": "true",
		"BEATVIZ_LOG_LEVEL":         "warn",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Visualizer.FFTSize)
	assert.Equal(t, 0.2, cfg.Visualizer.Smoothing)
	assert.Equal(t, domain.ModeMatrix, cfg.Mode())
	assert.Equal(t, uint64(42), cfg.Visualizer.Seed)
	assert.True(t, cfg.Broadcast.Enabled)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestBadEnvValue(t *testing.T) {
	for key, value := range map[string]string{
		"BEATVIZ_FFT_SIZE":          "big",
		"BEATVIZ_SMOOTHING":         "smooth",
		"BEATVIZ_SEED":              "-1",
		"BEATVIZ_BROADCAST_ENABLED": "maybe",
	} {
		_, err := load("", env(map[string]string{key: value}))
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, key)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = load(writeTempConfig(t, "visualizer: [not, a, map"), env(nil))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = load(writeTempConfig(t, "visualizer:\n  fft_size: 500\n"), env(nil))
	assert.ErrorContains(t, err, "invalid configuration")
	assert.ErrorIs(t, err, domain.ErrInvalidFFTSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"smoothing", func(c *Config) { c.Visualizer.Smoothing = 1.5 }, "smoothing"},
		{"particles", func(c *Config) { c.Visualizer.ParticlePoolSize = 0 }, "visualizer.particle_pool_size"},
		{"bass band order", func(c *Config) { c.Visualizer.BassBand = []int{8, 8} }, "visualizer.bass_band"},
		{"bass band shape", func(c *Config) { c.Visualizer.BassBand = []int{1} }, "visualizer.bass_band"},
		{"particles cap", func(c *Config) { c.Visualizer.ParticlePoolSize = MaxParticlePoolSize + 1 }, "visualizer.particle_pool_size"},
		{"bass band past bins", func(c *Config) { c.Visualizer.BassBand = []int{0, 257} }, "visualizer.bass_band"},
		{"debounce", func(c *Config) { c.Visualizer.ResizeDebounce = -time.Second }, "visualizer.resize_debounce"},
		{"threshold", func(c *Config) { c.Visualizer.EnergyThreshold = 300 }, "visualizer.energy_threshold"},
		{"pixel ratio", func(c *Config) { c.Visualizer.MaxPixelRatio = 0.5 }, "visualizer.max_pixel_ratio"},
		{"frame rate", func(c *Config) { c.Visualizer.FrameRate = 0 }, "visualizer.frame_rate"},
		{"mode", func(c *Config) { c.Visualizer.DefaultMode = "disco" }, "mode"},
		{"buffer", func(c *Config) { c.Audio.BufferSize = 0 }, "audio.buffer_size"},
		{"progress", func(c *Config) { c.Audio.ProgressInterval = 0 }, "audio.progress_interval"},
		{"download", func(c *Config) { c.Audio.MaxDownloadMB = 0 }, "audio.max_download_mb"},
		{"broadcast address", func(c *Config) {
			c.Broadcast.Enabled = true
			c.Broadcast.Address = ""
		}, "broadcast.address"},
		{"broadcast rate", func(c *Config) { c.Broadcast.MaxRate = -1 }, "broadcast.max_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBassBandFollowsFFTSize(t *testing.T) {
	cfg := Default()
	cfg.Visualizer.BassBand = []int{0, 256}
	assert.NoError(t, cfg.Validate())

	cfg.Visualizer.FFTSize = 256
	assert.Error(t, cfg.Validate())

	cfg.Visualizer.BassBand = []int{0, 128}
	assert.NoError(t, cfg.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Visualizer.FFTSize = 3
	cfg.Visualizer.DefaultMode = "disco"
	err := cfg.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidFFTSize)
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestModeFallsBackToBars(t *testing.T) {
	cfg := Default()
	cfg.Visualizer.DefaultMode = "disco"
	assert.Equal(t, domain.ModeBars, cfg.Mode())
	cfg.Visualizer.BassBand = nil
	assert.Equal(t, domain.BandRange{Start: 0, End: 8}, cfg.BassBand())
}
