// Package config loads beatviz settings: built-in defaults, then an optional
// YAML file, then BEATVIZ_* environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tejashwikalptaru/beatviz/internal/analysis"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
)

// DefaultFile is read when no path is given and it exists.
const DefaultFile = "beatviz.yaml"

// MaxParticlePoolSize caps visualizer.particle_pool_size.
const MaxParticlePoolSize = 10000

// Config is the full application configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	LogFormat  string           `yaml:"log_format"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
	Audio      AudioConfig      `yaml:"audio"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
}

// VisualizerConfig tunes analysis and rendering.
type VisualizerConfig struct {
	FFTSize          int           `yaml:"fft_size"`           // power of two, 32..32768
	Smoothing        float64       `yaml:"smoothing"`          // analyser time constant, 0..1
	ParticlePoolSize int           `yaml:"particle_pool_size"` // galaxy particles
	BassBand         []int         `yaml:"bass_band"`          // [start, end) bins
	ResizeDebounce   time.Duration `yaml:"resize_debounce"`
	EnergyThreshold  int           `yaml:"energy_threshold"` // 0..255
	MaxPixelRatio    float64       `yaml:"max_pixel_ratio"`
	FrameRate        int           `yaml:"frame_rate"`
	Seed             uint64        `yaml:"seed"`
	DefaultMode      string        `yaml:"default_mode"`
}

// AudioConfig tunes playback.
type AudioConfig struct {
	BufferSize       time.Duration `yaml:"buffer_size"` // speaker buffer
	ProgressInterval time.Duration `yaml:"progress_interval"`
	MaxDownloadMB    int           `yaml:"max_download_mb"`
}

// BroadcastConfig controls the websocket spectrum broadcaster.
type BroadcastConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	MaxRate int    `yaml:"max_rate"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Visualizer: VisualizerConfig{
			FFTSize:          512,
			Smoothing:        0.85,
			ParticlePoolSize: 100,
			BassBand:         []int{0, 8},
			ResizeDebounce:   100 * time.Millisecond,
			EnergyThreshold:  4,
			MaxPixelRatio:    2,
			FrameRate:        60,
			Seed:             1,
			DefaultMode:      string(domain.ModeBars),
		},
		Audio: AudioConfig{
			BufferSize:       100 * time.Millisecond,
			ProgressInterval: 250 * time.Millisecond,
			MaxDownloadMB:    256,
		},
		Broadcast: BroadcastConfig{
			Enabled: false,
			Address: "127.0.0.1:9191",
			MaxRate: 30,
		},
	}
}

// Load builds the configuration. An empty path reads DefaultFile when it
// exists; a named file must exist.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		logger.EnvLevel:             &c.LogLevel,
		"BEATVIZ_LOG_FORMAT":        &c.LogFormat,
		"BEATVIZ_MODE":              &c.Visualizer.DefaultMode,
		"BEATVIZ_BROADCAST_ADDRESS": &c.Broadcast.Address,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"BEATVIZ_FFT_SIZE":   &c.Visualizer.FFTSize,
		"BEATVIZ_FRAME_RATE": &c.Visualizer.FrameRate,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return domain.NewValidationError(key, v, "not an integer")
			}
			*dst = n
		}
	}

	if v, ok := lookup("BEATVIZ_SMOOTHING"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.NewValidationError("BEATVIZ_SMOOTHING", v, "not a number")
		}
		c.Visualizer.Smoothing = f
	}
	if v, ok := lookup("BEATVIZ_SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return domain.NewValidationError("BEATVIZ_SEED", v, "not an unsigned integer")
		}
		c.Visualizer.Seed = n
	}
	if v, ok := lookup("BEATVIZ_BROADCAST_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.NewValidationError("BEATVIZ_BROADCAST_ENABLED", v, "not a boolean")
		}
		c.Broadcast.Enabled = b
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, value any, msg string) {
		errs = append(errs, domain.NewValidationError(field, value, msg))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		add("log_level", c.LogLevel, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		add("log_format", c.LogFormat, "must be text or json")
	}

	v := c.Visualizer
	if err := analysis.ValidateFFTSize(v.FFTSize); err != nil {
		errs = append(errs, err)
	}
	if err := analysis.ValidateSmoothing(v.Smoothing); err != nil {
		errs = append(errs, err)
	}
	if v.ParticlePoolSize <= 0 || v.ParticlePoolSize > MaxParticlePoolSize {
		add("visualizer.particle_pool_size", v.ParticlePoolSize,
			fmt.Sprintf("must be between 1 and %d", MaxParticlePoolSize))
	}
	switch {
	case len(v.BassBand) != 2 || v.BassBand[0] < 0 || v.BassBand[1] <= v.BassBand[0]:
		add("visualizer.bass_band", v.BassBand, "must be [start, end) with 0 <= start < end")
	case analysis.ValidateFFTSize(v.FFTSize) == nil && v.BassBand[1] > v.FFTSize/2:
		add("visualizer.bass_band", v.BassBand,
			fmt.Sprintf("end must not exceed the bin count (fft_size/2 = %d)", v.FFTSize/2))
	}
	if v.ResizeDebounce < 0 {
		add("visualizer.resize_debounce", v.ResizeDebounce, "must not be negative")
	}
	if v.EnergyThreshold < 0 || v.EnergyThreshold > 255 {
		add("visualizer.energy_threshold", v.EnergyThreshold, "must be between 0 and 255")
	}
	if v.MaxPixelRatio < 1 {
		add("visualizer.max_pixel_ratio", v.MaxPixelRatio, "must be at least 1")
	}
	if v.FrameRate < 1 || v.FrameRate > 240 {
		add("visualizer.frame_rate", v.FrameRate, "must be between 1 and 240")
	}
	if _, err := domain.ParseRenderMode(v.DefaultMode); err != nil {
		errs = append(errs, err)
	}

	if c.Audio.BufferSize <= 0 {
		add("audio.buffer_size", c.Audio.BufferSize, "must be positive")
	}
	if c.Audio.ProgressInterval <= 0 {
		add("audio.progress_interval", c.Audio.ProgressInterval, "must be positive")
	}
	if c.Audio.MaxDownloadMB <= 0 {
		add("audio.max_download_mb", c.Audio.MaxDownloadMB, "must be positive")
	}

	if c.Broadcast.Enabled && c.Broadcast.Address == "" {
		add("broadcast.address", c.Broadcast.Address, "required when broadcast is enabled")
	}
	if c.Broadcast.MaxRate < 0 {
		add("broadcast.max_rate", c.Broadcast.MaxRate, "must not be negative")
	}
	return errors.Join(errs...)
}

// BassBand returns the configured bass band.
func (c *Config) BassBand() domain.BandRange {
	if len(c.Visualizer.BassBand) != 2 {
		return domain.BandRange{Start: 0, End: 8}
	}
	return domain.BandRange{Start: c.Visualizer.BassBand[0], End: c.Visualizer.BassBand[1]}
}

// Mode returns the configured start-up mode, bars if it does not parse.
func (c *Config) Mode() domain.RenderMode {
	m, err := domain.ParseRenderMode(c.Visualizer.DefaultMode)
	if err != nil {
		return domain.ModeBars
	}
	return m
}
