// Package domain contains core visualizer models and logic with no external dependencies.
// This package defines the fundamental entities of the beatviz visualizer.
package domain

import (
	"strings"
	"time"
)

// RenderMode identifies which mode renderer is active.
type RenderMode string

// Selectable render modes. Idle is not one of them: it is a render path the
// engine falls back to whenever no audio energy is present.
const (
	ModeBars      RenderMode = "bars"
	ModeWave      RenderMode = "wave"
	ModeCircular  RenderMode = "circular"
	ModeGalaxy    RenderMode = "galaxy"
	ModeDNA       RenderMode = "dna"
	ModeFireworks RenderMode = "fireworks"
	ModeMatrix    RenderMode = "matrix"
	ModeRings     RenderMode = "rings"
	ModeMountains RenderMode = "mountains"
	ModeBlob      RenderMode = "blob"
)

// ModeInfo pairs a render mode with its display name.
type ModeInfo struct {
	Mode RenderMode
	Name string
}

// Modes returns all selectable render modes in display order.
func Modes() []ModeInfo {
	return []ModeInfo{
		{ModeBars, "Bars"},
		{ModeWave, "Wave"},
		{ModeCircular, "Circular"},
		{ModeGalaxy, "Galaxy"},
		{ModeDNA, "DNA"},
		{ModeFireworks, "Fireworks"},
		{ModeMatrix, "Matrix"},
		{ModeRings, "Rings"},
		{ModeMountains, "Mountains"},
		{ModeBlob, "Blob"},
	}
}

// ParseRenderMode resolves a mode from its identifier or display name.
func ParseRenderMode(s string) (RenderMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, info := range Modes() {
		if string(info.Mode) == key || strings.ToLower(info.Name) == key {
			return info.Mode, nil
		}
	}
	return "", NewValidationError("mode", s, "no such render mode").Wrap(ErrUnknownMode)
}

// Valid reports whether m is one of the selectable modes.
func (m RenderMode) Valid() bool {
	for _, info := range Modes() {
		if info.Mode == m {
			return true
		}
	}
	return false
}

// FrequencySnapshot is one sampled frame of frequency magnitudes (0-255),
// one entry per analyser bin. Consumers must treat it as read-only.
type FrequencySnapshot []uint8

// At returns the magnitude at index i, wrapping out-of-range indices.
// An empty snapshot reads as silence.
func (s FrequencySnapshot) At(i int) uint8 {
	n := len(s)
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return s[i]
}

// Norm returns At(i) scaled to 0..1.
func (s FrequencySnapshot) Norm(i int) float64 {
	return float64(s.At(i)) / 255.0
}

// HasEnergy reports whether any bin exceeds threshold.
func (s FrequencySnapshot) HasEnergy(threshold uint8) bool {
	for _, v := range s {
		if v > threshold {
			return true
		}
	}
	return false
}

// Mean returns the average magnitude scaled to 0..1.
func (s FrequencySnapshot) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	var sum int
	for _, v := range s {
		sum += int(v)
	}
	return float64(sum) / float64(len(s)) / 255.0
}

// BandMean returns the average of bins [start, end) scaled to 0..1.
// Indices wrap, so a band wider than the snapshot still averages real data.
func (s FrequencySnapshot) BandMean(start, end int) float64 {
	if len(s) == 0 || end <= start {
		return 0
	}
	var sum int
	for i := start; i < end; i++ {
		sum += int(s.At(i))
	}
	return float64(sum) / float64(end-start) / 255.0
}

// BandRange is a half-open range of analyser bins.
type BandRange struct {
	Start int
	End   int
}

// Viewport is the logical drawing-surface size plus the backing scale.
type Viewport struct {
	Width      float64
	Height     float64
	PixelRatio float64
}

// PixelSize returns the backing buffer dimensions in device pixels.
func (v Viewport) PixelSize() (int, int) {
	ratio := v.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	return int(v.Width*ratio + 0.5), int(v.Height*ratio + 0.5)
}

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// SourceKind describes where a media source was loaded from.
type SourceKind string

// Source kinds.
const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// TrackInfo describes the loaded media for display.
type TrackInfo struct {
	// Title is the song title (from tags, filename or URL path)
	Title string

	// Artist is the performing artist, or a placeholder such as the URL host
	Artist string

	// Album is the album name when tags provide one
	Album string

	// Location is the file path or URL the source was opened from
	Location string

	// Kind tells whether Location is a file or a URL
	Kind SourceKind

	// AlbumArt is embedded artwork as raw bytes (may be nil)
	AlbumArt []byte
}

// PlaybackState is a point-in-time copy of the transport fields held by the store.
type PlaybackState struct {
	Loaded      bool
	IsPlaying   bool
	CurrentTime time.Duration
	Duration    time.Duration
	Volume      float64
	Track       *TrackInfo
}
