// Package domain defines domain-specific errors.
// These errors represent visualizer failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrDeviceUnavailable is returned when the host cannot provide an audio context or analyser.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrAlreadyConnected is returned when a media source is routed into a context a second time.
	ErrAlreadyConnected = errors.New("media source already connected")

	// ErrRenderSurfaceMissing is returned when a frame runs without a mounted surface.
	ErrRenderSurfaceMissing = errors.New("render surface missing")

	// ErrNoSourceLoaded is returned when a transport command is issued with no source.
	ErrNoSourceLoaded = errors.New("no media source loaded")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidPosition is returned when seeking to an invalid position.
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrUnsupportedFormat is returned when an audio format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidSourceURL is returned when a remote source URL is malformed.
	ErrInvalidSourceURL = errors.New("invalid source url")

	// ErrUnknownMode is returned when a render mode name is not recognised.
	ErrUnknownMode = errors.New("unknown render mode")

	// ErrAlreadyInitialized is returned when the audio graph is installed twice.
	ErrAlreadyInitialized = errors.New("component already initialized")

	// ErrInvalidFFTSize is returned for FFT sizes that are not a power of two in range.
	ErrInvalidFFTSize = errors.New("invalid fft size")

	// ErrSourceClosed is returned by a media source after Close.
	ErrSourceClosed = errors.New("media source closed")
)

// AudioGraphError represents a failure while building or using the audio graph.
// This wraps low-level audio library errors with the failing operation.
type AudioGraphError struct {
	Op  string // Operation that failed (e.g., "create_context", "create_analyser", "connect")
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *AudioGraphError) Error() string {
	return fmt.Sprintf("audio graph %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AudioGraphError) Unwrap() error {
	return e.Err
}

// NewAudioGraphError creates a new AudioGraphError.
func NewAudioGraphError(op string, err error) *AudioGraphError {
	return &AudioGraphError{Op: op, Err: err}
}

// SourceError represents a failure opening or decoding a media source.
type SourceError struct {
	Op       string // Operation that failed (e.g., "open", "download", "decode")
	Location string // File path or URL
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s failed for '%s': %v", e.Op, e.Location, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, location string, err error) *SourceError {
	return &SourceError{Op: op, Location: location, Err: err}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
	Err     error       // Sentinel the failure maps to (may be nil)
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap attaches a sentinel so callers can match with errors.Is.
func (e *ValidationError) Wrap(err error) *ValidationError {
	e.Err = err
	return e
}
