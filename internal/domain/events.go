// Package domain defines events for the event-driven architecture.
// Events let the store, the render loop and the UI observe each other without coupling.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Render state events
	EventModeChanged       EventType = "render.mode_changed"
	EventFullscreenToggled EventType = "render.fullscreen_toggled"
	EventViewportResized   EventType = "render.viewport_resized"
	EventFrameRendered     EventType = "render.frame"

	// Source events
	EventSourceLoaded       EventType = "source.loaded"
	EventAnalysisDisabled   EventType = "source.analysis_disabled"
	EventPlaybackChanged    EventType = "playback.changed"
	EventPlaybackTimeUpdate EventType = "playback.time"
	EventDurationChanged    EventType = "playback.duration"
	EventPlaybackEnded      EventType = "playback.ended"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"
)

// MediaEvent names a notification emitted by a media source.
type MediaEvent string

// Media source notifications mirrored by the transport bridge.
const (
	MediaTimeUpdate     MediaEvent = "time"
	MediaDurationChange MediaEvent = "duration"
	MediaPlay           MediaEvent = "play"
	MediaPause          MediaEvent = "pause"
	MediaVolumeChange   MediaEvent = "volume"
	MediaEnded          MediaEvent = "ended"
)

// MediaEvents lists every notification kind a media source can emit.
func MediaEvents() []MediaEvent {
	return []MediaEvent{
		MediaTimeUpdate, MediaDurationChange, MediaPlay,
		MediaPause, MediaVolumeChange, MediaEnded,
	}
}

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// ModeChangedEvent is published when the selected render mode changes.
type ModeChangedEvent struct {
	baseEvent
	Mode RenderMode
}

// Type returns the event type.
func (e ModeChangedEvent) Type() EventType {
	return EventModeChanged
}

// NewModeChangedEvent creates a new ModeChangedEvent.
func NewModeChangedEvent(mode RenderMode) ModeChangedEvent {
	return ModeChangedEvent{
		baseEvent: newBaseEvent(),
		Mode:      mode,
	}
}

// FullscreenToggledEvent is published when fullscreen presentation is toggled.
type FullscreenToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e FullscreenToggledEvent) Type() EventType {
	return EventFullscreenToggled
}

// NewFullscreenToggledEvent creates a new FullscreenToggledEvent.
func NewFullscreenToggledEvent(enabled bool) FullscreenToggledEvent {
	return FullscreenToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// ViewportResizedEvent is published after the drawing surface is reallocated.
type ViewportResizedEvent struct {
	baseEvent
	Viewport Viewport
}

// Type returns the event type.
func (e ViewportResizedEvent) Type() EventType {
	return EventViewportResized
}

// NewViewportResizedEvent creates a new ViewportResizedEvent.
func NewViewportResizedEvent(vp Viewport) ViewportResizedEvent {
	return ViewportResizedEvent{
		baseEvent: newBaseEvent(),
		Viewport:  vp,
	}
}

// FrameRenderedEvent is published after every presented frame when anyone listens.
// Snapshot is a copy owned by the event.
type FrameRenderedEvent struct {
	baseEvent
	Mode     RenderMode
	Idle     bool
	Snapshot FrequencySnapshot
	Elapsed  time.Duration
}

// Type returns the event type.
func (e FrameRenderedEvent) Type() EventType {
	return EventFrameRendered
}

// NewFrameRenderedEvent creates a new FrameRenderedEvent, copying the snapshot.
func NewFrameRenderedEvent(mode RenderMode, idle bool, snapshot FrequencySnapshot, elapsed time.Duration) FrameRenderedEvent {
	cp := make(FrequencySnapshot, len(snapshot))
	copy(cp, snapshot)
	return FrameRenderedEvent{
		baseEvent: newBaseEvent(),
		Mode:      mode,
		Idle:      idle,
		Snapshot:  cp,
		Elapsed:   elapsed,
	}
}

// SourceLoadedEvent is published when a new media source replaces the old one.
type SourceLoadedEvent struct {
	baseEvent
	Track TrackInfo
}

// Type returns the event type.
func (e SourceLoadedEvent) Type() EventType {
	return EventSourceLoaded
}

// NewSourceLoadedEvent creates a new SourceLoadedEvent.
func NewSourceLoadedEvent(track TrackInfo) SourceLoadedEvent {
	return SourceLoadedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// AnalysisDisabledEvent is published once when the audio graph cannot be built.
// Playback continues; only the visualization goes quiet.
type AnalysisDisabledEvent struct {
	baseEvent
	Err error
}

// Type returns the event type.
func (e AnalysisDisabledEvent) Type() EventType {
	return EventAnalysisDisabled
}

// NewAnalysisDisabledEvent creates a new AnalysisDisabledEvent.
func NewAnalysisDisabledEvent(err error) AnalysisDisabledEvent {
	return AnalysisDisabledEvent{
		baseEvent: newBaseEvent(),
		Err:       err,
	}
}

// PlaybackChangedEvent is published when the mirrored play/pause state flips.
type PlaybackChangedEvent struct {
	baseEvent
	IsPlaying bool
}

// Type returns the event type.
func (e PlaybackChangedEvent) Type() EventType {
	return EventPlaybackChanged
}

// NewPlaybackChangedEvent creates a new PlaybackChangedEvent.
func NewPlaybackChangedEvent(playing bool) PlaybackChangedEvent {
	return PlaybackChangedEvent{
		baseEvent: newBaseEvent(),
		IsPlaying: playing,
	}
}

// PlaybackTimeUpdateEvent is published when the mirrored position changes.
type PlaybackTimeUpdateEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e PlaybackTimeUpdateEvent) Type() EventType {
	return EventPlaybackTimeUpdate
}

// NewPlaybackTimeUpdateEvent creates a new PlaybackTimeUpdateEvent.
func NewPlaybackTimeUpdateEvent(position, duration time.Duration) PlaybackTimeUpdateEvent {
	return PlaybackTimeUpdateEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// DurationChangedEvent is published when the source reports its length.
type DurationChangedEvent struct {
	baseEvent
	Duration time.Duration
}

// Type returns the event type.
func (e DurationChangedEvent) Type() EventType {
	return EventDurationChanged
}

// NewDurationChangedEvent creates a new DurationChangedEvent.
func NewDurationChangedEvent(d time.Duration) DurationChangedEvent {
	return DurationChangedEvent{
		baseEvent: newBaseEvent(),
		Duration:  d,
	}
}

// PlaybackEndedEvent is published when the source plays to its end.
type PlaybackEndedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e PlaybackEndedEvent) Type() EventType {
	return EventPlaybackEnded
}

// NewPlaybackEndedEvent creates a new PlaybackEndedEvent.
func NewPlaybackEndedEvent() PlaybackEndedEvent {
	return PlaybackEndedEvent{baseEvent: newBaseEvent()}
}

// VolumeChangedEvent is published when the mirrored volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}
