// Package ports define the UI interface for view abstraction.
// This interface allows the presenter to update the UI without depending on Fyne directly.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// UI is the interface for the user interface layer.
// The presenter receives events from the event bus and calls these methods to
// update the view, so presentation logic is testable without a window.
//
// Thread-safety: implementations marshal onto their UI thread themselves.
type UI interface {
	// SetModes fills the mode selector.
	SetModes(modes []domain.ModeInfo)

	// SetMode marks the selected render mode.
	SetMode(mode domain.RenderMode)

	// SetFullscreen updates fullscreen presentation.
	SetFullscreen(enabled bool)

	// SetTrackInfo updates the displayed title and artist.
	SetTrackInfo(track domain.TrackInfo)

	// SetPlayState updates the play/pause button.
	SetPlayState(playing bool)

	// SetProgress updates the seek slider and time labels.
	SetProgress(current, total time.Duration)

	// SetVolume updates the volume slider (0.0 to 1.0).
	SetVolume(volume float64)

	// ShowNotification displays a transient status message.
	ShowNotification(title, message string)

	// ShowError displays an error to the user.
	ShowError(title, message string)
}
