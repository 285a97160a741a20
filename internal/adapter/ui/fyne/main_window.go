package fyne

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/surface/raster"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/res"
)

// Window defaults.
const (
	APPNAME = "beatviz"
	WIDTH   = 960
	HEIGHT  = 600
)

// MainWindow is the main UI window implementing ports.UI.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// ports.UI methods may be called from any goroutine; they hop onto the UI
// thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	visualizer       *widgets.Visualizer
	modeSelect       *widget.Select
	playButton       *widget.Button
	fullscreenButton *widget.Button
	openButton       *widget.Button
	urlButton        *widget.Button
	trackInfo        *widget.Label
	currentTime      *widget.Label
	endTime          *widget.Label
	progressSlider   *widget.Slider
	volumeSlider     *widget.Slider
	controls         *fyneapp.Container

	// display name per mode, filled by SetModes
	modeLabel map[domain.RenderMode]string

	onBeforeClose func()
	closeOnce     sync.Once

	presenter *Presenter
}

// NewMainWindow creates a main window presenting surface.
func NewMainWindow(app fyneapp.App, surface *raster.Surface, logger *slog.Logger) *MainWindow {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &MainWindow{
		app:       app,
		logger:    logger.With(slog.String("component", "main_window")),
		modeLabel: make(map[domain.RenderMode]string),
	}

	w.window = app.NewWindow(APPNAME)
	w.visualizer = widgets.NewVisualizer(surface)
	w.buildUI()
	w.window.Resize(fyneapp.NewSize(WIDTH, HEIGHT))
	w.window.SetCloseIntercept(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.window.Close()
	})
	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// SetOnBeforeClose registers a callback run before the window closes.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.onBeforeClose = fn
}

// Visualizer returns the widget the render loop draws into.
func (w *MainWindow) Visualizer() *widgets.Visualizer {
	return w.visualizer
}

func (w *MainWindow) buildUI() {
	w.modeSelect = widget.NewSelect(nil, nil)
	w.modeSelect.PlaceHolder = "Mode"

	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.fullscreenButton = widget.NewButtonWithIcon("", theme.ViewFullScreenIcon(), nil)
	w.openButton = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), nil)
	w.urlButton = widget.NewButtonWithIcon("", theme.MailForwardIcon(), nil)

	w.trackInfo = widget.NewLabel("No track loaded")
	w.trackInfo.Truncation = fyneapp.TextTruncateEllipsis
	w.trackInfo.TextStyle = fyneapp.TextStyle{Bold: true}

	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Orientation = widget.Horizontal
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volumeSlider)

	buttons := container.NewHBox(w.openButton, w.urlButton, w.playButton, w.fullscreenButton, w.modeSelect)
	buttonsHolder := container.NewBorder(nil, nil, buttons, container.NewGridWrap(fyneapp.NewSize(160, 36), volumeHolder), w.trackInfo)

	w.progressSlider = widget.NewSlider(0, 1)
	w.progressSlider.Step = 0.1
	w.currentTime = widget.NewLabel(formatDuration(0))
	w.endTime = widget.NewLabel(formatDuration(0))
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	w.controls = container.NewVBox(sliderHolder, buttonsHolder)
	w.window.SetContent(container.NewBorder(nil, w.controls, nil, nil, w.visualizer))
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}
	p := w.presenter

	w.playButton.OnTapped = p.OnPlayClicked
	w.fullscreenButton.OnTapped = p.OnFullscreenClicked
	w.openButton.OnTapped = w.handleOpenFile
	w.urlButton.OnTapped = w.handleOpenURL
	w.visualizer.SetOnDoubleTap(p.OnFullscreenClicked)

	w.modeSelect.OnChanged = p.OnModeSelected
	w.volumeSlider.OnChanged = p.OnVolumeChanged
	// seek only when the drag ends so progress updates don't fight the user
	w.progressSlider.OnChangeEnded = p.OnSeekRequested
}

func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openFile := fyneapp.NewMenuItem("Open File...", w.handleOpenFile)
	openURL := fyneapp.NewMenuItem("Open URL...", w.handleOpenURL)
	fileMenu := fyneapp.NewMenu("File", openFile, openURL)

	fullscreen := fyneapp.NewMenuItem("Toggle Fullscreen", func() {
		if w.presenter != nil {
			w.presenter.OnFullscreenClicked()
		}
	})
	viewMenu := fyneapp.NewMenu("View", fullscreen)

	about := fyneapp.NewMenuItem("About", func() {
		dialog.ShowCustom("About "+APPNAME, "Close", widget.NewRichTextFromMarkdown(res.AboutContent), w.window)
	})
	helpMenu := fyneapp.NewMenu("Help", about)

	return []*fyneapp.Menu{fileMenu, viewMenu, helpMenu}
}

func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}
	NewFileDialog(w.window, func(filePath string) {
		if err := w.presenter.OnFileOpened(filePath); err != nil {
			w.ShowError("Open File", fmt.Sprintf("Failed to open file: %v", err))
		}
	}, w.logger).Show()
}

func (w *MainWindow) handleOpenURL() {
	if w.presenter == nil {
		return
	}
	NewURLDialog(w.window, func(rawURL string) {
		w.trackInfo.SetText("Downloading...")
		// downloads block; keep the UI thread free
		go func() {
			if err := w.presenter.OnURLEntered(rawURL); err != nil {
				w.ShowError("Open URL", fmt.Sprintf("Failed to load %s: %v", rawURL, err))
			}
		}()
	}).Show()
}

func (w *MainWindow) addShortcuts() {
	c := w.window.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(min(w.volumeSlider.Value+5, 100))
	})
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(max(w.volumeSlider.Value-5, 0))
	})

	digits := []fyneapp.KeyName{
		fyneapp.Key1, fyneapp.Key2, fyneapp.Key3, fyneapp.Key4, fyneapp.Key5,
		fyneapp.Key6, fyneapp.Key7, fyneapp.Key8, fyneapp.Key9, fyneapp.Key0,
	}
	c.SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		switch ev.Name {
		case fyneapp.KeySpace:
			w.presenter.OnPlayClicked()
		case fyneapp.KeyF:
			w.presenter.OnFullscreenClicked()
		case fyneapp.KeyEscape:
			w.presenter.OnFullscreenChanged(false)
		default:
			for i, k := range digits {
				if ev.Name == k {
					w.presenter.OnModeIndex(i)
					return
				}
			}
		}
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		fyneapp.Do(w.window.Close)
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// ports.UI implementation

// SetModes fills the mode selector.
func (w *MainWindow) SetModes(modes []domain.ModeInfo) {
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, m.Name)
	}
	fyneapp.Do(func() {
		clear(w.modeLabel)
		for _, m := range modes {
			w.modeLabel[m.Mode] = m.Name
		}
		w.modeSelect.SetOptions(names)
	})
}

// SetMode marks the selected render mode.
func (w *MainWindow) SetMode(mode domain.RenderMode) {
	fyneapp.Do(func() {
		if name, ok := w.modeLabel[mode]; ok && w.modeSelect.Selected != name {
			w.modeSelect.SetSelected(name)
		}
	})
}

// SetFullscreen switches fullscreen and hides the controls while it lasts.
func (w *MainWindow) SetFullscreen(enabled bool) {
	fyneapp.Do(func() {
		if w.window.FullScreen() != enabled {
			w.window.SetFullScreen(enabled)
		}
		if enabled {
			w.controls.Hide()
			w.fullscreenButton.SetIcon(theme.ViewRestoreIcon())
		} else {
			w.controls.Show()
			w.fullscreenButton.SetIcon(theme.ViewFullScreenIcon())
		}
	})
}

// SetTrackInfo updates the displayed track information.
func (w *MainWindow) SetTrackInfo(track domain.TrackInfo) {
	// Format: "Artist - Title"
	var text string
	switch {
	case track.Artist != "" && track.Title != "":
		text = fmt.Sprintf("%s - %s", track.Artist, track.Title)
	case track.Title != "":
		text = track.Title
	default:
		text = "No track loaded"
	}
	fyneapp.Do(func() {
		w.trackInfo.SetText(text)
		w.window.SetTitle(APPNAME + " - " + text)
	})
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	icon := theme.MediaPlayIcon()
	if playing {
		icon = theme.MediaPauseIcon()
	}
	fyneapp.Do(func() {
		w.playButton.SetIcon(icon)
	})
}

// SetProgress updates the progress slider and time labels without
// triggering a seek.
func (w *MainWindow) SetProgress(current, total time.Duration) {
	fyneapp.Do(func() {
		w.currentTime.SetText(formatDuration(current))
		w.endTime.SetText(formatDuration(total))
		if total > 0 {
			w.progressSlider.Max = total.Seconds()
		}
		w.progressSlider.Value = min(current.Seconds(), w.progressSlider.Max)
		w.progressSlider.Refresh()
	})
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		// Convert from 0.0-1.0 to 0-100
		w.volumeSlider.Value = volume * 100.0
		w.volumeSlider.Refresh()
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// ShowError displays an error dialog.
func (w *MainWindow) ShowError(title, message string) {
	fyneapp.Do(func() {
		dialog.ShowInformation(title, message, w.window)
	})
}

// formatDuration renders d as mm:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%.2d:%.2d", secs/60, secs%60)
}

var _ ports.UI = (*MainWindow)(nil)
