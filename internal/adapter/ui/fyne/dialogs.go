package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/beatviz/internal/service"
)

// FileDialog is a helper for creating audio file open dialogs.
type FileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFileDialog creates a new file dialog.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog filtered to supported formats.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		filePath := reader.URI().Path()
		_ = reader.Close()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)
	fd.SetFilter(storage.NewExtensionFileFilter(service.SupportedExtensions()))
	fd.Show()
}

// URLDialog asks for a remote audio URL.
type URLDialog struct {
	window   fyne.Window
	callback func(string)
}

// NewURLDialog creates a new URL dialog.
func NewURLDialog(window fyne.Window, callback func(string)) *URLDialog {
	return &URLDialog{
		window:   window,
		callback: callback,
	}
}

// Show displays the dialog. The entry only validates once it names an
// http(s) URL with a supported extension.
func (d *URLDialog) Show() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://example.com/track.mp3")
	entry.Validator = func(s string) error {
		_, err := service.ValidateSourceURL(s)
		return err
	}

	items := []*widget.FormItem{widget.NewFormItem("URL", entry)}
	dialog.ShowForm("Open URL", "Open", "Cancel", items, func(ok bool) {
		if ok && d.callback != nil {
			d.callback(entry.Text)
		}
	}, d.window)
}
