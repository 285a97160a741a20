package beepaudio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// DefaultMaxDownload caps remote payloads held in memory.
const DefaultMaxDownload = 256 << 20

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// ProgressInterval is how often playing sources emit time notifications.
	ProgressInterval time.Duration

	// MaxDownload caps the size of a remote file in bytes.
	MaxDownload int64

	// Client fetches remote files; http.DefaultClient when nil.
	Client *http.Client
}

// Loader decodes local and remote audio into Sources on an Output.
type Loader struct {
	logger *slog.Logger
	out    *Output
	cfg    LoaderConfig
}

// NewLoader creates a loader playing through out.
func NewLoader(out *Output, cfg LoaderConfig, logger *slog.Logger) *Loader {
	if cfg.MaxDownload <= 0 {
		cfg.MaxDownload = DefaultMaxDownload
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		logger: logger.With(slog.String("adapter", "beep_loader")),
		out:    out,
		cfg:    cfg,
	}
}

// OpenFile decodes a local file. The decoder owns the file from then on.
func (l *Loader) OpenFile(filePath string) (ports.MediaSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, domain.NewSourceError("open", filePath, err)
	}

	info := fileTrackInfo(filePath, f)
	decoder, format, err := decode(filepath.Ext(filePath), f)
	if err != nil {
		_ = f.Close()
		return nil, domain.NewSourceError("decode", filePath, err)
	}

	l.logger.Info("file opened",
		slog.String("path", filePath),
		slog.Int("sample_rate", int(format.SampleRate)))
	return newSource(l.out, decoder, format, info, l.cfg.ProgressInterval, l.logger), nil
}

// OpenURL downloads a remote file into memory and decodes it.
func (l *Loader) OpenURL(ctx context.Context, rawURL string) (ports.MediaSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.NewSourceError("open", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.NewSourceError("download", rawURL, err)
	}
	resp, err := l.cfg.Client.Do(req)
	if err != nil {
		return nil, domain.NewSourceError("download", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewSourceError("download", rawURL, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.cfg.MaxDownload+1))
	if err != nil {
		return nil, domain.NewSourceError("download", rawURL, err)
	}
	if int64(len(body)) > l.cfg.MaxDownload {
		return nil, domain.NewSourceError("download", rawURL, fmt.Errorf("payload exceeds %d bytes", l.cfg.MaxDownload))
	}

	r := bytes.NewReader(body)
	info := urlTrackInfo(u, r)
	decoder, format, err := decode(path.Ext(u.Path), memoryFile{r})
	if err != nil {
		return nil, domain.NewSourceError("decode", rawURL, err)
	}

	l.logger.Info("url opened",
		slog.String("url", rawURL),
		slog.Int("bytes", len(body)))
	return newSource(l.out, decoder, format, info, l.cfg.ProgressInterval, l.logger), nil
}

// memoryFile lets in-memory payloads satisfy decoders that want a closer,
// keeping Seek visible so the decoders stay seekable.
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

// readSeekCloser is what every decoder accepts.
type readSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

// decode picks a decoder by extension.
func decode(ext string, rc readSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return mp3.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	case ".ogg":
		return vorbis.Decode(rc)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
}

var _ ports.MediaLoader = (*Loader)(nil)
