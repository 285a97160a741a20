package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

var supportedExtensions = []string{".mp3", ".wav", ".ogg", ".flac"}

// SupportedExtensions returns the playable file extensions.
func SupportedExtensions() []string {
	return slices.Clone(supportedExtensions)
}

func checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(supportedExtensions, ext) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	return nil
}

// ValidateSourceURL accepts http(s) URLs whose path ends in a supported
// audio extension.
func ValidateSourceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, domain.NewValidationError("url", raw, err.Error()).Wrap(domain.ErrInvalidSourceURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.NewValidationError("url", raw, "scheme must be http or https").Wrap(domain.ErrInvalidSourceURL)
	}
	if u.Host == "" {
		return nil, domain.NewValidationError("url", raw, "missing host").Wrap(domain.ErrInvalidSourceURL)
	}
	if err := checkExtension(path.Base(u.Path)); err != nil {
		return nil, err
	}
	return u, nil
}

// SourceService opens media and makes it the current source.
//
// Thread-safety: This implementation is thread-safe.
type SourceService struct {
	logger   *slog.Logger
	store    *store.Store
	loader   ports.MediaLoader
	bridge   *TransportBridge
	spectral *SpectralAdapter

	// serialises loads so sources are swapped in request order
	mu sync.Mutex
}

// NewSourceService creates a source service.
func NewSourceService(
	logger *slog.Logger,
	st *store.Store,
	loader ports.MediaLoader,
	bridge *TransportBridge,
	spectral *SpectralAdapter,
) *SourceService {
	return &SourceService{
		logger:   componentLogger(logger, "source"),
		store:    st,
		loader:   loader,
		bridge:   bridge,
		spectral: spectral,
	}
}

// LoadFile opens a local file.
func (s *SourceService) LoadFile(filePath string) error {
	if err := checkExtension(filePath); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.loader.OpenFile(filePath)
	if err != nil {
		s.logger.Warn("failed to open file", slog.String("path", filePath), slog.Any("error", err))
		return err
	}
	s.install(src)
	return nil
}

// LoadURL downloads and opens a remote file.
func (s *SourceService) LoadURL(ctx context.Context, rawURL string) error {
	u, err := ValidateSourceURL(rawURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.loader.OpenURL(ctx, u.String())
	if err != nil {
		s.logger.Warn("failed to open url", slog.String("url", u.Redacted()), slog.Any("error", err))
		return err
	}
	s.install(src)
	return nil
}

// Load dispatches to LoadURL for http(s) locations and LoadFile otherwise.
func (s *SourceService) Load(ctx context.Context, location string) error {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return s.LoadURL(ctx, location)
	}
	return s.LoadFile(location)
}

// install runs with s.mu held.
func (s *SourceService) install(src ports.MediaSource) {
	s.bridge.Attach(src)
	prev := s.store.SetSource(src)
	s.release(prev)
}

func (s *SourceService) release(src ports.MediaSource) {
	if src == nil {
		return
	}
	if s.spectral != nil {
		s.spectral.Forget(src)
	}
	if err := src.Close(); err != nil {
		s.logger.Warn("failed to close previous source", slog.Any("error", err))
	}
}

// Close detaches and closes the current source.
func (s *SourceService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bridge.Detach()
	s.release(s.store.ClearSource())
}
