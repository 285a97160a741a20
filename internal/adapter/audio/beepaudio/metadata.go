package beepaudio

import (
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// localArtist is shown for files without an artist tag.
const localArtist = "Local File"

// fileTrackInfo builds display metadata for a local file. Tags win; the
// file name without extension is the fallback title.
func fileTrackInfo(filePath string, r io.ReadSeeker) domain.TrackInfo {
	base := filepath.Base(filePath)
	info := domain.TrackInfo{
		Title:    strings.TrimSuffix(base, filepath.Ext(base)),
		Artist:   localArtist,
		Location: filePath,
		Kind:     domain.SourceFile,
	}
	applyTags(&info, r)
	return info
}

// urlTrackInfo builds display metadata for a remote file: last path segment
// as title and the host as artist, unless the payload carries tags.
func urlTrackInfo(u *url.URL, r io.ReadSeeker) domain.TrackInfo {
	info := domain.TrackInfo{
		Title:    path.Base(u.Path),
		Artist:   u.Hostname(),
		Location: u.String(),
		Kind:     domain.SourceURL,
	}
	applyTags(&info, r)
	return info
}

// applyTags overlays tag values and rewinds r for the decoder.
func applyTags(info *domain.TrackInfo, r io.ReadSeeker) {
	if r == nil {
		return
	}
	defer func() { _, _ = r.Seek(0, io.SeekStart) }()

	m, err := tag.ReadFrom(r)
	if err != nil {
		return
	}
	if title := strings.TrimSpace(m.Title()); title != "" {
		info.Title = title
	}
	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		info.Artist = artist
	}
	info.Album = strings.TrimSpace(m.Album())
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		info.AlbumArt = pic.Data
	}
}
