// Package fs provides file-system adapters for the calibration ports: a
// directory-backed frame source reading FITS files and an image store
// writing pipeline outputs under a mirrored directory tree.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/fits"
	"github.com/taracrutchfield/Messier-67-Lab/internal/ports"
	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

// frameExtensions are the filename suffixes recognized as frame files.
var frameExtensions = []string{".fits", ".fit", ".fts"}

// DirectorySource implements ports.FrameSource over a raw-data root
// directory containing FITS frame files.
type DirectorySource struct {
	root   string
	logger log.Logger
}

// NewDirectorySource creates a frame source rooted at root.
func NewDirectorySource(root string, logger log.Logger) *DirectorySource {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &DirectorySource{root: root, logger: logger}
}

// Open lists the frame files in dir (relative to the root) in name order.
func (s *DirectorySource) Open(ctx context.Context, dir string) (ports.FrameCursor, error) {
	full := filepath.Join(s.root, dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list frames in %s: %w", full, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isFrameFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(full, e.Name()))
	}
	sort.Strings(paths)

	s.logger.Debug("opened frame directory",
		log.String("dir", full),
		log.Int("frames", len(paths)))
	return &dirCursor{paths: paths}, nil
}

func isFrameFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range frameExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// dirCursor yields the frames of one directory listing.
type dirCursor struct {
	paths []string
	next  int
}

// Next reads and decodes the next frame file.
func (c *dirCursor) Next(ctx context.Context) (domain.Frame, error) {
	select {
	case <-ctx.Done():
		return domain.Frame{}, ctx.Err()
	default:
	}

	if c.next >= len(c.paths) {
		return domain.Frame{}, ports.ErrNoMoreFrames
	}
	path := c.paths[c.next]
	c.next++

	img, err := fits.ReadFile(path)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	meta, err := frameMeta(filepath.Base(path), &img.Header)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	return domain.Frame{Meta: meta, Pixels: img.Data}, nil
}

// Close releases the cursor. Frame files are opened and closed per read, so
// there is nothing to release.
func (c *dirCursor) Close() error { return nil }

// frameMeta extracts the required calibration metadata from a FITS header.
func frameMeta(name string, h *fits.Header) (domain.FrameMeta, error) {
	var meta domain.FrameMeta
	meta.Name = name

	exptime, err := h.Float("EXPTIME")
	if err != nil {
		return meta, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	cover, err := h.Int("COVER")
	if err != nil {
		return meta, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	rover, err := h.Int("ROVER")
	if err != nil {
		return meta, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	if exptime < 0 || cover < 0 || rover < 0 {
		return meta, fmt.Errorf("%w: negative EXPTIME, COVER, or ROVER", domain.ErrMalformedFrame)
	}
	meta.ExposureTime = exptime
	meta.Cover = cover
	meta.Rover = rover

	if h.Has("CRDER2S") {
		est, err := h.Float("CRDER2S")
		if err != nil {
			return meta, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		meta.ErrorEstimate = est
		meta.HasErrorEstimate = true
	}
	if band, ok := h.Get("BAND"); ok {
		meta.Band = band
	}
	return meta, nil
}
