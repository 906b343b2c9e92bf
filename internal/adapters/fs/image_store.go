package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/fits"
	"github.com/taracrutchfield/Messier-67-Lab/internal/ports"
	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

// FITSStore implements ports.ImageStore by writing FITS files under a
// clean-data root that mirrors the raw tree.
type FITSStore struct {
	root   string
	logger log.Logger
}

var _ ports.ImageStore = (*FITSStore)(nil)

// NewFITSStore creates a store rooted at root.
func NewFITSStore(root string, logger log.Logger) *FITSStore {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &FITSStore{root: root, logger: logger}
}

// WriteMaster persists a master frame as <root>/<dir>/<Kind>.fits.
func (s *FITSStore) WriteMaster(ctx context.Context, dir string, master domain.MasterFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.ensureDir(dir, master.Kind.String()+".fits")
	if err != nil {
		return err
	}
	if err := fits.WriteFile(path, master.Data); err != nil {
		return fmt.Errorf("write master %s: %w", master.Kind, err)
	}
	s.logger.Debug("wrote master frame",
		log.String("kind", master.Kind.String()),
		log.String("path", path))
	return nil
}

// WriteCalibrated persists a science image as <root>/<dir>/Sci_<seq>.fits
// with the error estimate embedded as an ERROR card.
func (s *FITSStore) WriteCalibrated(ctx context.Context, dir string, seq int, img domain.CalibratedImage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.ensureDir(dir, fmt.Sprintf("Sci_%d.fits", seq))
	if err != nil {
		return err
	}
	err = fits.WriteFile(path, img.Data,
		fits.FloatCard("ERROR", img.ErrorEstimate))
	if err != nil {
		return fmt.Errorf("write calibrated %s: %w", img.Name, err)
	}
	s.logger.Debug("wrote calibrated image",
		log.String("source", img.Name),
		log.String("path", path))
	return nil
}

// ensureDir creates the output directory if missing and returns the full
// output path for name.
func (s *FITSStore) ensureDir(dir, name string) (string, error) {
	full := filepath.Join(s.root, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", full, err)
	}
	return filepath.Join(full, name), nil
}
