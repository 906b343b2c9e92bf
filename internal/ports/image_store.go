package ports

import (
	"context"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
)

// ImageStore persists pipeline outputs under a mirrored path structure.
// Implementations create output directories as needed; creating a directory
// that already exists is not an error.
type ImageStore interface {
	// WriteMaster persists a master frame under dir (relative to the
	// store's root), named after its kind.
	WriteMaster(ctx context.Context, dir string, master domain.MasterFrame) error

	// WriteCalibrated persists a calibrated science image under dir as the
	// seq-th output of that directory (1-based), embedding the image's
	// error estimate in the file header.
	WriteCalibrated(ctx context.Context, dir string, seq int, img domain.CalibratedImage) error
}
