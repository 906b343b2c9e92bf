// Package calib implements the CCD calibration pipeline: overscan trimming,
// sigma-based outlier rejection, master frame building, science frame
// calibration, and column-defect repair.
package calib

import (
	"fmt"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
)

// TrimOverscan removes the non-light-sensitive border declared in the
// frame's metadata: the trailing Cover columns and Rover rows. Returns
// ErrMalformedFrame when the extents do not leave any image area.
func TrimOverscan(f domain.Frame) (*grid.Grid, error) {
	trimmed, err := f.Pixels.TrimTrailing(f.Meta.Rover, f.Meta.Cover)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %s: %v", domain.ErrMalformedFrame, f.Meta.Name, err)
	}
	return trimmed, nil
}
