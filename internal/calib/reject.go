package calib

import (
	"errors"

	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
)

// DefaultSigma is the rejection threshold applied before every accumulation
// step in master frame building.
const DefaultSigma = 5.0

// OutlierMask flags pixels farther than sigma standard deviations from the
// grid mean. The mask is parallel to g.Pix. The grid itself is not modified;
// flagged pixels are excluded from subsequent aggregation.
func OutlierMask(g *grid.Grid, sigma float64) []bool {
	return grid.FlagSigma(g.Pix, sigma)
}

// maskedMin returns the smallest unmasked value.
func maskedMin(xs []float64, mask []bool) (float64, error) {
	found := false
	min := 0.0
	for i, v := range xs {
		if mask[i] {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	if !found {
		return 0, errors.New("all pixels rejected")
	}
	return min, nil
}
