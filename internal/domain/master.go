package domain

import "github.com/taracrutchfield/Messier-67-Lab/internal/grid"

// MasterKind identifies the type of a master correction frame.
type MasterKind int

const (
	MasterBias MasterKind = iota
	MasterDark
	MasterFlat
)

// String returns the conventional name of the master kind.
func (k MasterKind) String() string {
	switch k {
	case MasterBias:
		return "Bias"
	case MasterDark:
		return "Dark"
	case MasterFlat:
		return "Flat"
	default:
		return "Unknown"
	}
}

// MasterFrame is the per-type average of many calibration frames, used as a
// correction reference. Its shape equals the trimmed shape of every frame
// that contributed to it.
type MasterFrame struct {
	Kind MasterKind

	// Band is set for flat masters only; flats are keyed by band.
	Band string

	Data *grid.Grid
}

// CalibratedImage is the final 2D array for one science exposure, tagged
// with its originating filename and error estimate.
type CalibratedImage struct {
	Name          string
	ErrorEstimate float64
	Data          *grid.Grid
}
