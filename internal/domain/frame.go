package domain

import "github.com/taracrutchfield/Messier-67-Lab/internal/grid"

// FrameMeta holds the header metadata read alongside a frame's pixel data.
type FrameMeta struct {
	// Name is the frame's filename within its source directory.
	Name string

	// ExposureTime is the exposure duration in seconds (EXPTIME).
	// Zero identifies a bias frame.
	ExposureTime float64

	// Cover is the number of trailing overscan columns to trim (COVER).
	Cover int

	// Rover is the number of trailing overscan rows to trim (ROVER).
	Rover int

	// ErrorEstimate is the per-frame error estimate (CRDER2S), present on
	// science frames only. HasErrorEstimate reports whether the header
	// carried the card.
	ErrorEstimate    float64
	HasErrorEstimate bool

	// Band is the photometric band the frame was taken in, when known.
	Band string
}

// Frame is one raw exposure as loaded from storage: the full pixel grid
// (overscan included) plus its metadata. Frames are immutable once loaded.
type Frame struct {
	Meta   FrameMeta
	Pixels *grid.Grid
}

// TrimmedShape returns the shape the frame will have after overscan removal.
func (f Frame) TrimmedShape() grid.Shape {
	return grid.Shape{
		Rows: f.Pixels.Rows - f.Meta.Rover,
		Cols: f.Pixels.Cols - f.Meta.Cover,
	}
}
