package domain

import "errors"

// Domain errors for the calibration pipeline. They are returned by the
// public API and can be checked with errors.Is.
var (
	// ErrMalformedFrame is returned when a frame's overscan extents are
	// inconsistent with its dimensions or a required header card is
	// missing. Fatal for the enclosing build.
	ErrMalformedFrame = errors.New("calib: malformed frame")

	// ErrNotBiasFrame marks a file in a bias directory with nonzero
	// exposure time. Recoverable: the frame is skipped with a diagnostic.
	ErrNotBiasFrame = errors.New("calib: not a bias frame")

	// ErrEmptyDirectory is returned when a source directory yields no
	// qualifying frames; an average over zero frames is undefined.
	ErrEmptyDirectory = errors.New("calib: no qualifying frames in directory")

	// ErrShapeMismatch is returned when a frame's trimmed shape differs
	// from the master accumulator's shape.
	ErrShapeMismatch = errors.New("calib: frame shape mismatch")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("calib: invalid configuration")
)
