package ports

import (
	"context"
	"io"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
)

// FrameSource provides access to raw frames grouped by directory.
// Directories are addressed relative to the source's root.
type FrameSource interface {
	// Open returns a cursor over the frames in dir. Frames are yielded in
	// deterministic (filename) order so that accumulation counts are
	// reproducible. Opening a directory with no frame files is not an
	// error; the cursor reports ErrNoMoreFrames immediately.
	Open(ctx context.Context, dir string) (FrameCursor, error)
}

// FrameCursor streams the frames of one directory.
type FrameCursor interface {
	// Next returns the next frame. Returns ErrNoMoreFrames when the
	// directory is exhausted, or another error for an unreadable or
	// malformed frame file.
	Next(ctx context.Context) (domain.Frame, error)

	// Close releases all resources held by the cursor.
	Close() error
}

// ErrNoMoreFrames indicates that a cursor has yielded every frame.
var ErrNoMoreFrames = io.EOF
