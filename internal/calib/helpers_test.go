package calib

import (
	"context"
	"fmt"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
	"github.com/taracrutchfield/Messier-67-Lab/internal/ports"
)

// memSource implements ports.FrameSource over in-memory frames, keyed by
// directory name. Frames are yielded in slice order.
type memSource struct {
	dirs map[string][]domain.Frame
}

func (s *memSource) Open(ctx context.Context, dir string) (ports.FrameCursor, error) {
	frames, ok := s.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("no such directory %s", dir)
	}
	return &memCursor{frames: frames}, nil
}

type memCursor struct {
	frames []domain.Frame
	next   int
}

func (c *memCursor) Next(ctx context.Context) (domain.Frame, error) {
	if c.next >= len(c.frames) {
		return domain.Frame{}, ports.ErrNoMoreFrames
	}
	f := c.frames[c.next]
	c.next++
	return f, nil
}

func (c *memCursor) Close() error { return nil }

// constFrame builds a 6x6 raw frame with a one-pixel overscan border
// (cover=1, rover=1) filled with junk, trimming to a constant 5x5 image.
func constFrame(name string, value, exptime float64) domain.Frame {
	raw, _ := grid.Constant(6, 6, value)
	for i := 0; i < 6; i++ {
		raw.Set(5, i, -999)
		raw.Set(i, 5, -999)
	}
	return domain.Frame{
		Meta:   domain.FrameMeta{Name: name, ExposureTime: exptime, Cover: 1, Rover: 1},
		Pixels: raw,
	}
}

// plainFrame builds a frame with no overscan region at all.
func plainFrame(name string, rows, cols int, value, exptime float64) domain.Frame {
	g, _ := grid.Constant(rows, cols, value)
	return domain.Frame{
		Meta:   domain.FrameMeta{Name: name, ExposureTime: exptime},
		Pixels: g,
	}
}

// sciFrame is constFrame plus a CRDER2S error estimate.
func sciFrame(name string, value, exptime, errEstimate float64) domain.Frame {
	f := constFrame(name, value, exptime)
	f.Meta.ErrorEstimate = errEstimate
	f.Meta.HasErrorEstimate = true
	return f
}
