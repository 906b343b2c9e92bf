package calib

import (
	"context"
	"errors"
	"fmt"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
	"github.com/taracrutchfield/Messier-67-Lab/internal/ports"
	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

// Science calibrates every raw science frame in dir against the three
// master frames: trim overscan, apply
//
//	(((frame − bias) / exposure time) − dark) / flat
//
// then repair column defects. No outlier rejection is applied; the science
// signal must be preserved. Results are ordered by filename and tagged with
// the originating name and the CRDER2S error estimate.
func (b *Builder) Science(ctx context.Context, dir string, bias, dark, flat Input) ([]domain.CalibratedImage, error) {
	masterBias, err := b.resolveBias(ctx, bias)
	if err != nil {
		return nil, err
	}
	masterDark, err := b.resolveDark(ctx, dark, masterBias)
	if err != nil {
		return nil, err
	}
	masterFlat, err := b.resolveFlat(ctx, flat, masterBias, masterDark)
	if err != nil {
		return nil, err
	}

	cursor, err := b.source.Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var images []domain.CalibratedImage
	for {
		frame, err := cursor.Next(ctx)
		if errors.Is(err, ports.ErrNoMoreFrames) {
			break
		}
		if err != nil {
			return nil, err
		}
		img, err := b.calibrate(frame, masterBias, masterDark, masterFlat)
		if err != nil {
			return nil, fmt.Errorf("calibrate %s: %w", frame.Meta.Name, err)
		}
		images = append(images, img)
	}

	if len(images) == 0 {
		b.logger.Warn("no science frames found", log.String("dir", dir))
	} else {
		b.logger.Info("calibrated science frames",
			log.String("dir", dir),
			log.Int("frames", len(images)))
	}
	return images, nil
}

// calibrate produces the calibrated image for a single science frame.
func (b *Builder) calibrate(frame domain.Frame, bias, dark, flat *grid.Grid) (domain.CalibratedImage, error) {
	if !frame.Meta.HasErrorEstimate {
		return domain.CalibratedImage{}, fmt.Errorf("%w: missing CRDER2S error estimate", domain.ErrMalformedFrame)
	}
	trimmed, err := TrimOverscan(frame)
	if err != nil {
		return domain.CalibratedImage{}, err
	}
	corrected, err := correctFlat(trimmed, bias, dark, frame.Meta)
	if err != nil {
		return domain.CalibratedImage{}, err
	}
	if !corrected.SameShape(flat) {
		return domain.CalibratedImage{}, fmt.Errorf("%w: frame is %s, flat master is %s",
			domain.ErrShapeMismatch, corrected.Shape(), flat.Shape())
	}
	for i := range corrected.Pix {
		corrected.Pix[i] /= flat.Pix[i]
	}
	repaired := RemoveLines(corrected, b.config.UpperPercentile, b.config.LowerPercentile)
	return domain.CalibratedImage{
		Name:          frame.Meta.Name,
		ErrorEstimate: frame.Meta.ErrorEstimate,
		Data:          repaired,
	}, nil
}
