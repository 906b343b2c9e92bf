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

// Input selects where a builder gets a dependency master from: either a
// precomputed grid or a source directory to build one from. Resolution
// happens once, before the fold over the dependent directory begins.
type Input struct {
	master *grid.Grid
	dir    string
}

// FromMaster wraps a precomputed master frame as a builder input.
func FromMaster(g *grid.Grid) Input {
	return Input{master: g}
}

// FromDir points a builder input at a source directory of raw frames.
func FromDir(dir string) Input {
	return Input{dir: dir}
}

// BuilderConfig tunes the statistical thresholds of the pipeline.
type BuilderConfig struct {
	// Sigma is the outlier rejection threshold in standard deviations.
	Sigma float64

	// UpperPercentile and LowerPercentile bound the column-sum profile in
	// artifact removal; columns outside them are repaired.
	UpperPercentile float64
	LowerPercentile float64
}

// setDefaults fills unset thresholds.
func (c *BuilderConfig) setDefaults() {
	if c.Sigma <= 0 {
		c.Sigma = DefaultSigma
	}
	if c.UpperPercentile <= 0 {
		c.UpperPercentile = DefaultUpperPercentile
	}
	if c.LowerPercentile <= 0 {
		c.LowerPercentile = DefaultLowerPercentile
	}
}

// Builder produces master frames and calibrated science images from raw
// frame directories. All methods fully consume their input before
// returning; no state outlives a single call.
type Builder struct {
	config BuilderConfig
	source ports.FrameSource
	logger log.Logger
}

// NewBuilder creates a builder reading raw frames from source.
func NewBuilder(config BuilderConfig, source ports.FrameSource, logger log.Logger) *Builder {
	config.setDefaults()
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Builder{config: config, source: source, logger: logger}
}

// Bias builds the master bias: the average of all zero-exposure frames in
// dir. Frames with nonzero exposure time are skipped with a diagnostic.
func (b *Builder) Bias(ctx context.Context, dir string) (*grid.Grid, error) {
	master, err := b.accumulate(ctx, dir, domain.MasterBias,
		func(meta domain.FrameMeta, trimmed *grid.Grid) (*grid.Grid, error) {
			if meta.ExposureTime != 0 {
				return nil, fmt.Errorf("%w: %s has exposure time %g, must be zero",
					domain.ErrNotBiasFrame, meta.Name, meta.ExposureTime)
			}
			return trimmed, nil
		}, false)
	if err != nil {
		return nil, fmt.Errorf("build master bias from %s: %w", dir, err)
	}
	return master, nil
}

// Dark builds the master dark: the average dark-current rate map. Each
// frame is bias-subtracted and divided by its exposure time before
// accumulation.
func (b *Builder) Dark(ctx context.Context, dir string, bias Input) (*grid.Grid, error) {
	masterBias, err := b.resolveBias(ctx, bias)
	if err != nil {
		return nil, err
	}
	master, err := b.accumulate(ctx, dir, domain.MasterDark,
		func(meta domain.FrameMeta, trimmed *grid.Grid) (*grid.Grid, error) {
			return correctDark(trimmed, masterBias, meta)
		}, false)
	if err != nil {
		return nil, fmt.Errorf("build master dark from %s: %w", dir, err)
	}
	return master, nil
}

// Flat builds the master flat: each frame is bias- and dark-corrected,
// normalized by its own minimum, and averaged.
func (b *Builder) Flat(ctx context.Context, dir string, bias, dark Input) (*grid.Grid, error) {
	masterBias, err := b.resolveBias(ctx, bias)
	if err != nil {
		return nil, err
	}
	masterDark, err := b.resolveDark(ctx, dark, masterBias)
	if err != nil {
		return nil, err
	}
	master, err := b.accumulate(ctx, dir, domain.MasterFlat,
		func(meta domain.FrameMeta, trimmed *grid.Grid) (*grid.Grid, error) {
			return correctFlat(trimmed, masterBias, masterDark, meta)
		}, true)
	if err != nil {
		return nil, fmt.Errorf("build master flat from %s: %w", dir, err)
	}
	return master, nil
}

// resolveBias turns a bias input into a concrete master grid.
func (b *Builder) resolveBias(ctx context.Context, in Input) (*grid.Grid, error) {
	if in.master != nil {
		return in.master, nil
	}
	if in.dir == "" {
		return nil, fmt.Errorf("%w: bias input has neither master nor directory", domain.ErrInvalidConfig)
	}
	return b.Bias(ctx, in.dir)
}

// resolveDark turns a dark input into a concrete master grid, building from
// its directory with the already-resolved bias when needed.
func (b *Builder) resolveDark(ctx context.Context, in Input, bias *grid.Grid) (*grid.Grid, error) {
	if in.master != nil {
		return in.master, nil
	}
	if in.dir == "" {
		return nil, fmt.Errorf("%w: dark input has neither master nor directory", domain.ErrInvalidConfig)
	}
	return b.Dark(ctx, in.dir, FromMaster(bias))
}

// resolveFlat turns a flat input into a concrete master grid.
func (b *Builder) resolveFlat(ctx context.Context, in Input, bias, dark *grid.Grid) (*grid.Grid, error) {
	if in.master != nil {
		return in.master, nil
	}
	if in.dir == "" {
		return nil, fmt.Errorf("%w: flat input has neither master nor directory", domain.ErrInvalidConfig)
	}
	return b.Flat(ctx, in.dir, FromMaster(bias), FromMaster(dark))
}

// correctFunc applies a master-type-specific correction to a trimmed frame.
// Returning ErrNotBiasFrame skips the frame without aborting the fold.
type correctFunc func(meta domain.FrameMeta, trimmed *grid.Grid) (*grid.Grid, error)

// accumulate runs the shared fold over a frame directory: trim overscan,
// apply the correction, reject outliers, add to the running sum. The first
// accepted frame fixes the accumulator shape; the average is taken per
// pixel over the frames that actually contributed to it, so rejected
// outliers do not dilute the result.
func (b *Builder) accumulate(ctx context.Context, dir string, kind domain.MasterKind, correct correctFunc, normalize bool) (*grid.Grid, error) {
	cursor, err := b.source.Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var sum, count *grid.Grid
	frames := 0
	for {
		frame, err := cursor.Next(ctx)
		if errors.Is(err, ports.ErrNoMoreFrames) {
			break
		}
		if err != nil {
			return nil, err
		}

		trimmed, err := TrimOverscan(frame)
		if err != nil {
			return nil, err
		}
		corrected, err := correct(frame.Meta, trimmed)
		if err != nil {
			if errors.Is(err, domain.ErrNotBiasFrame) {
				b.logger.Warn("skipping frame", log.String("frame", frame.Meta.Name), log.Err(err))
				continue
			}
			return nil, err
		}

		if sum == nil {
			sum, _ = grid.New(corrected.Rows, corrected.Cols)
			count, _ = grid.New(corrected.Rows, corrected.Cols)
		} else if !sum.SameShape(corrected) {
			return nil, fmt.Errorf("%w: frame %s is %s, accumulator is %s",
				domain.ErrShapeMismatch, frame.Meta.Name, corrected.Shape(), sum.Shape())
		}

		mask := OutlierMask(corrected, b.config.Sigma)
		scale := 1.0
		if normalize {
			min, err := maskedMin(corrected.Pix, mask)
			if err != nil {
				return nil, fmt.Errorf("frame %s: %v", frame.Meta.Name, err)
			}
			if min == 0 {
				return nil, fmt.Errorf("%w: frame %s has zero minimum after correction",
					domain.ErrMalformedFrame, frame.Meta.Name)
			}
			scale = min
		}
		for i, v := range corrected.Pix {
			if mask[i] {
				continue
			}
			sum.Pix[i] += v / scale
			count.Pix[i]++
		}
		frames++
		b.logger.Debug("accumulated frame",
			log.String("kind", kind.String()),
			log.String("frame", frame.Meta.Name))
	}

	if frames == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDirectory, dir)
	}
	b.logger.Info("built master frame",
		log.String("kind", kind.String()),
		log.String("dir", dir),
		log.Int("frames", frames))
	return average(sum, count), nil
}

// correctDark returns (frame − bias) / exposure time.
func correctDark(f, bias *grid.Grid, meta domain.FrameMeta) (*grid.Grid, error) {
	if !f.SameShape(bias) {
		return nil, fmt.Errorf("%w: frame %s is %s, bias master is %s",
			domain.ErrShapeMismatch, meta.Name, f.Shape(), bias.Shape())
	}
	if meta.ExposureTime <= 0 {
		return nil, fmt.Errorf("%w: frame %s has non-positive exposure time %g",
			domain.ErrMalformedFrame, meta.Name, meta.ExposureTime)
	}
	out, _ := grid.New(f.Rows, f.Cols)
	for i, v := range f.Pix {
		out.Pix[i] = (v - bias.Pix[i]) / meta.ExposureTime
	}
	return out, nil
}

// correctFlat returns ((frame − bias) / exposure time) − dark.
func correctFlat(f, bias, dark *grid.Grid, meta domain.FrameMeta) (*grid.Grid, error) {
	out, err := correctDark(f, bias, meta)
	if err != nil {
		return nil, err
	}
	if !out.SameShape(dark) {
		return nil, fmt.Errorf("%w: frame %s is %s, dark master is %s",
			domain.ErrShapeMismatch, meta.Name, out.Shape(), dark.Shape())
	}
	for i := range out.Pix {
		out.Pix[i] -= dark.Pix[i]
	}
	return out, nil
}

// average divides the accumulated sum by the per-pixel contribution count.
// Pixels that every frame rejected carry no information; they are filled
// with the mean of the contributing pixels.
func average(sum, count *grid.Grid) *grid.Grid {
	out, _ := grid.New(sum.Rows, sum.Cols)
	total := 0.0
	contributed := 0
	for i, n := range count.Pix {
		if n > 0 {
			out.Pix[i] = sum.Pix[i] / n
			total += out.Pix[i]
			contributed++
		}
	}
	if contributed == len(out.Pix) {
		return out
	}
	fill := total / float64(contributed)
	for i, n := range count.Pix {
		if n == 0 {
			out.Pix[i] = fill
		}
	}
	return out
}
