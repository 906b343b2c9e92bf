package calib

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
	"github.com/taracrutchfield/Messier-67-Lab/internal/grid"
	"github.com/taracrutchfield/Messier-67-Lab/internal/ports"
	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

// Target names the science exposures of one observation target: parallel
// lists of source subpaths and the bands they were taken in.
type Target struct {
	Paths []string
	Bands []string
}

// PipelineConfig describes one full calibration run: the calibration frame
// subpaths, the band-keyed flat subpaths, and the science targets. All
// paths are relative to the frame source and store roots.
type PipelineConfig struct {
	BiasDir  string
	DarkDir  string
	FlatDirs map[string]string
	Targets  map[string]Target
	Builder  BuilderConfig
}

// Validate checks the run description for inconsistencies.
func (c PipelineConfig) Validate() error {
	if c.BiasDir == "" {
		return fmt.Errorf("%w: bias path is required", domain.ErrInvalidConfig)
	}
	if c.DarkDir == "" {
		return fmt.Errorf("%w: dark path is required", domain.ErrInvalidConfig)
	}
	for name, t := range c.Targets {
		if len(t.Paths) != len(t.Bands) {
			return fmt.Errorf("%w: target %s has %d paths but %d bands",
				domain.ErrInvalidConfig, name, len(t.Paths), len(t.Bands))
		}
		for _, band := range t.Bands {
			if _, ok := c.FlatDirs[band]; !ok {
				return fmt.Errorf("%w: target %s references unknown band %q",
					domain.ErrInvalidConfig, name, band)
			}
		}
	}
	return nil
}

// RunSummary reports what a pipeline run produced.
type RunSummary struct {
	FlatBands     int
	Targets       int
	ScienceImages int
	Elapsed       time.Duration
}

// Pipeline runs a full calibration: master bias, master dark, per-band
// master flats, then every target's science frames, persisting each output
// through the store under the mirrored clean tree.
type Pipeline struct {
	config  PipelineConfig
	builder *Builder
	store   ports.ImageStore
	logger  log.Logger
}

// NewPipeline creates a pipeline over the given source and store.
func NewPipeline(config PipelineConfig, source ports.FrameSource, store ports.ImageStore, logger log.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Pipeline{
		config:  config,
		builder: NewBuilder(config.Builder, source, logger),
		store:   store,
		logger:  logger,
	}, nil
}

// Run executes the whole calibration batch. Masters are built in dependency
// order; bands and targets are visited in sorted order so runs are
// reproducible. A directory- or shape-level failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()

	bias, err := p.builder.Bias(ctx, p.config.BiasDir)
	if err != nil {
		return nil, err
	}
	err = p.store.WriteMaster(ctx, p.config.BiasDir, domain.MasterFrame{Kind: domain.MasterBias, Data: bias})
	if err != nil {
		return nil, err
	}

	dark, err := p.builder.Dark(ctx, p.config.DarkDir, FromMaster(bias))
	if err != nil {
		return nil, err
	}
	err = p.store.WriteMaster(ctx, p.config.DarkDir, domain.MasterFrame{Kind: domain.MasterDark, Data: dark})
	if err != nil {
		return nil, err
	}

	flats := make(map[string]*grid.Grid, len(p.config.FlatDirs))
	for _, band := range sortedKeys(p.config.FlatDirs) {
		dir := p.config.FlatDirs[band]
		flat, err := p.builder.Flat(ctx, dir, FromMaster(bias), FromMaster(dark))
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", band, err)
		}
		err = p.store.WriteMaster(ctx, dir, domain.MasterFrame{Kind: domain.MasterFlat, Band: band, Data: flat})
		if err != nil {
			return nil, err
		}
		flats[band] = flat
	}

	summary := &RunSummary{FlatBands: len(flats), Targets: len(p.config.Targets)}
	for _, name := range sortedKeys(p.config.Targets) {
		target := p.config.Targets[name]
		for i, dir := range target.Paths {
			band := target.Bands[i]
			images, err := p.builder.Science(ctx, dir, FromMaster(bias), FromMaster(dark), FromMaster(flats[band]))
			if err != nil {
				return nil, fmt.Errorf("target %s: %w", name, err)
			}
			for seq, img := range images {
				if err := p.store.WriteCalibrated(ctx, dir, seq+1, img); err != nil {
					return nil, fmt.Errorf("target %s: %w", name, err)
				}
			}
			summary.ScienceImages += len(images)
			p.logger.Info("target calibrated",
				log.String("target", name),
				log.String("band", band),
				log.String("dir", dir),
				log.Int("images", len(images)))
		}
	}

	summary.Elapsed = time.Since(start)
	p.logger.Info("calibration run complete",
		log.Int("flat_bands", summary.FlatBands),
		log.Int("targets", summary.Targets),
		log.Int("science_images", summary.ScienceImages),
		log.Any("elapsed", summary.Elapsed))
	return summary, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
