// Package messier67 provides CCD image calibration for astronomical
// observation: raw bias, dark, flat, and science exposures are combined
// into master correction frames and one calibrated image per science
// exposure.
//
// Example usage:
//
//	cfg := messier67.DefaultConfig()
//	cfg.RawDir = "data/raw"
//	cfg.CleanDir = "data/clean"
//	cfg.Flats = map[string]string{"V": "Flat/V"}
//	cfg.Targets = map[string]messier67.Target{
//	    "M67": {Paths: []string{"Science/M67/V"}, Bands: []string{"V"}},
//	}
//	summary, err := messier67.Run(context.Background(), cfg, log.NewConsole(false))
package messier67

import (
	"context"

	"github.com/taracrutchfield/Messier-67-Lab/internal/adapters/fs"
	"github.com/taracrutchfield/Messier-67-Lab/internal/calib"
	"github.com/taracrutchfield/Messier-67-Lab/internal/cliconfig"
	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

// Config holds the configuration for a calibration run.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Target describes one observation target's science subpaths and bands.
type Target = cliconfig.Target

// RunSummary reports what a calibration run produced.
type RunSummary = calib.RunSummary

// DefaultConfig returns a Config with default values. At minimum, RawDir
// and CleanDir must be set before calling Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Run executes one full calibration batch: master bias, master dark,
// per-band master flats, then every target's science frames, writing each
// output under the clean tree. It blocks until the run completes, the
// context is canceled, or an unrecoverable error occurs.
func Run(ctx context.Context, cfg Config, logger log.Logger) (*RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoop()
	}

	source := fs.NewDirectorySource(cfg.RawDir, logger)
	store := fs.NewFITSStore(cfg.CleanDir, logger)

	pipeline, err := calib.NewPipeline(pipelineConfig(cfg), source, store, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx)
}

// pipelineConfig converts the CLI configuration into the core's run
// description.
func pipelineConfig(cfg Config) calib.PipelineConfig {
	targets := make(map[string]calib.Target, len(cfg.Targets))
	for name, t := range cfg.Targets {
		targets[name] = calib.Target{Paths: t.Paths, Bands: t.Bands}
	}
	return calib.PipelineConfig{
		BiasDir:  cfg.BiasPath,
		DarkDir:  cfg.DarkPath,
		FlatDirs: cfg.Flats,
		Targets:  targets,
		Builder: calib.BuilderConfig{
			Sigma:           cfg.Sigma,
			UpperPercentile: cfg.UpperPercentile,
			LowerPercentile: cfg.LowerPercentile,
		},
	}
}
