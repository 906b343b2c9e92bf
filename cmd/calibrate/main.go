package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	messier67 "github.com/taracrutchfield/Messier-67-Lab"
	"github.com/taracrutchfield/Messier-67-Lab/internal/cliconfig"
	"github.com/taracrutchfield/Messier-67-Lab/internal/watch"
	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

const helpDescription = `
Calibrate raw CCD exposures into science-ready images.

The pipeline averages bias, dark, and flat frames into master correction
frames, then applies them to every science exposure: overscan trimming,
bias subtraction, counts-per-second conversion, dark subtraction, flat
division, and column-defect repair.

Frame layout, bands, and targets come from a TOML config document
(calibration.toml in the working directory by default).
`

var exampleUsage = strings.TrimSpace(`
  calibrate --raw-dir data/raw --clean-dir data/clean
  calibrate --config night7.toml --sigma 4 --verbose
  calibrate --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "calibrate",
		Short:   "Calibrate raw CCD exposures into science-ready images",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first, then apply env and flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigFile
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := log.NewConsole(cfg.Verbose)
			logger.Info("configuration",
				log.String("raw_dir", cfg.RawDir),
				log.String("clean_dir", cfg.CleanDir),
				log.Float64("sigma", cfg.Sigma),
				log.Int("flat_bands", len(cfg.Flats)),
				log.Int("targets", len(cfg.Targets)),
				log.Bool("watch", cfg.Watch))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := messier67.Run(ctx, cfg, logger); err != nil {
				return err
			}
			if !cfg.Watch {
				return nil
			}

			watcher := watch.New(cfg.RawDir, watch.DefaultDebounce, func(ctx context.Context) error {
				_, err := messier67.Run(ctx, cfg, logger)
				return err
			}, logger)
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVarP(&cfgPath, "config", "c", "", "path to TOML config document")
	flags.StringVar(&cfg.RawDir, "raw-dir", cfg.RawDir, "raw-data root directory")
	flags.StringVar(&cfg.CleanDir, "clean-dir", cfg.CleanDir, "clean-data root directory")
	flags.Float64Var(&cfg.Sigma, "sigma", cfg.Sigma, "outlier rejection threshold in standard deviations")
	flags.Float64Var(&cfg.UpperPercentile, "upper-percentile", cfg.UpperPercentile, "column-defect upper percentile")
	flags.Float64Var(&cfg.LowerPercentile, "lower-percentile", cfg.LowerPercentile, "column-defect lower percentile")
	flags.BoolVar(&cfg.Watch, "watch", cfg.Watch, "recalibrate when new raw frames appear")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
