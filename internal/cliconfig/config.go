// Package cliconfig holds the CLI-facing configuration for the calibrate
// tool: the raw and clean data roots, statistical thresholds, and the
// per-frame-type subpath layout. Values are resolved with flag > environment
// > config file > default precedence.
package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/taracrutchfield/Messier-67-Lab/internal/domain"
)

// Target describes one observation target: parallel lists of science
// subpaths and the photometric bands they were exposed in.
type Target struct {
	Paths []string
	Bands []string
}

// Config is the full configuration for one calibration run.
type Config struct {
	// RawDir and CleanDir are the raw-data and clean-data root paths.
	RawDir   string
	CleanDir string

	// Sigma is the outlier rejection threshold in standard deviations.
	Sigma float64

	// UpperPercentile and LowerPercentile bound the column-sum profile for
	// artifact removal.
	UpperPercentile float64
	LowerPercentile float64

	// BiasPath and DarkPath are the calibration frame subpaths under the
	// raw root.
	BiasPath string
	DarkPath string

	// Flats maps band name to the flat frame subpath for that band.
	Flats map[string]string

	// Targets maps target name to its science subpaths and bands.
	Targets map[string]Target

	// Watch keeps the tool running and recalibrates when new raw frames
	// appear. The default is a single batch run.
	Watch bool

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Sigma:           5,
		UpperPercentile: 95,
		LowerPercentile: 10,
		BiasPath:        "Bias",
		DarkPath:        "Dark",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RawDir == "" {
		return fmt.Errorf("%w: raw-dir is required", domain.ErrInvalidConfig)
	}
	if c.CleanDir == "" {
		return fmt.Errorf("%w: clean-dir is required", domain.ErrInvalidConfig)
	}
	if c.Sigma <= 0 {
		return fmt.Errorf("%w: sigma must be positive", domain.ErrInvalidConfig)
	}
	if c.LowerPercentile < 0 || c.UpperPercentile > 100 || c.LowerPercentile >= c.UpperPercentile {
		return fmt.Errorf("%w: percentiles must satisfy 0 <= lower < upper <= 100", domain.ErrInvalidConfig)
	}
	for name, t := range c.Targets {
		if len(t.Paths) != len(t.Bands) {
			return fmt.Errorf("%w: target %s has %d paths but %d bands",
				domain.ErrInvalidConfig, name, len(t.Paths), len(t.Bands))
		}
		for _, band := range t.Bands {
			if _, ok := c.Flats[band]; !ok {
				return fmt.Errorf("%w: target %s references band %q with no flat path",
					domain.ErrInvalidConfig, name, band)
			}
		}
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag has not been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloatFromString parses a string to float64 and sets the destination if
// valid. Used for environment variables.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
