package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is the config document looked for in the working
// directory when --config is not given.
const DefaultConfigFile = "calibration.toml"

// fileConfig mirrors Config for the TOML document. The bias and dark
// sections carry a single path; flat maps band names to subpaths; science
// maps target names to parallel path and band lists.
type fileConfig struct {
	RawDir          string                 `toml:"raw_dir"`
	CleanDir        string                 `toml:"clean_dir"`
	Sigma           float64                `toml:"sigma"`
	UpperPercentile float64                `toml:"upper_percentile"`
	LowerPercentile float64                `toml:"lower_percentile"`
	Bias            *pathSection           `toml:"bias"`
	Dark            *pathSection           `toml:"dark"`
	Flat            map[string]string      `toml:"flat"`
	Science         map[string]targetTable `toml:"science"`
	Watch           *bool                  `toml:"watch"`
}

type pathSection struct {
	Path string `toml:"path"`
}

type targetTable struct {
	Paths []string `toml:"paths"`
	Bands []string `toml:"bands"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies file values onto cfg, respecting flags that were
// explicitly set. The flat and science tables have no flag equivalent and
// are applied whenever present.
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("raw-dir", fc.RawDir, &cfg.RawDir)
	s.setString("clean-dir", fc.CleanDir, &cfg.CleanDir)
	s.setFloat("sigma", fc.Sigma, &cfg.Sigma)
	s.setFloat("upper-percentile", fc.UpperPercentile, &cfg.UpperPercentile)
	s.setFloat("lower-percentile", fc.LowerPercentile, &cfg.LowerPercentile)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	if fc.Bias != nil {
		cfg.BiasPath = fc.Bias.Path
	}
	if fc.Dark != nil {
		cfg.DarkPath = fc.Dark.Path
	}
	if fc.Flat != nil {
		cfg.Flats = fc.Flat
	}
	if fc.Science != nil {
		cfg.Targets = make(map[string]Target, len(fc.Science))
		for name, t := range fc.Science {
			cfg.Targets[name] = Target{Paths: t.Paths, Bands: t.Bands}
		}
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
