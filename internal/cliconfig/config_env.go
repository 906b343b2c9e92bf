package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (CALIBRATE_*). It respects flags that have been explicitly set.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("raw-dir", os.Getenv("CALIBRATE_RAW_DIR"), &cfg.RawDir)
	s.setString("clean-dir", os.Getenv("CALIBRATE_CLEAN_DIR"), &cfg.CleanDir)

	if err := s.setFloatFromString("sigma", os.Getenv("CALIBRATE_SIGMA"), &cfg.Sigma); err != nil {
		return err
	}
	if err := s.setFloatFromString("upper-percentile", os.Getenv("CALIBRATE_UPPER_PERCENTILE"), &cfg.UpperPercentile); err != nil {
		return err
	}
	if err := s.setFloatFromString("lower-percentile", os.Getenv("CALIBRATE_LOWER_PERCENTILE"), &cfg.LowerPercentile); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("CALIBRATE_WATCH"), &cfg.Watch)
	s.setBoolFromString("verbose", os.Getenv("CALIBRATE_VERBOSE"), &cfg.Verbose)
	return nil
}
