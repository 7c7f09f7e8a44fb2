// Package config implements driver-level configuration loaded from an
// optional .aslc.yaml next to the source file being compiled.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OutputFormat names how a compiled program is rendered. Text is the
// only format; `aslc build` does not read this field.
type OutputFormat string

const (
	// FormatText is the §6 Output B three-address listing.
	FormatText OutputFormat = "text"
)

// Config holds the driver-level choices loaded from .aslc.yaml. Default
// returns the default configuration: text output, no bounds checking.
// The zero value differs only in leaving Output empty.
type Config struct {
	Output        OutputFormat `yaml:"output"`
	BoundsChecked bool         `yaml:"bounds_checked"`
}

// Default returns the configuration used when no .aslc.yaml is found.
func Default() *Config {
	return &Config{Output: FormatText}
}

// Load reads and parses a .aslc.yaml file. A missing file is not an
// error: Load returns Default() so callers need not special-case the
// common case of no configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parsing %s", path)
	}
	if cfg.Output == "" {
		cfg.Output = FormatText
	}
	return cfg, nil
}
