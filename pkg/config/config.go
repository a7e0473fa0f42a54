// Package config loads faultsim run settings from YAML.
package config

import (
	"os"

	"github.com/fyerfyer/faultsim/pkg/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config contains all run settings. Command line flags override file values.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Output     OutputConfig     `yaml:"output"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level    string `yaml:"level"`
	File     string `yaml:"file"`
	ShowTime bool   `yaml:"show_time"`
}

// SimulationConfig contains engine settings.
type SimulationConfig struct {
	// FaultEnabled turns on fault injection when a fault list is given.
	FaultEnabled bool `yaml:"fault_enabled"`

	// OracleCheck cross-checks binary runs against the reference evaluator.
	OracleCheck bool `yaml:"oracle_check"`
}

// OutputConfig contains reporting settings.
type OutputConfig struct {
	Format  string `yaml:"format"`
	Metrics bool   `yaml:"metrics"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			ShowTime: true,
		},
		Simulation: SimulationConfig{
			FaultEnabled: true,
			OracleCheck:  false,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the settings that have a closed set of values.
func (c Config) Validate() error {
	if _, err := utils.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Output.Format {
	case "", "text", "yaml":
	default:
		return errors.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

// NewLogger builds the logger described by the log settings.
func (c Config) NewLogger() (*utils.Logger, error) {
	level, err := utils.ParseLogLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	var logger *utils.Logger
	if c.Log.File != "" {
		logger, err = utils.NewFileLogger(level, c.Log.File)
		if err != nil {
			return nil, err
		}
	} else {
		logger = utils.NewLogger(level)
	}
	logger.ShowTime = c.Log.ShowTime
	return logger, nil
}
