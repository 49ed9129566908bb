// Package config loads the analyzer configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// AnalyzeConfig holds settings for one analysis run. Components receive this
// value explicitly; there is no process-wide mutable configuration.
type AnalyzeConfig struct {
	// Workers bounds the scoring worker pool. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`

	// TopN is how many ranked stuck points to print on the console.
	TopN int `mapstructure:"top_n"`

	// OutputPath is where the JSON report is written.
	OutputPath string `mapstructure:"output_path"`

	// SourceDir is the root of the original source tree, used for
	// annotated copies and report context. Optional.
	SourceDir string `mapstructure:"source_dir"`

	// AnnotatedDir is where the annotated source copy is written. Optional.
	AnnotatedDir string `mapstructure:"annotated_dir"`

	// LogLevel controls logger verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// Config is the top-level configuration file layout.
type Config struct {
	Analyze AnalyzeConfig `mapstructure:"analyze"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Analyze: AnalyzeConfig{
			Workers:    runtime.GOMAXPROCS(0),
			TopN:       10,
			OutputPath: "stuck-points.json",
			LogLevel:   "info",
		},
	}
}

// Load reads a configuration file from the "configs" directory into a Config.
// The configName parameter should be the base name of the file without the
// extension (e.g., "stuckpoint"). Missing file is not an error; defaults are
// returned so the CLI works without any configuration.
func Load(configName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")    // go test from package directories
	v.AddConfigPath("../../configs") // deeper packages

	cfg := Default()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	return cfg, nil
}
