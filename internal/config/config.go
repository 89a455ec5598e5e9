// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected for scenario start dates.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for loan-analyzer.
type Configuration struct {
	Logging    LoggingConfig       `yaml:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig        `yaml:"output,omitempty" mapstructure:"output"`
	Storage    StorageConfig       `yaml:"storage,omitempty" mapstructure:"storage"`
	Evaluation EvaluationConfig    `yaml:"evaluation,omitempty" mapstructure:"evaluation"`
	Optimizer  *OptimizerConfig    `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Scenarios  []scenario.Scenario `yaml:"scenarios" mapstructure:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// StorageConfig points at the SQLite scenario store. An empty path disables it.
type StorageConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// EvaluationConfig tunes concurrent scenario evaluation.
type EvaluationConfig struct {
	Workers int `yaml:"workers,omitempty" mapstructure:"workers"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make these keys visible to AutomaticEnv even when the file omits them.
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	v.SetDefault("storage.path", "")
	v.SetDefault("evaluation.workers", 0)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if configuration.Output.Format == "" {
		configuration.Output.Format = constants.OutputFormatPretty
	}
	if configuration.Optimizer != nil {
		configuration.Optimizer.Normalize()
	}
	return &configuration, nil
}

// Portfolio validates the configured scenarios and returns them as a
// portfolio. Unnamed scenarios get default names.
func (c *Configuration) Portfolio() (*scenario.Portfolio, error) {
	portfolio, err := scenario.NewPortfolio(c.Scenarios...)
	if err != nil {
		return nil, err
	}
	for _, s := range portfolio.Scenarios() {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return portfolio, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{}
	for _, s := range c.Scenarios {
		validator.Scenarios = append(validator.Scenarios, validation.ScenarioConfig{
			Name:      s.Name,
			StartDate: s.StartDate,
			Loan:      s.Loan,
		})
	}
	warnings := validator.ValidateAll()

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Optimizer != nil {
		if err := c.Optimizer.Validate(); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}
