// Package config defines the data structures of a budget plan and includes
// functions for loading, normalizing and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/budget-optimizer/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds one budget plan: the run parameters, the channel list
// and the ambient settings of the command line tool.
type Configuration struct {
	TotalBudget       float64       `yaml:"totalBudget" json:"totalBudget" mapstructure:"totalBudget" validate:"gte=0"`
	Step              float64       `yaml:"step" json:"step" mapstructure:"step" validate:"gt=0"`
	Currency          string        `yaml:"currency,omitempty" json:"currency,omitempty" mapstructure:"currency"`
	Objective         Objective     `yaml:"objective,omitempty" json:"objective,omitempty" mapstructure:"objective" validate:"oneof=auto roas revenue adr occupancy awareness"`
	ContentLiftPer10k float64       `yaml:"contentLiftPer10k" json:"contentLiftPer10k" mapstructure:"contentLiftPer10k" validate:"gte=0"`
	ContentChannel    string        `yaml:"contentChannel,omitempty" json:"contentChannel,omitempty" mapstructure:"contentChannel"`
	Seasonality       []float64     `yaml:"seasonality,omitempty" json:"seasonality,omitempty" mapstructure:"seasonality" validate:"len=12,dive,gte=0"`
	ActiveMonths      []string      `yaml:"activeMonths,omitempty" json:"activeMonths,omitempty" mapstructure:"activeMonths"`
	Property          string        `yaml:"property,omitempty" json:"property,omitempty" mapstructure:"property"`
	Channels          []Channel     `yaml:"channels" json:"channels" mapstructure:"channels" validate:"dive"`
	Logging           LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" mapstructure:"logging"`
	Output            OutputConfig  `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty" mapstructure:"level"`                // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`             // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format  string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"` // pretty, csv, json
	Summary bool   `yaml:"summary,omitempty" json:"summary,omitempty" mapstructure:"summary"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// plan there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted plan from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// Normalize applies defaults to unset plan values and to every channel.
func (c *Configuration) Normalize() {
	if c == nil {
		return
	}
	if c.Step == 0 {
		c.Step = constants.DefaultStep
	}
	if strings.TrimSpace(c.Currency) == "" {
		c.Currency = constants.DefaultCurrencySymbol
	}
	c.Objective = CanonicalObjective(string(c.Objective))
	c.ContentChannel = strings.TrimSpace(c.ContentChannel)
	if c.ContentChannel == "" {
		c.ContentChannel = constants.DefaultContentChannel
	}
	if len(c.Seasonality) == 0 {
		c.Seasonality = make([]float64, constants.MonthsPerYear)
		for i := range c.Seasonality {
			c.Seasonality[i] = 1
		}
	}
	for i := range c.Channels {
		c.Channels[i].Normalize()
	}
}

// SeasonalityVector returns the seasonality multipliers as a fixed calendar.
// Missing trailing months are neutral.
func (c *Configuration) SeasonalityVector() [constants.MonthsPerYear]float64 {
	var out [constants.MonthsPerYear]float64
	for i := range out {
		out[i] = 1
		if i < len(c.Seasonality) {
			out[i] = c.Seasonality[i]
		}
	}
	return out
}

// ActiveMonthMask resolves ActiveMonths into a calendar mask. An empty list
// activates every month.
func (c *Configuration) ActiveMonthMask() ([constants.MonthsPerYear]bool, error) {
	return MonthMask(c.ActiveMonths)
}

// EnabledChannels returns the enabled channels in configuration order.
func (c *Configuration) EnabledChannels() []Channel {
	enabled := make([]Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	return enabled
}
