// Package config defines the data structures related to configuration and
// includes functions for loading a financing scenario and turning it into a
// sanitized calculation request.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/financing"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/mathutil"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/validation"
)

// Configuration holds all configuration for a financing scenario.
type Configuration struct {
	Financing Financing     `yaml:"financing" json:"financing"`
	Logging   LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty" json:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv, json
}

// Financing holds the raw financing inputs as entered by a user.
type Financing struct {
	TotalPrincipal float64        `yaml:"totalPrincipal" json:"totalPrincipal"`
	Primary        PrimaryLoan    `yaml:"primary" json:"primary"`
	Subsidized     SubsidizedLoan `yaml:"subsidized" json:"subsidized"`
}

// PrimaryLoan holds the primary loan's rates (annual percent) and term.
type PrimaryLoan struct {
	InterestRate         float64 `yaml:"interestRate" json:"interestRate"`
	AmortizationRate     float64 `yaml:"amortizationRate" json:"amortizationRate"`
	SpecialRepaymentRate float64 `yaml:"specialRepaymentRate" json:"specialRepaymentRate"`
	TermYears            float64 `yaml:"termYears" json:"termYears"` // 0 means open-ended
}

// SubsidizedLoan holds the optional subsidized loan.
type SubsidizedLoan struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Principal    float64 `yaml:"principal" json:"principal"`
	InterestRate float64 `yaml:"interestRate" json:"interestRate"`
	TermYears    float64 `yaml:"termYears" json:"termYears"`
}

// DefaultFinancing returns the financing a new scenario starts with.
func DefaultFinancing() Financing {
	return Financing{
		TotalPrincipal: constants.DefaultTotalPrincipal,
		Primary: PrimaryLoan{
			InterestRate:         constants.DefaultPrimaryInterestRate,
			AmortizationRate:     constants.DefaultAmortizationRate,
			SpecialRepaymentRate: constants.DefaultSpecialRepaymentRate,
			TermYears:            constants.DefaultPrimaryTermYears,
		},
		Subsidized: SubsidizedLoan{
			Enabled:      constants.DefaultSubsidizedEnabled,
			Principal:    constants.DefaultSubsidizedPrincipal,
			InterestRate: constants.DefaultSubsidizedInterestRate,
			TermYears:    constants.DefaultSubsidizedTermYears,
		},
	}
}

// LoadEnvironment loads variables from the given .env files into the
// process environment. Missing files are ignored.
func LoadEnvironment(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading environment file %s: %w", path, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultFinancing()
	v.SetDefault("financing.totalPrincipal", defaults.TotalPrincipal)
	v.SetDefault("financing.primary.interestRate", defaults.Primary.InterestRate)
	v.SetDefault("financing.primary.amortizationRate", defaults.Primary.AmortizationRate)
	v.SetDefault("financing.primary.specialRepaymentRate", defaults.Primary.SpecialRepaymentRate)
	v.SetDefault("financing.primary.termYears", defaults.Primary.TermYears)
	v.SetDefault("financing.subsidized.enabled", defaults.Subsidized.Enabled)
	v.SetDefault("financing.subsidized.principal", defaults.Subsidized.Principal)
	v.SetDefault("financing.subsidized.interestRate", defaults.Subsidized.InterestRate)
	v.SetDefault("financing.subsidized.termYears", defaults.Subsidized.TermYears)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Request sanitizes the financing inputs the way the input form does before
// handing them to the engine: non-finite or negative numbers become 0, terms
// are rounded to whole years, the subsidized term is capped at 10 years and
// a disabled subsidized loan carries no amounts.
func (f Financing) Request() financing.Request {
	req := financing.Request{
		TotalPrincipal:       mathutil.NonNegative(f.TotalPrincipal),
		PrimaryInterestRate:  mathutil.NonNegative(f.Primary.InterestRate),
		AmortizationRate:     mathutil.NonNegative(f.Primary.AmortizationRate),
		SpecialRepaymentRate: mathutil.NonNegative(f.Primary.SpecialRepaymentRate),
		PrimaryTermYears:     math.Round(mathutil.NonNegative(f.Primary.TermYears)),
		SubsidizedEnabled:    f.Subsidized.Enabled,
	}
	if f.Subsidized.Enabled {
		req.SubsidizedPrincipal = mathutil.NonNegative(f.Subsidized.Principal)
		req.SubsidizedInterestRate = mathutil.NonNegative(f.Subsidized.InterestRate)
	}
	req.SubsidizedTermYears = math.Min(constants.SubsidizedMaxTermYears,
		math.Round(mathutil.NonNegative(f.Subsidized.TermYears)))
	return req
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.FinancingValidator{
		TotalPrincipal:         c.Financing.TotalPrincipal,
		InterestRate:           c.Financing.Primary.InterestRate,
		AmortizationRate:       c.Financing.Primary.AmortizationRate,
		SpecialRepaymentRate:   c.Financing.Primary.SpecialRepaymentRate,
		TermYears:              c.Financing.Primary.TermYears,
		SubsidizedEnabled:      c.Financing.Subsidized.Enabled,
		SubsidizedPrincipal:    c.Financing.Subsidized.Principal,
		SubsidizedInterestRate: c.Financing.Subsidized.InterestRate,
		SubsidizedTermYears:    c.Financing.Subsidized.TermYears,
	}
	return validator.ValidateAll()
}
