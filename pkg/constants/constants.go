// Package constants provides shared constants for the financing engine and
// its command line and HTTP front ends.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Amortization limits
const (
	// BalanceThreshold is the balance at or below which a loan counts as repaid.
	BalanceThreshold = 0.01
	// BalanceEpsilon is the balance below which the remaining balance is clamped to 0.
	BalanceEpsilon = 1e-5
	// MaxOpenEndedMonths bounds the simulation of a loan without a planned term (50 years).
	MaxOpenEndedMonths = 600
	// MaxPlannedTermMonths bounds a planned term (100 years).
	MaxPlannedTermMonths = 1200
	// MaxPlausiblePrincipal is the largest principal accepted without a warning.
	MaxPlausiblePrincipal = 1e12
	// MaxPlausibleRatePercent is the largest annual rate accepted without a warning.
	MaxPlausibleRatePercent = 100.0
)

// Subsidized loan policy
const (
	// SubsidizedMaxTermYears is the hard ceiling on the subsidized loan term.
	SubsidizedMaxTermYears = 10
	// SubsidizedMinTermYears is the floor of the subsidized loan term.
	SubsidizedMinTermYears = 1
	// SubsidizedAmortizationRate is the fixed annual amortization of the subsidized loan in percent.
	SubsidizedAmortizationRate = 2.0
)

// Defaults for a new financing scenario
const (
	DefaultTotalPrincipal         = 500000.0
	DefaultPrimaryInterestRate    = 3.5
	DefaultAmortizationRate       = 2.0
	DefaultSpecialRepaymentRate   = 1.0
	DefaultPrimaryTermYears       = 15
	DefaultSubsidizedEnabled      = true
	DefaultSubsidizedPrincipal    = 100000.0
	DefaultSubsidizedInterestRate = 1.5
	DefaultSubsidizedTermYears    = 10
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"
	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
	// OutputFormatJSON is the JSON document output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default scenario file name
	DefaultConfigFile = "scenario.yaml"
	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "HAUSFINANZIERUNG"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"
	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML scenarios (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
	// DefaultCacheTTLSeconds is how long a computed financing stays cached
	DefaultCacheTTLSeconds = 3600
	// DefaultCacheSize bounds the in-memory result cache
	DefaultCacheSize = 512
)
