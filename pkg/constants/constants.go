// Package constants provides shared constants for the budget-optimizer application.
package constants

// Model constants
const (
	// MonthsPerYear is the number of slots in the seasonality calendar
	MonthsPerYear = 12

	// SaturationShare is the fraction of the asymptotic revenue reached at the saturation spend
	SaturationShare = 0.95

	// RateEpsilon is the curve rate constant used when a channel has no usable saturation spend
	RateEpsilon = 0.00001

	// SeasonalityFloor keeps the asymptote positive under extreme seasonality inputs
	SeasonalityFloor = 0.1

	// ContentLiftUnit is the spend unit the content-lift coefficient is expressed against
	ContentLiftUnit = 10000.0

	// MaxIterations bounds the greedy allocation loop
	MaxIterations = 2000000
)

// Plan defaults
const (
	// DefaultStep is the allocation increment used when a plan does not set one
	DefaultStep = 1000.0

	// DefaultCurrencySymbol prefixes formatted currency amounts
	DefaultCurrencySymbol = "$"

	// DefaultContentChannel is the channel id whose spend drives the content lift
	DefaultContentChannel = "content"

	// DefaultWeight is applied to objective weights that are unset
	DefaultWeight = 1.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix namespaces environment overrides for plan settings
	EnvPrefix = "BUDGET"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for plan files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimitRequests is the number of requests allowed per client per window
	DefaultRateLimitRequests = 60

	// DefaultCacheTTLSeconds is how long cached optimization results live in Redis
	DefaultCacheTTLSeconds = 3600

	// ExportFileName is the attachment name used for CSV downloads
	ExportFileName = "budget_allocation.csv"
)

// Tolerance constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (one whole unit)
	CurrencyTolerance = 1.0

	// RatioTolerance is the tolerance for ROAS comparisons after two-decimal rounding
	RatioTolerance = 0.005
)
