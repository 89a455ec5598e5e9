// Package constants provides shared constants for the loan-analyzer application.
package constants

// DateTimeLayout is the format of scenario start dates and of the period labels
// in dated schedules.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places rendered for currency values
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// MaxSupportedTermYears is the longest term the engine accepts. Schedules are
// held in memory, so the term bounds both their size and the work per request.
const MaxSupportedTermYears = 100

// Tolerances
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Reference input ranges used by the interactive front end. The engine does not
// enforce them; configuration validation reports values outside them as warnings.
const (
	MinLoanAmount = 1000.0
	MaxLoanAmount = 1000000.0

	MinDownPayment = 0.0
	MaxDownPayment = 500000.0

	MinInterestRate = 0.5
	MaxInterestRate = 15.0

	MinTermYears = 1
	MaxTermYears = 30

	MinExtraPayment = 0.0
	MaxExtraPayment = 10000.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Scenario document formats
const (
	DocumentFormatJSON = "json"
	DocumentFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides, e.g. LOAN_ANALYZER_OUTPUT_FORMAT
	EnvPrefix = "LOAN_ANALYZER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRequestsPerMinute is the default per-client rate limit
	DefaultRequestsPerMinute = 120

	// DefaultBurstSize is the default per-client burst size
	DefaultBurstSize = 20

	// DefaultCacheEntries is the default capacity of the in-memory schedule cache
	DefaultCacheEntries = 512

	// DefaultCacheTTLSeconds is the default lifetime of cached schedules
	DefaultCacheTTLSeconds = 900

	// DefaultEvaluationWorkers bounds concurrent scenario evaluation
	DefaultEvaluationWorkers = 8
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)
