package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errs "address-similarity/pkg/errors"
)

// Identifiers accepted for DEFAULT_SIMILARITY_METHOD. Kept in sync with
// similarity.Methods(); the registry rejects anything else at startup anyway.
var validMethods = []string{
	"baseline", "levenshtein", "jaro_winkler", "token_based",
	"phonetic", "fuzzy", "external_oracle",
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ConfigValidator collects every problem before failing.
type ConfigValidator struct {
	errors []ValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{errors: make([]ValidationError, 0)}
}

func (cv *ConfigValidator) AddError(field, value, message string) {
	cv.errors = append(cv.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

func (cv *ConfigValidator) GetErrors() []ValidationError {
	return cv.errors
}

func (cv *ConfigValidator) GetErrorsAsString() string {
	lines := make([]string, 0, len(cv.errors))
	for _, err := range cv.errors {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	validator := NewConfigValidator()

	c.validateFormats(validator)
	c.validateRanges(validator)

	if validator.HasErrors() {
		return errs.NewValidation("config.Validate", fmt.Sprintf("configuration validation failed:\n%s", validator.GetErrorsAsString()), nil)
	}
	return nil
}

func (c *Config) validateFormats(validator *ConfigValidator) {
	if !contains(validMethods, c.DefaultMethod) {
		validator.AddError("DEFAULT_SIMILARITY_METHOD", c.DefaultMethod,
			"unknown method (must be one of: "+strings.Join(validMethods, ", ")+")")
	}

	if c.FuzzyStrategy != "full" && c.FuzzyStrategy != "simplified" {
		validator.AddError("FUZZY_STRATEGY", c.FuzzyStrategy, "invalid fuzzy strategy (must be 'full' or 'simplified')")
	}

	validLogLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if c.LogLevel != "" && !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		validator.AddError("LOG_LEVEL", c.LogLevel, "invalid log level (must be one of: trace, debug, info, warn, error, fatal)")
	}

	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "text" {
		validator.AddError("LOG_FORMAT", c.LogFormat, "invalid log format (must be 'json' or 'text')")
	}

	if c.EnableFileLogging && c.LogFile == "" {
		validator.AddError("LOG_FILE", c.LogFile, "log file is required when file logging is enabled")
	}
}

func (c *Config) validateRanges(validator *ConfigValidator) {
	w := c.JaroWinklerPrefixWeight
	if math.IsNaN(w) || w < 0 || w > 0.25 {
		validator.AddError("JARO_WINKLER_PREFIX_WEIGHT", formatFloat(w), "prefix weight must be between 0 and 0.25")
	}

	if c.BenchmarkWorkers < 1 || c.BenchmarkWorkers > 64 {
		validator.AddError("BENCHMARK_WORKERS", strconv.Itoa(c.BenchmarkWorkers), "benchmark workers must be between 1 and 64")
	}

	if c.OracleTimeout <= 0 {
		validator.AddError("ORACLE_TIMEOUT", c.OracleTimeout.String(), "oracle timeout must be positive")
	}

	if c.OracleTemperature < 0 || c.OracleTemperature > 2 {
		validator.AddError("ORACLE_TEMPERATURE", formatFloat(c.OracleTemperature), "temperature must be between 0 and 2")
	}

	if c.OracleMaxTokens < 1 {
		validator.AddError("ORACLE_MAX_TOKENS", strconv.Itoa(c.OracleMaxTokens), "max tokens must be at least 1")
	}

	if c.OracleRateLimit < 0 {
		validator.AddError("ORACLE_RATE_LIMIT", formatFloat(c.OracleRateLimit), "rate limit cannot be negative")
	}

	if c.OracleRateLimit > 0 && c.OracleBurst < 1 {
		validator.AddError("ORACLE_BURST", strconv.Itoa(c.OracleBurst), "burst must be at least 1 when rate limiting")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Summary returns the configuration with secrets masked, for startup logs.
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"env":                        c.Env,
		"default_method":             c.DefaultMethod,
		"jaro_winkler_prefix_weight": c.JaroWinklerPrefixWeight,
		"fuzzy_strategy":             c.FuzzyStrategy,
		"oracle_api_key":             maskString(c.OracleAPIKey, 6),
		"oracle_base_url":            c.OracleBaseURL,
		"oracle_model":               c.OracleModel,
		"oracle_timeout":             c.OracleTimeout.String(),
		"log_level":                  c.LogLevel,
		"log_format":                 c.LogFormat,
		"benchmark_workers":          c.BenchmarkWorkers,
		"metrics_enabled":            c.MetricsEnabled,
	}
}

// maskString masks sensitive strings for logging/display
func maskString(s string, keepFirst int) string {
	if s == "" {
		return ""
	}
	if len(s) <= keepFirst {
		return strings.Repeat("*", len(s))
	}
	return s[:keepFirst] + strings.Repeat("*", len(s)-keepFirst)
}
