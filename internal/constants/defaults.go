package constants

import "time"

// Centralized default values for timeouts and related settings.
// Environment/config may override where supported.

const (
	// External oracle / OpenAI-compatible endpoint
	OracleDefaultAPITimeout  = 30 * time.Second
	OracleOperationTimeout   = 25 * time.Second
	OracleOpenFor            = 45 * time.Second
	OracleSlowCallThreshold  = 10 * time.Second
	OracleMaxConsecFailures  = 5
	OracleCircuitWindowSize  = 20
	OracleCircuitMinSamples  = 5
	OracleDefaultModel       = "gpt-4o-mini"
	OracleDefaultMaxTokens   = 16
	OracleCircuitBreakerName = "oracle"

	// Benchmark
	BenchmarkDefaultWorkers = 4
	// rows between context checks in the benchmark loop
	BenchmarkCancelCheckEvery = 64
)
