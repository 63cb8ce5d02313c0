package constants

// Centralized score thresholds and weights.
// These are not configuration knobs; use pkg/config for env-driven settings.

const (
	// NeutralOracleScore is returned by the oracle method whenever it cannot
	// produce a real answer.
	NeutralOracleScore = 0.5

	// Circuit breaker rate thresholds for the oracle endpoint
	OracleCircuitFailureRate  = 0.5
	OracleCircuitSlowCallRate = 0.5
)
