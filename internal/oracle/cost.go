package oracle

import (
	"sync"
	"time"
)

// Per-token prices (USD) for the default model; other models are estimated
// at the same rate.
const (
	promptCostPerToken     = 0.15 / 1_000_000
	completionCostPerToken = 0.60 / 1_000_000
)

// CostTracker tracks API usage and estimated cost.
type CostTracker struct {
	mu               sync.RWMutex
	totalTokens      int
	totalRequests    int
	estimatedCostUSD float64
	startTime        time.Time
}

func NewCostTracker() *CostTracker {
	return &CostTracker{startTime: time.Now()}
}

func (c *CostTracker) AddUsage(promptTokens, completionTokens int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalTokens += promptTokens + completionTokens
	c.totalRequests++
	c.estimatedCostUSD += float64(promptTokens)*promptCostPerToken + float64(completionTokens)*completionCostPerToken
}

// Usage is a snapshot of CostTracker counters.
type Usage struct {
	TotalTokens      int
	TotalRequests    int
	EstimatedCostUSD float64
	Since            time.Duration
}

func (c *CostTracker) Stats() Usage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Usage{
		TotalTokens:      c.totalTokens,
		TotalRequests:    c.totalRequests,
		EstimatedCostUSD: c.estimatedCostUSD,
		Since:            time.Since(c.startTime),
	}
}
