// Package oracle asks an OpenAI-compatible chat model to rate whether two
// addresses refer to the same location.
package oracle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"address-similarity/internal/constants"
	"address-similarity/internal/prompts"
	"address-similarity/pkg/circuit"
	errs "address-similarity/pkg/errors"
	"address-similarity/pkg/logging"
)

// ErrNoCredentials is returned by New when no API key is configured.
var ErrNoCredentials = errors.New("oracle: no API key configured")

const system = "openai"

// ChatClient is the subset of *openai.Client the oracle needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config tunes the oracle client.
type Config struct {
	APIKey      string
	BaseURL     string // empty = api.openai.com
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	RateLimit   float64 // requests per second, 0 = unlimited
	Burst       int
}

// Client implements similarity.Oracle.
type Client struct {
	chat    ChatClient
	cfg     Config
	pm      *prompts.Manager
	breaker *circuit.Breaker
	limiter *rate.Limiter
	cost    *CostTracker
	log     *logging.ComponentLogger
}

// New builds a client over the OpenAI SDK. It fails with ErrNoCredentials
// when cfg.APIKey is empty, without touching the network.
func New(cfg Config, pm *prompts.Manager, log *logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredentials
	}
	cfg = withDefaults(cfg)

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return NewWithChat(openai.NewClientWithConfig(oc), cfg, pm, log)
}

// NewWithChat builds a client over any ChatClient (tests use a mock).
func NewWithChat(chat ChatClient, cfg Config, pm *prompts.Manager, log *logging.Logger) (*Client, error) {
	if chat == nil {
		return nil, errs.NewValidation("oracle.New", "chat client is required", nil)
	}
	if pm == nil {
		var err error
		if pm, err = prompts.NewManager(); err != nil {
			return nil, err
		}
	}
	cfg = withDefaults(cfg)

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	opTimeout := min(cfg.Timeout, constants.OracleOperationTimeout)
	return &Client{
		chat: chat,
		cfg:  cfg,
		pm:   pm,
		breaker: circuit.New(circuit.Config{
			Name:                constants.OracleCircuitBreakerName,
			OperationTimeout:    opTimeout,
			OpenFor:             constants.OracleOpenFor,
			MaxConsecFailures:   constants.OracleMaxConsecFailures,
			WindowSize:          constants.OracleCircuitWindowSize,
			MinSamples:          constants.OracleCircuitMinSamples,
			FailureRate:         constants.OracleCircuitFailureRate,
			SlowCallThreshold:   constants.OracleSlowCallThreshold,
			SlowCallRate:        constants.OracleCircuitSlowCallRate,
			HalfOpenMaxInFlight: 1,
		}, log),
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		cost:    NewCostTracker(),
		log:     log.WithComponent("oracle"),
	}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Model == "" {
		cfg.Model = constants.OracleDefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.OracleDefaultAPITimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = constants.OracleDefaultMaxTokens
	}
	return cfg
}

// Usage returns token and cost counters.
func (c *Client) Usage() Usage { return c.cost.Stats() }

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

type promptData struct {
	AddressA string
	AddressB string
}

// Compare asks the model for a score in [0,1]. Transport failures, an open
// circuit and unparsable replies are returned as errors.
func (c *Client) Compare(ctx context.Context, a, b string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, errs.NewExternal("oracle.Compare", system, "rate limiter", err)
	}

	data := promptData{AddressA: a, AddressB: b}
	sysPrompt, err := c.pm.Render(prompts.AddressCompareSystem, data)
	if err != nil {
		return 0, err
	}
	userPrompt, err := c.pm.Render(prompts.AddressCompareUser, data)
	if err != nil {
		return 0, err
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sysPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	var reply string
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := c.chat.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		c.cost.AddUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		if len(resp.Choices) == 0 {
			return errors.New("no choices in response")
		}
		reply = resp.Choices[0].Message.Content
		return nil
	}, nil)
	if err != nil {
		return 0, errs.NewExternal("oracle.Compare", system, "chat completion failed", err)
	}

	score, err := ParseScore(reply)
	if err != nil {
		c.log.Debug("unparsable oracle reply", logging.String("reply", truncate(reply, 120)))
		return 0, errs.NewExternal("oracle.Compare", system, "malformed reply", err)
	}
	return score, nil
}
