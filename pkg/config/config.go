package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	errs "address-similarity/pkg/errors"
)

// Config is the process-wide configuration. Values come from defaults, then
// an optional YAML file named by SIMILARITY_CONFIG, then environment
// variables (a .env file is loaded into the environment by main).
type Config struct {
	Env string `yaml:"env"` // development, staging, production

	// Logging
	LogLevel          string `yaml:"log_level"`
	LogFormat         string `yaml:"log_format"` // "json" or "text"
	LogFile           string `yaml:"log_file"`
	EnableFileLogging bool   `yaml:"enable_file_logging"`

	// Similarity engine
	DefaultMethod           string  `yaml:"default_method"`
	JaroWinklerPrefixWeight float64 `yaml:"jaro_winkler_prefix_weight"`
	FuzzyStrategy           string  `yaml:"fuzzy_strategy"` // "full" or "simplified"

	// External oracle (OpenAI-compatible chat endpoint)
	OracleAPIKey      string        `yaml:"oracle_api_key"`
	OracleBaseURL     string        `yaml:"oracle_base_url"`
	OracleModel       string        `yaml:"oracle_model"`
	OracleTimeout     time.Duration `yaml:"oracle_timeout"`
	OracleTemperature float64       `yaml:"oracle_temperature"`
	OracleMaxTokens   int           `yaml:"oracle_max_tokens"`
	OracleRateLimit   float64       `yaml:"oracle_rate_limit"` // requests per second, 0 = unlimited
	OracleBurst       int           `yaml:"oracle_burst"`

	// Prompts templates overrides; empty = embedded only
	PromptDir string `yaml:"prompt_dir"`

	// Benchmark
	BenchmarkDataset string `yaml:"benchmark_dataset"`
	BenchmarkWorkers int    `yaml:"benchmark_workers"`
	BenchmarkOutput  string `yaml:"benchmark_output"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Env:                     "development",
		LogLevel:                "info",
		LogFormat:               "text",
		LogFile:                 "logs/similarity.log",
		EnableFileLogging:       false,
		DefaultMethod:           "jaro_winkler",
		JaroWinklerPrefixWeight: 0.1,
		FuzzyStrategy:           "full",
		OracleModel:             "gpt-4o-mini",
		OracleTimeout:           30 * time.Second,
		OracleTemperature:       0.0,
		OracleMaxTokens:         16,
		OracleRateLimit:         5,
		OracleBurst:             1,
		BenchmarkDataset:        "data/addresses.csv",
		BenchmarkWorkers:        4,
		MetricsEnabled:          false,
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("SIMILARITY_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.NewValidation("config.LoadFile", "cannot read config file "+path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errs.NewValidation("config.LoadFile", "invalid YAML in "+path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	e := &envReader{}

	c.Env = strings.ToLower(e.str("ENV", c.Env))
	c.LogLevel = e.str("LOG_LEVEL", c.LogLevel)
	c.LogFormat = e.str("LOG_FORMAT", c.LogFormat)
	c.LogFile = e.str("LOG_FILE", c.LogFile)
	c.EnableFileLogging = e.boolean("ENABLE_FILE_LOGGING", c.EnableFileLogging)

	c.DefaultMethod = strings.ToLower(e.str("DEFAULT_SIMILARITY_METHOD", c.DefaultMethod))
	c.JaroWinklerPrefixWeight = e.float("JARO_WINKLER_PREFIX_WEIGHT", c.JaroWinklerPrefixWeight)
	c.FuzzyStrategy = strings.ToLower(e.str("FUZZY_STRATEGY", c.FuzzyStrategy))

	// Oracle credentials: first non-empty wins.
	c.OracleAPIKey = e.str("ORACLE_API_KEY", e.str("OPENAI_API_KEY", e.str("GEMINI_API_KEY", c.OracleAPIKey)))
	c.OracleBaseURL = e.str("ORACLE_BASE_URL", c.OracleBaseURL)
	c.OracleModel = e.str("ORACLE_MODEL", c.OracleModel)
	c.OracleTimeout = e.duration("ORACLE_TIMEOUT", c.OracleTimeout)
	c.OracleTemperature = e.float("ORACLE_TEMPERATURE", c.OracleTemperature)
	c.OracleMaxTokens = e.integer("ORACLE_MAX_TOKENS", c.OracleMaxTokens)
	c.OracleRateLimit = e.float("ORACLE_RATE_LIMIT", c.OracleRateLimit)
	c.OracleBurst = e.integer("ORACLE_BURST", c.OracleBurst)

	c.PromptDir = e.str("PROMPT_DIR", c.PromptDir)

	c.BenchmarkDataset = e.str("BENCHMARK_DATASET", c.BenchmarkDataset)
	c.BenchmarkWorkers = e.integer("BENCHMARK_WORKERS", c.BenchmarkWorkers)
	c.BenchmarkOutput = e.str("BENCHMARK_OUTPUT", c.BenchmarkOutput)

	c.MetricsEnabled = e.boolean("METRICS_ENABLED", c.MetricsEnabled)

	if len(e.problems) > 0 {
		return errs.NewValidation("config.Load", "invalid environment:\n"+strings.Join(e.problems, "\n"), nil)
	}
	return nil
}

// envReader reads typed environment overrides and remembers parse failures
// so they can be reported together.
type envReader struct {
	problems []string
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) parse(key string, parse func(string) error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if err := parse(v); err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s=%q: %v", key, v, err))
	}
}

func (e *envReader) integer(key string, def int) int {
	out := def
	e.parse(key, func(v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			out = n
		}
		return err
	})
	return out
}

func (e *envReader) float(key string, def float64) float64 {
	out := def
	e.parse(key, func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			out = f
		}
		return err
	})
	return out
}

func (e *envReader) boolean(key string, def bool) bool {
	out := def
	e.parse(key, func(v string) error {
		b, err := strconv.ParseBool(v)
		if err == nil {
			out = b
		}
		return err
	})
	return out
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	out := def
	e.parse(key, func(v string) error {
		d, err := time.ParseDuration(v)
		if err == nil {
			out = d
		}
		return err
	})
	return out
}
