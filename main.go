package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"address-similarity/internal/benchmark"
	"address-similarity/internal/oracle"
	"address-similarity/internal/prompts"
	"address-similarity/internal/similarity"
	"address-similarity/pkg/config"
	"address-similarity/pkg/container"
	errs "address-similarity/pkg/errors"
	"address-similarity/pkg/logging"
	"address-similarity/pkg/metrics"
	"address-similarity/pkg/monitoring"
)

const usage = `usage: address-similarity <command> [flags]

commands:
  benchmark  score a labeled dataset with every method and rank them
  score      score one address pair
  methods    list the available methods
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cmd, args := argv[0], argv[1:]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	case "benchmark", "score", "methods":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	c, err := buildContainer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		return 1
	}

	var log *logging.Logger
	if err := c.Resolve(&log); err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		return 1
	}
	defer log.Close()
	log.Debug("configuration loaded", logging.Any("config", cfg.Summary()))

	switch cmd {
	case "benchmark":
		err = c.Invoke(func(cfg *config.Config, reg *similarity.Registry) error {
			return runBenchmark(ctx, cfg, reg, log, args, os.Stdout)
		})
	case "score":
		err = c.Invoke(func(cfg *config.Config, svc *similarity.Service) error {
			return runScore(ctx, cfg, svc, args, os.Stdout)
		})
	case "methods":
		err = c.Invoke(func(svc *similarity.Service) error {
			return runMethods(svc, args, os.Stdout)
		})
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	log.Error("command failed", err, logging.String("command", cmd))
	fmt.Fprintln(os.Stderr, "error:", err)
	if errs.Is(err, errs.ErrValidation) || errs.Is(err, errs.ErrUnknownMethod) {
		return 2
	}
	return 1
}

// buildContainer registers cfg and the providers for every component the
// commands use.
func buildContainer(cfg *config.Config) (*container.Container, error) {
	c := container.New()
	if err := c.Supply(cfg); err != nil {
		return nil, err
	}

	providers := []interface{}{
		newLogger,
		func(cfg *config.Config) (*prompts.Manager, error) {
			if cfg.PromptDir != "" {
				return prompts.NewManagerWithOverrides(cfg.PromptDir)
			}
			return prompts.NewManager()
		},
		newRegistry,
		func(cfg *config.Config, reg *similarity.Registry, log *logging.Logger) (*similarity.Service, error) {
			return similarity.NewService(reg, cfg.DefaultMethod, log)
		},
	}
	for _, p := range providers {
		if err := c.Provide(p, true); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultLogConfig()
	lc.Level = level
	lc.Format = cfg.LogFormat
	if cfg.EnableFileLogging {
		lc.Output = "file"
		lc.FilePath = cfg.LogFile
	}
	return logging.NewLogger(lc)
}

func newRegistry(cfg *config.Config, pm *prompts.Manager, log *logging.Logger) (*similarity.Registry, error) {
	strategy, err := similarity.ParseFuzzyStrategy(cfg.FuzzyStrategy)
	if err != nil {
		return nil, err
	}
	factory := func() (similarity.Oracle, error) {
		client, err := oracle.New(oracle.Config{
			APIKey:      cfg.OracleAPIKey,
			BaseURL:     cfg.OracleBaseURL,
			Model:       cfg.OracleModel,
			Timeout:     cfg.OracleTimeout,
			Temperature: float32(cfg.OracleTemperature),
			MaxTokens:   cfg.OracleMaxTokens,
			RateLimit:   cfg.OracleRateLimit,
			Burst:       cfg.OracleBurst,
		}, pm, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return similarity.NewRegistry(
		similarity.WithPrefixWeight(cfg.JaroWinklerPrefixWeight),
		similarity.WithFuzzyStrategy(strategy),
		similarity.WithOracleFactory(factory),
		similarity.WithLogger(log),
	)
}

func runBenchmark(ctx context.Context, cfg *config.Config, reg *similarity.Registry, log *logging.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	dataset := fs.String("dataset", cfg.BenchmarkDataset, "labeled dataset (.csv or .xlsx)")
	methodList := fs.String("methods", "", "comma-separated method ids (default: all)")
	output := fs.String("out", cfg.BenchmarkOutput, "write the report to this file (.csv, .json, .xlsx, .txt)")
	workers := fs.Int("workers", cfg.BenchmarkWorkers, "methods scored concurrently")
	showMetrics := fs.Bool("metrics", cfg.MetricsEnabled, "print collected metrics after the run")
	cpuProfile := fs.String("cpuprofile", "", "write a CPU profile of the run to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	methods, err := similarity.ParseMethods(*methodList)
	if err != nil {
		return err
	}
	ds, err := benchmark.LoadDataset(*dataset)
	if err != nil {
		return err
	}

	if *cpuProfile != "" {
		stopProfile, err := monitoring.StartCPUProfile(*cpuProfile)
		if err != nil {
			return err
		}
		defer func() {
			if err := stopProfile(); err != nil {
				log.Warn("cpu profile not closed cleanly", logging.Error(err))
			}
		}()
	}

	report, err := benchmark.NewRunner(reg, *workers, log).Run(ctx, ds, methods...)
	if err != nil {
		return err
	}
	recordReport(metrics.Default, report)
	if usage, ok := oracleUsage(reg, report); ok {
		recordOracleUsage(metrics.Default, usage)
		log.Info("oracle usage",
			logging.Int("requests", usage.TotalRequests),
			logging.Int("tokens", usage.TotalTokens),
			logging.Float64("estimated_cost_usd", usage.EstimatedCostUSD))
	}

	if err := report.WriteTable(out); err != nil {
		return err
	}
	if *output != "" {
		if err := report.Save(*output); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", *output)
	}
	if *showMetrics {
		fmt.Fprintln(out)
		return metrics.Default.WriteText(out)
	}
	return nil
}

// recordReport publishes per-method accuracy gauges for the last run, plus
// runtime figures taken after it.
func recordReport(reg *metrics.Registry, report *benchmark.Report) {
	reg.Counter("benchmark_runs_total", "Completed benchmark runs").Inc(1)
	reg.Gauge("benchmark_samples", "Rows scored in the last run").SetFloat64(float64(report.SampleCount))
	for _, res := range report.Results {
		m := string(res.Method)
		reg.Gauge("benchmark_"+m+"_mae", "Last run MAE for "+res.DisplayName).SetFloat64(res.MAE)
		reg.Gauge("benchmark_"+m+"_correlation", "Last run Pearson correlation for "+res.DisplayName).SetFloat64(res.Correlation)
		reg.Gauge("benchmark_"+m+"_p95_ms", "Last run p95 per-row latency for "+res.DisplayName).SetFloat64(res.Latency.P95)
	}
	rs := monitoring.ReadRuntime()
	reg.Gauge("runtime_goroutines", "Goroutines after the last run").SetFloat64(float64(rs.Goroutines))
	reg.Gauge("runtime_heap_inuse_bytes", "Heap in use after the last run").SetFloat64(float64(rs.HeapInuseBytes))
	reg.Gauge("runtime_gc_total", "GC cycles completed").SetFloat64(float64(rs.NumGC))
}

// oracleUsage returns the oracle client's token counters when the report
// includes the oracle method and a client was configured.
func oracleUsage(reg *similarity.Registry, report *benchmark.Report) (oracle.Usage, bool) {
	used := false
	for _, res := range report.Results {
		used = used || res.Method == similarity.ExternalOracle
	}
	if !used {
		return oracle.Usage{}, false
	}
	s, err := reg.GetMethod(similarity.ExternalOracle)
	if err != nil {
		return oracle.Usage{}, false
	}
	scorer, ok := s.(*similarity.ExternalOracleScorer)
	if !ok {
		return oracle.Usage{}, false
	}
	client, ok := scorer.Oracle().(interface{ Usage() oracle.Usage })
	if !ok {
		return oracle.Usage{}, false
	}
	return client.Usage(), true
}

func recordOracleUsage(reg *metrics.Registry, u oracle.Usage) {
	reg.Gauge("oracle_requests", "Oracle chat requests made by this process").SetFloat64(float64(u.TotalRequests))
	reg.Gauge("oracle_tokens", "Oracle tokens consumed by this process").SetFloat64(float64(u.TotalTokens))
	reg.Gauge("oracle_estimated_cost_usd", "Estimated oracle spend in USD").SetFloat64(u.EstimatedCostUSD)
}

func runScore(ctx context.Context, cfg *config.Config, svc *similarity.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	method := fs.String("method", "", "method id (default: "+cfg.DefaultMethod+")")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errs.NewValidation("score", "expected exactly two addresses", nil)
	}

	res, err := svc.Score(ctx, fs.Arg(0), fs.Arg(1), *method)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprintf(out, "%.4f\t%s\n", res.Score, res.Name)
	return err
}

func runMethods(svc *similarity.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("methods", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	infos, err := svc.Methods()
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	for _, info := range infos {
		marker := " "
		if info.ID == svc.DefaultMethod() {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-16s %-28s %s\n", marker, info.ID, info.DisplayName, info.Description)
	}
	return nil
}
