package benchmark

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"address-similarity/internal/constants"
	"address-similarity/internal/similarity"
	errs "address-similarity/pkg/errors"
	"address-similarity/pkg/logging"
	"address-similarity/pkg/monitoring"
)

// MethodResult holds one method's accuracy and timing over a dataset.
type MethodResult struct {
	Method      similarity.Method
	DisplayName string
	Description string
	MAE         float64
	MSE         float64
	Correlation float64
	TotalTime   time.Duration
	AvgTime     time.Duration
	Latency     monitoring.Summary // per-row latency
	SampleCount int
	Predictions []float64 // aligned with Report.Rows
}

// Report is the outcome of one benchmark run, Results ranked by ascending MAE.
type Report struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Source      string
	SampleCount int
	Skipped     int
	Rows        []Row
	Results     []MethodResult
}

// Best returns the top-ranked result.
func (r *Report) Best() (MethodResult, bool) {
	if len(r.Results) == 0 {
		return MethodResult{}, false
	}
	return r.Results[0], true
}

// Runner scores datasets with the methods of a registry.
type Runner struct {
	registry *similarity.Registry
	workers  int
	log      *logging.Logger
}

// NewRunner runs up to workers methods concurrently. Use one worker for
// timings free of CPU contention.
func NewRunner(reg *similarity.Registry, workers int, log *logging.Logger) *Runner {
	if workers < 1 {
		workers = constants.BenchmarkDefaultWorkers
	}
	return &Runner{registry: reg, workers: workers, log: log}
}

// Run scores every row of ds with each method (all methods when none are given).
func (r *Runner) Run(ctx context.Context, ds *Dataset, methods ...similarity.Method) (*Report, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, errs.NewValidation("benchmark.Run", "dataset has no rows", nil)
	}
	if len(methods) == 0 {
		methods = similarity.Methods()
	}

	report := &Report{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now(),
		Source:      ds.Source,
		SampleCount: len(ds.Rows),
		Skipped:     ds.Skipped,
		Rows:        ds.Rows,
	}
	ctx = logging.ContextWithRunID(ctx, report.RunID)
	log := r.log.WithContext(ctx)
	log.Info("benchmark started",
		logging.String("source", ds.Source),
		logging.Int("rows", len(ds.Rows)),
		logging.Int("skipped", ds.Skipped),
		logging.Int("methods", len(methods)))

	results := make([]MethodResult, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, m := range methods {
		g.Go(func() error {
			res, err := r.runMethod(gctx, m, ds.Rows)
			if err != nil {
				return err
			}
			results[i] = res
			r.log.WithContext(logging.ContextWithMethod(gctx, string(m))).Info("method scored",
				logging.Float64("mae", res.MAE),
				logging.Float64("correlation", res.Correlation),
				logging.Duration("total", res.TotalTime))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("benchmark aborted", err)
		return nil, err
	}

	Rank(results)
	report.Results = results
	report.Duration = time.Since(report.StartedAt)
	log.Info("benchmark finished", logging.Duration("duration", report.Duration))
	return report, nil
}

func (r *Runner) runMethod(ctx context.Context, m similarity.Method, rows []Row) (MethodResult, error) {
	scorer, err := r.registry.GetMethod(m)
	if err != nil {
		return MethodResult{}, err
	}

	pred := make([]float64, len(rows))
	ref := make([]float64, len(rows))
	window := monitoring.NewWindow(len(rows))
	var total time.Duration
	for i, row := range rows {
		if i%constants.BenchmarkCancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return MethodResult{}, err
			}
		}
		start := time.Now()
		pred[i] = similarity.Calculate(ctx, scorer, row.Address, row.MatchedAddress)
		elapsed := time.Since(start)
		total += elapsed
		window.ObserveDuration(elapsed)
		ref[i] = row.Reference
	}

	return MethodResult{
		Method:      m,
		DisplayName: scorer.Name(),
		Description: scorer.Description(),
		MAE:         MAE(pred, ref),
		MSE:         MSE(pred, ref),
		Correlation: Pearson(pred, ref),
		TotalTime:   total,
		AvgTime:     total / time.Duration(len(rows)),
		Latency:     window.Snapshot(),
		SampleCount: len(rows),
		Predictions: pred,
	}, nil
}

// Rank orders results by ascending MAE; ties keep enumeration order.
func Rank(results []MethodResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MAE != results[j].MAE {
			return results[i].MAE < results[j].MAE
		}
		return results[i].Method.Ordinal() < results[j].Method.Ordinal()
	})
}
