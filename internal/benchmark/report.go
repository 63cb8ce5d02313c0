package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	errs "address-similarity/pkg/errors"
)

const tableRule = 100

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// WriteTable prints the ranked results as a fixed-width table.
func (r *Report) WriteTable(w io.Writer) error {
	rule := strings.Repeat("=", tableRule)
	var b strings.Builder
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "SIMILARITY METHOD BENCHMARK RESULTS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-30s %10s %10s %10s %12s %10s\n", "Method", "MAE", "MSE", "Corr", "Time(ms)", "Avg(ms)")
	fmt.Fprintln(&b, strings.Repeat("-", tableRule))
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-30s %10.4f %10.4f %10.4f %12.2f %10.4f\n",
			res.DisplayName, res.MAE, res.MSE, res.Correlation, ms(res.TotalTime), ms(res.AvgTime))
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total samples: %d", r.SampleCount)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, " (skipped %d)", r.Skipped)
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Run: %s  Source: %s\n", r.RunID, r.Source)
	fmt.Fprintln(&b, "Lower MAE = Better | Higher Correlation = Better")
	fmt.Fprintln(&b, rule)
	_, err := io.WriteString(w, b.String())
	return err
}

var csvHeader = []string{"rank", "method", "name", "mae", "mse", "correlation", "total_ms", "avg_ms", "p50_ms", "p95_ms", "samples"}

func (res MethodResult) record(rank int) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.Itoa(rank),
		res.Method.String(),
		res.DisplayName,
		f(res.MAE),
		f(res.MSE),
		f(res.Correlation),
		f(ms(res.TotalTime)),
		f(ms(res.AvgTime)),
		f(res.Latency.P50),
		f(res.Latency.P95),
		strconv.Itoa(res.SampleCount),
	}
}

// WriteCSV writes one line per method in rank order.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, res := range r.Results {
		if err := cw.Write(res.record(i + 1)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonResult struct {
	Rank        int     `json:"rank"`
	Method      string  `json:"method"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MAE         float64 `json:"mae"`
	MSE         float64 `json:"mse"`
	Correlation float64 `json:"correlation"`
	TotalMs     float64 `json:"total_ms"`
	AvgMs       float64 `json:"avg_ms"`
	P50Ms       float64 `json:"p50_ms"`
	P95Ms       float64 `json:"p95_ms"`
	Samples     int     `json:"samples"`
}

type jsonReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs float64      `json:"duration_ms"`
	Source     string       `json:"source"`
	Samples    int          `json:"samples"`
	Skipped    int          `json:"skipped"`
	Results    []jsonResult `json:"results"`
}

// WriteJSON writes the report summary; per-row predictions are left out.
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		DurationMs: ms(r.Duration),
		Source:     r.Source,
		Samples:    r.SampleCount,
		Skipped:    r.Skipped,
		Results:    make([]jsonResult, 0, len(r.Results)),
	}
	for i, res := range r.Results {
		out.Results = append(out.Results, jsonResult{
			Rank:        i + 1,
			Method:      res.Method.String(),
			Name:        res.DisplayName,
			Description: res.Description,
			MAE:         res.MAE,
			MSE:         res.MSE,
			Correlation: res.Correlation,
			TotalMs:     ms(res.TotalTime),
			AvgMs:       ms(res.AvgTime),
			P50Ms:       res.Latency.P50,
			P95Ms:       res.Latency.P95,
			Samples:     res.SampleCount,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

const (
	summarySheet     = "Benchmark"
	predictionsSheet = "Predictions"
)

// BuildWorkbook lays the summary and per-row predictions out on two sheets.
func (r *Report) BuildWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeRow(f, summarySheet, 1, toAny(csvHeader)); err != nil {
		f.Close()
		return nil, err
	}
	for i, res := range r.Results {
		row := []any{i + 1, res.Method.String(), res.DisplayName, res.MAE, res.MSE, res.Correlation,
			ms(res.TotalTime), ms(res.AvgTime), res.Latency.P50, res.Latency.P95, res.SampleCount}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := styleHeader(f, summarySheet, len(csvHeader), header); err != nil {
		f.Close()
		return nil, err
	}

	if len(r.Rows) > 0 {
		if _, err := f.NewSheet(predictionsSheet); err != nil {
			f.Close()
			return nil, err
		}
		cols := []any{ColAddress, ColMatchedAddress, ColReference}
		for _, res := range r.Results {
			cols = append(cols, res.Method.String())
		}
		if err := writeRow(f, predictionsSheet, 1, cols); err != nil {
			f.Close()
			return nil, err
		}
		for i, row := range r.Rows {
			vals := []any{row.Address, row.MatchedAddress, row.Reference}
			for _, res := range r.Results {
				if i < len(res.Predictions) {
					vals = append(vals, res.Predictions[i])
				}
			}
			if err := writeRow(f, predictionsSheet, i+2, vals); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := styleHeader(f, predictionsSheet, len(cols), header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteXLSX saves the workbook to path.
func (r *Report) WriteXLSX(path string) error {
	f, err := r.BuildWorkbook()
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func styleHeader(f *excelize.File, sheet string, ncols, style int) error {
	last, err := excelize.CoordinatesToCellName(ncols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Save writes the report in the format implied by the path extension:
// .csv, .json, .xlsx, or a text table for .txt and no extension.
func (r *Report) Save(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	var write func(io.Writer) error
	switch ext {
	case ".csv":
		write = r.WriteCSV
	case ".json":
		write = r.WriteJSON
	case ".txt", "":
		write = r.WriteTable
	case ".xlsx":
	default:
		return errs.NewValidation("benchmark.Save", "unsupported report type "+ext, nil)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if write == nil {
		return r.WriteXLSX(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	werr := write(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
