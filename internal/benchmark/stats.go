package benchmark

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// residuals returns pred-ref, transformed by f.
func residuals(pred, ref []float64, f func(float64) float64) []float64 {
	d := make([]float64, len(pred))
	floats.SubTo(d, pred, ref)
	for i, v := range d {
		d[i] = f(v)
	}
	return d
}

// MAE is the mean absolute error between predictions and references.
func MAE(pred, ref []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	return stat.Mean(residuals(pred, ref, math.Abs), nil)
}

// MSE is the mean squared error.
func MSE(pred, ref []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	return stat.Mean(residuals(pred, ref, func(v float64) float64 { return v * v }), nil)
}

// Pearson is the linear correlation of x and y, 0 when either has no variance.
func Pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
