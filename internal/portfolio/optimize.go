package portfolio

import (
	"math"

	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// OptimizePortfolio computes mean-variance weights proportional to inverse(cov) * mean(returns),
// normalized to sum to 1. returns has one row per observation and one column per symbol.
func OptimizePortfolio(symbols []string, returns [][]float64, cov [][]float64) (map[string]float64, error) {
	n := len(symbols)
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "no symbols to optimize")
	}

	if len(returns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "returns are empty")
	}

	if len(cov) != n {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "covariance matrix has %d rows, expected %d", len(cov), n)
	}

	sigma := mat.NewDense(n, n, nil)
	for i, row := range cov {
		if len(row) != n {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "covariance row %d has %d columns, expected %d", i, len(row), n)
		}

		for j, v := range row {
			sigma.Set(i, j, v)
		}
	}

	means := mat.NewVecDense(n, nil)
	for t, row := range returns {
		if len(row) != n {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "returns row %d has %d columns, expected %d", t, len(row), n)
		}

		for i, v := range row {
			means.SetVec(i, means.AtVec(i)+v)
		}
	}

	means.ScaleVec(1/float64(len(returns)), means)

	var inverse mat.Dense
	if err := inverse.Inverse(sigma); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSingularCovariance, "covariance matrix is not invertible", err)
	}

	var raw mat.VecDense
	raw.MulVec(&inverse, means)

	sum := mat.Sum(&raw)
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, errors.New(errors.ErrCodeSingularCovariance, "optimal weights cannot be normalized")
	}

	weights := make(map[string]float64, n)
	for i, symbol := range symbols {
		weights[symbol] = raw.AtVec(i) / sum
	}

	return weights, nil
}

// CovarianceMatrix returns the sample covariance of returns, one row per observation
// and one column per asset.
func CovarianceMatrix(returns [][]float64) ([][]float64, error) {
	if len(returns) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "at least two observations are required")
	}

	n := len(returns[0])
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "returns have no columns")
	}

	data := mat.NewDense(len(returns), n, nil)
	for t, row := range returns {
		if len(row) != n {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "returns row %d has %d columns, expected %d", t, len(row), n)
		}

		data.SetRow(t, row)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = cov.At(i, j)
		}
	}

	return out, nil
}

// Returns converts close series into simple returns, one row per step and one column per series.
// Every series must have the same length.
func Returns(closes [][]float64) ([][]float64, error) {
	if len(closes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "no series")
	}

	length := len(closes[0])
	for i, series := range closes {
		if len(series) != length {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "series %d has length %d, expected %d", i, len(series), length)
		}
	}

	if length < 2 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "series must have at least two closes")
	}

	out := make([][]float64, length-1)
	for t := 1; t < length; t++ {
		row := make([]float64, len(closes))
		for i, series := range closes {
			if series[t-1] != 0 {
				row[i] = (series[t] - series[t-1]) / series[t-1]
			}
		}

		out[t-1] = row
	}

	return out, nil
}
