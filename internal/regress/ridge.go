package regress

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"lavanda/domain/forecast"
	"lavanda/internal/matrix"
)

// fitRidge solves the closed-form ridge system β = (XᵗX + λD)⁻¹ Xᵗy, where D
// is the identity with the intercept entry zeroed so the intercept is never
// penalized. Propagates core.ErrSingularMatrix from the inversion.
func fitRidge(design [][]float64, targets []float64, lambda float64) ([]float64, error) {
	x, err := matrix.FromRows(design)
	if err != nil {
		return nil, err
	}
	xt := x.Transpose()

	xtx, err := matrix.Mul(xt, x)
	if err != nil {
		return nil, err
	}
	for j := 1; j < xtx.Cols; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}

	inv, err := matrix.Invert(xtx)
	if err != nil {
		return nil, err
	}

	xty, err := matrix.MulVec(xt, targets)
	if err != nil {
		return nil, err
	}
	return matrix.MulVec(inv, xty)
}

// diagnose computes in-sample fit diagnostics for coefficients over the
// (standardized) design they were fitted on.
func diagnose(design [][]float64, targets, coeffs []float64) forecast.Diagnostics {
	n := len(design)
	p := len(coeffs)

	fitted := make([]float64, n)
	var ssr, absSum float64
	for i, row := range design {
		var yhat float64
		for j, c := range coeffs {
			yhat += c * row[j]
		}
		fitted[i] = yhat
		resid := targets[i] - yhat
		ssr += resid * resid
		absSum += math.Abs(resid)
	}

	rSquared := stat.RSquaredFrom(fitted, targets, nil)
	if math.IsNaN(rSquared) || math.IsInf(rSquared, 0) {
		rSquared = 0
	}

	var stderr float64
	if n > p {
		stderr = math.Sqrt(ssr / float64(n-p))
	}

	return forecast.Diagnostics{
		RSquared:      rSquared,
		RMSE:          math.Sqrt(ssr / float64(n)),
		MAE:           absSum / float64(n),
		StandardError: stderr,
		N:             n,
	}
}
