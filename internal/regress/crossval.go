package regress

import (
	"math"
)

// selectLambda picks the L2 penalty from the candidate grid by k-fold
// cross-validation on mean absolute error.
//
// Folds are contiguous time slices, deliberately unshuffled: shuffling would
// leak future observations into past folds. Folds too small to fit, or whose
// fit is singular, are skipped; a candidate with no valid fold is excluded.
// When every candidate fails the safe default is returned.
func selectLambda(design [][]float64, targets []float64, cfg Config) float64 {
	n := len(design)
	k := cfg.Folds
	if k < 2 || n < 2*k {
		return cfg.DefaultLambda
	}
	width := len(design[0])
	foldSize := n / k

	best := cfg.DefaultLambda
	bestMAE := math.Inf(1)
	found := false

	for _, lambda := range cfg.LambdaGrid {
		var maeSum float64
		validFolds := 0

		for f := 0; f < k; f++ {
			lo := f * foldSize
			hi := lo + foldSize
			if f == k-1 {
				hi = n
			}

			trainX := make([][]float64, 0, n-(hi-lo))
			trainY := make([]float64, 0, n-(hi-lo))
			trainX = append(trainX, design[:lo]...)
			trainX = append(trainX, design[hi:]...)
			trainY = append(trainY, targets[:lo]...)
			trainY = append(trainY, targets[hi:]...)

			if len(trainX) < width || hi <= lo {
				continue // fold too small to fit
			}

			coeffs, err := fitRidge(trainX, trainY, lambda)
			if err != nil {
				continue
			}

			var absSum float64
			for i := lo; i < hi; i++ {
				var yhat float64
				for j, c := range coeffs {
					yhat += c * design[i][j]
				}
				absSum += math.Abs(targets[i] - yhat)
			}
			maeSum += absSum / float64(hi-lo)
			validFolds++
		}

		if validFolds == 0 {
			continue
		}
		mae := maeSum / float64(validFolds)
		if mae < bestMAE {
			bestMAE = mae
			best = lambda
			found = true
		}
	}

	if !found {
		return cfg.DefaultLambda
	}
	return best
}
