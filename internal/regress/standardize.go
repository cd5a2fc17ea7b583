package regress

import (
	"github.com/montanaflynn/stats"

	"lavanda/domain/forecast"
)

// Standardize z-scores every non-intercept column of the design matrix using
// per-feature mean and population standard deviation. Column 0 is the
// intercept and stays at 1. Constant columns get std treated as 1 so the
// division never blows up.
//
// The returned scaler must be applied identically to any prediction-time
// vector; forecast.Scaler.Apply is that counterpart.
func Standardize(design [][]float64) ([][]float64, *forecast.Scaler) {
	if len(design) == 0 {
		return nil, nil
	}
	cols := len(design[0])
	scaler := &forecast.Scaler{
		Means: make([]float64, cols),
		Stds:  make([]float64, cols),
	}
	scaler.Stds[0] = 1 // intercept passes through

	column := make([]float64, len(design))
	for j := 1; j < cols; j++ {
		for i := range design {
			column[i] = design[i][j]
		}
		mean, _ := stats.Mean(column)
		std, _ := stats.StandardDeviationPopulation(column)
		if std == 0 {
			std = 1
		}
		scaler.Means[j] = mean
		scaler.Stds[j] = std
	}

	out := make([][]float64, len(design))
	for i, row := range design {
		out[i] = scaler.Apply(row)
	}
	return out, scaler
}
