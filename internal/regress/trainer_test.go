package regress

import (
	"errors"
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

func TestWinsorize_BoundaryBehavior(t *testing.T) {
	data := []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 118, 200}
	out, bounds, err := Winsorize(data)
	require.NoError(t, err)

	quartiles, err := stats.Quartile(data)
	require.NoError(t, err)
	iqr := quartiles.Q3 - quartiles.Q1
	assert.Equal(t, quartiles.Q3+1.5*iqr, bounds.Upper)
	assert.Equal(t, quartiles.Q1-1.5*iqr, bounds.Lower)

	// Values at or inside the bounds pass through untouched; values above
	// are clipped to the upper bound exactly.
	for i, w := range out {
		switch {
		case w.Original > bounds.Upper:
			assert.True(t, w.WasWinsorized, "index %d", i)
			assert.Equal(t, bounds.Upper, w.Value, "index %d", i)
		case w.Original < bounds.Lower:
			assert.True(t, w.WasWinsorized, "index %d", i)
			assert.Equal(t, bounds.Lower, w.Value, "index %d", i)
		default:
			assert.False(t, w.WasWinsorized, "index %d", i)
			assert.Equal(t, w.Original, w.Value, "index %d", i)
		}
	}
}

func TestWinsorize_ClipsOutlier(t *testing.T) {
	data := []float64{1000, 1010, 990, 1005, 995, 1002, 998, 1001, 999, 50000}
	out, bounds, err := Winsorize(data)
	require.NoError(t, err)

	last := out[len(out)-1]
	assert.True(t, last.WasWinsorized, "extreme outlier must be winsorized")
	assert.Equal(t, bounds.Upper, last.Value)
	assert.Equal(t, 50000.0, last.Original, "original retained for audit")

	for _, w := range out[:len(out)-1] {
		assert.False(t, w.WasWinsorized, "inliers must pass through")
	}
}

func TestWinsorize_Empty(t *testing.T) {
	_, _, err := Winsorize(nil)
	assert.Error(t, err)
}

func TestStandardize_RoundTrip(t *testing.T) {
	design := [][]float64{
		{1, 10, 5},
		{1, 20, 7},
		{1, 30, 9},
		{1, 40, 11},
	}
	standardized, scaler := Standardize(design)
	require.NotNil(t, scaler)

	// applyScaler on a training row must reproduce the internal result.
	for i, row := range design {
		applied := scaler.Apply(row)
		for j := range row {
			assert.InDelta(t, standardized[i][j], applied[j], 1e-12,
				"row %d column %d", i, j)
		}
	}

	// Intercept column untouched, others zero-mean.
	for i := range standardized {
		assert.Equal(t, 1.0, standardized[i][0])
	}
	var sum float64
	for i := range standardized {
		sum += standardized[i][1]
	}
	assert.InDelta(t, 0, sum, 1e-9)
}

func TestStandardize_ConstantColumn(t *testing.T) {
	design := [][]float64{{1, 5}, {1, 5}, {1, 5}}
	standardized, scaler := Standardize(design)
	assert.Equal(t, 1.0, scaler.Stds[1], "constant column std coerced to 1")
	for i := range standardized {
		assert.Equal(t, 0.0, standardized[i][1])
	}
}

func makeLinearRows(n int) []forecast.FeatureRow {
	// target = 500 + 3·x1 − 2·x2, exactly learnable.
	rows := make([]forecast.FeatureRow, n)
	start := core.NewCalendarDate(2025, 1, 1)
	for i := 0; i < n; i++ {
		x1 := float64(i%17) * 10
		x2 := float64(i%11) * 7
		rows[i] = forecast.FeatureRow{
			Date:   start.AddDays(i),
			Target: 500 + 3*x1 - 2*x2,
			Design: []float64{1, x1, x2},
		}
	}
	return rows
}

func TestTrain_RecoversLinearSignal(t *testing.T) {
	trainer := NewTrainer(DefaultConfig())
	model, err := trainer.Train(makeLinearRows(80), forecast.TierMinimal)
	require.NoError(t, err)

	assert.Equal(t, forecast.TierMinimal, model.Tier)
	require.NotNil(t, model.Scaler)
	assert.Greater(t, model.Diagnostics.RSquared, 0.99, "noise-free linear target must fit tightly")
	assert.Equal(t, 80, model.Diagnostics.N)
	assert.Contains(t, DefaultConfig().LambdaGrid, model.Lambda)

	// Prediction through the scaler should land near the true value.
	pred := model.Predict([]float64{1, 100, 35})
	assert.InDelta(t, 500+3*100-2*35, pred, 25)
}

func TestTrain_Deterministic(t *testing.T) {
	trainer := NewTrainer(DefaultConfig())
	rows := makeLinearRows(60)

	a, err := trainer.Train(rows, forecast.TierMinimal)
	require.NoError(t, err)
	b, err := trainer.Train(rows, forecast.TierMinimal)
	require.NoError(t, err)

	assert.Equal(t, a.Lambda, b.Lambda)
	assert.Equal(t, a.Coefficients, b.Coefficients)
	assert.Equal(t, a.Diagnostics, b.Diagnostics)
}

func TestTrain_SingularDesignPropagates(t *testing.T) {
	// Duplicate columns with a zero penalty make XᵗX singular; the error
	// must surface as ErrSingularMatrix so the caller can degrade.
	cfg := Config{LambdaGrid: []float64{0}, Folds: 5, DefaultLambda: 0}
	rows := make([]forecast.FeatureRow, 30)
	start := core.NewCalendarDate(2025, 1, 1)
	for i := range rows {
		x := float64(i)
		rows[i] = forecast.FeatureRow{
			Date:   start.AddDays(i),
			Target: x,
			Design: []float64{1, x, x},
		}
	}

	_, err := NewTrainer(cfg).Train(rows, forecast.TierMinimal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSingularMatrix), "got %v", err)
}

func TestSelectLambda_TooFewRowsFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	design := [][]float64{{1, 1}, {1, 2}, {1, 3}}
	targets := []float64{1, 2, 3}
	assert.Equal(t, cfg.DefaultLambda, selectLambda(design, targets, cfg))
}

func TestSelectLambda_PrefersSmallPenaltyOnCleanSignal(t *testing.T) {
	cfg := DefaultConfig()
	n := 100
	design := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i % 13)
		design[i] = []float64{1, x}
		targets[i] = 10 + 4*x
	}
	lambda := selectLambda(design, targets, cfg)
	assert.LessOrEqual(t, lambda, 1.0, "clean linear data should not want heavy shrinkage")
}

func TestDiagnose_PerfectFit(t *testing.T) {
	design := [][]float64{{1, 1}, {1, 2}, {1, 3}, {1, 4}}
	targets := []float64{3, 5, 7, 9}
	diag := diagnose(design, targets, []float64{1, 2})

	assert.InDelta(t, 1.0, diag.RSquared, 1e-12)
	assert.InDelta(t, 0.0, diag.RMSE, 1e-12)
	assert.InDelta(t, 0.0, diag.MAE, 1e-12)
	assert.Equal(t, 4, diag.N)
}

func TestDiagnose_DegenerateVariance(t *testing.T) {
	// Constant target: R² is undefined, reported as 0 rather than NaN.
	design := [][]float64{{1}, {1}, {1}}
	targets := []float64{5, 5, 5}
	diag := diagnose(design, targets, []float64{4})
	assert.False(t, math.IsNaN(diag.RSquared))
	assert.GreaterOrEqual(t, diag.RSquared, 0.0)
}
