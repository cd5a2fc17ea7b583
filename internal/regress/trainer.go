// Package regress fits the tiered ridge-regression model: winsorize the
// target, standardize the features, pick the L2 penalty by cross-validation,
// then solve the closed-form ridge system.
package regress

import (
	"lavanda/domain/forecast"
)

// Config holds the trainer's model-selection parameters.
type Config struct {
	LambdaGrid    []float64
	Folds         int
	DefaultLambda float64
}

// DefaultConfig returns the production λ grid and fold count.
func DefaultConfig() Config {
	return Config{
		LambdaGrid:    []float64{0.01, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		Folds:         5,
		DefaultLambda: 1.0,
	}
}

// Trainer fits ridge models from feature rows. Stateless and deterministic:
// identical rows always produce an identical model.
type Trainer struct {
	cfg Config
}

// NewTrainer creates a trainer with the given config.
func NewTrainer(cfg Config) *Trainer {
	return &Trainer{cfg: cfg}
}

// Train fits a model on the rows. The returned error wraps
// core.ErrSingularMatrix when the final design matrix cannot be inverted;
// the caller substitutes a mean-only fallback rather than aborting its run.
func (t *Trainer) Train(rows []forecast.FeatureRow, tier forecast.Tier) (forecast.TrainedModel, error) {
	targets := make([]float64, len(rows))
	design := make([][]float64, len(rows))
	for i, row := range rows {
		targets[i] = row.Target
		design[i] = row.Design
	}

	winsorized, _, err := Winsorize(targets)
	if err != nil {
		return forecast.TrainedModel{}, err
	}
	clipped := make([]float64, len(winsorized))
	for i, w := range winsorized {
		clipped[i] = w.Value
	}

	standardized, scaler := Standardize(design)

	lambda := selectLambda(standardized, clipped, t.cfg)

	coeffs, err := fitRidge(standardized, clipped, lambda)
	if err != nil {
		return forecast.TrainedModel{}, err
	}

	return forecast.TrainedModel{
		Tier:         tier,
		Coefficients: coeffs,
		Scaler:       scaler,
		Lambda:       lambda,
		Diagnostics:  diagnose(standardized, clipped, coeffs),
	}, nil
}
