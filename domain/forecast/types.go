// Package forecast holds the domain model of the walk-forward revenue
// forecasting engine: observations, derived feature rows, trained models
// and the persisted prediction record.
package forecast

import (
	"time"

	"lavanda/domain/core"
)

// RevenueObservation is one business day of realized revenue, produced
// upstream by point-of-sale aggregation. Immutable once recorded.
type RevenueObservation struct {
	Date         core.CalendarDate
	TotalRevenue float64
}

// WeatherObservation is one calendar day of weather readings.
type WeatherObservation struct {
	Date          core.CalendarDate
	TempAvg       float64
	HumidityAvg   float64
	Precipitation float64
	CloudCover    float64
}

// FeatureRow is a supervised-learning row derived for a single training or
// prediction call. Design[0] is always the constant 1 intercept, at every
// tier. Rows are never persisted; only the resulting prediction is.
type FeatureRow struct {
	Date     core.CalendarDate
	Target   float64
	Design   []float64
	Features map[string]float64
}

// DataQuality tracks diagnostic counters accumulated while building rows.
// It is threaded through the builder as an immutable fold: every method
// returns a new value, keeping the builder trivially testable.
type DataQuality struct {
	TotalDays      int
	MissingWeather int
	MissingLags    int
	UsableDays     int
	Holidays       int
}

// CountDay returns the counters with one more considered day.
func (q DataQuality) CountDay() DataQuality {
	q.TotalDays++
	return q
}

// CountMissingWeather returns the counters with one more weather gap.
func (q DataQuality) CountMissingWeather() DataQuality {
	q.MissingWeather++
	return q
}

// CountMissingLags returns the counters with one more lag gap.
func (q DataQuality) CountMissingLags() DataQuality {
	q.MissingLags++
	return q
}

// CountUsable returns the counters with one more usable row; holiday marks
// whether that row fell on a holiday.
func (q DataQuality) CountUsable(holiday bool) DataQuality {
	q.UsableDays++
	if holiday {
		q.Holidays++
	}
	return q
}

// Scaler holds per-feature standardization parameters fitted on training
// rows. The intercept column is never rescaled, so Means[0] = 0 and
// Stds[0] = 1 by construction.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// Diagnostics reports in-sample fit quality of a trained model.
type Diagnostics struct {
	RSquared      float64
	RMSE          float64
	MAE           float64
	StandardError float64
	N             int
}

// TrainedModel is the output of a single training call. It lives for exactly
// one prediction date: the walk-forward contract forbids reuse across dates.
type TrainedModel struct {
	Tier         Tier
	Coefficients []float64
	Scaler       *Scaler
	Lambda       float64
	Diagnostics  Diagnostics
}

// MeanFallback builds the degenerate intercept-only model used when data is
// too sparse for regression or the design matrix turns out singular.
func MeanFallback(mean float64) TrainedModel {
	return TrainedModel{
		Tier:         TierFallback,
		Coefficients: []float64{mean},
	}
}

// Predict applies the model to a raw (unscaled) design vector.
func (m TrainedModel) Predict(design []float64) float64 {
	x := design
	if m.Scaler != nil {
		x = m.Scaler.Apply(design)
	}
	var sum float64
	for i, c := range m.Coefficients {
		if i < len(x) {
			sum += c * x[i]
		}
	}
	return sum
}

// Apply standardizes a design vector with the fitted parameters. Column 0
// (intercept) passes through untouched.
func (s *Scaler) Apply(design []float64) []float64 {
	out := make([]float64, len(design))
	copy(out, design)
	for j := 1; j < len(design) && j < len(s.Means); j++ {
		std := s.Stds[j]
		if std == 0 {
			std = 1
		}
		out[j] = (design[j] - s.Means[j]) / std
	}
	return out
}

// PredictionRecord is the persisted outcome for one backfilled date,
// upserted by PredictionDate. IsClosure flags anomalously low realized
// revenue so downstream accuracy views can exclude effective closures.
type PredictionRecord struct {
	PredictionDate   core.CalendarDate
	PredictedAt      time.Time
	PredictedRevenue float64
	ConfidenceLow    float64
	ConfidenceHigh   float64
	ModelTier        Tier
	InSampleRSquared float64
	Features         map[string]float64
	ActualRevenue    float64
	Error            float64
	AbsError         float64
	PctError         float64
	EvaluatedAt      time.Time
	IsClosure        bool
}

// RunSummary aggregates a backfill run so an operator can judge whether the
// results are trustworthy without inspecting every date.
type RunSummary struct {
	RunID   string
	Start   core.CalendarDate
	End     core.CalendarDate
	Saved   int
	Skipped int
	Errored int
}
