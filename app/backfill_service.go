// Package app wires the forecasting core into application services. The
// backfill service walks the historical date range one day at a time,
// retraining a tier-appropriate ridge model per date from only the
// information available before that date.
package app

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
	"lavanda/internal"
	apperrors "lavanda/internal/errors"
	"lavanda/internal/featurize"
	"lavanda/internal/regress"
	"lavanda/ports"
)

// Storage clamps for fixed-precision numeric columns.
const (
	maxStoredError = 9999999.99
	maxStoredPct   = 999.9
	bandCeiling    = 99999999.99
)

// BackfillConfig holds the operational parameters of a run.
type BackfillConfig struct {
	Start core.CalendarDate
	End   core.CalendarDate // inclusive; normally yesterday in the business timezone

	// ClosureThreshold is the realized revenue below which a day counts as
	// an effective closure. Heuristic, so configurable rather than baked in.
	ClosureThreshold float64

	// MarginFloor is the minimum confidence-band half-width in currency.
	MarginFloor float64
}

// DefaultBackfillConfig returns production defaults for everything except
// the date range.
func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{
		ClosureThreshold: 100,
		MarginFloor:      50,
	}
}

// BackfillService orchestrates walk-forward historical simulation.
type BackfillService struct {
	revenue ports.RevenueHistoryPort
	weather ports.WeatherHistoryPort
	store   ports.PredictionStore
	builder *featurize.Builder
	trainer *regress.Trainer
	log     *internal.Logger
}

// NewBackfillService creates a backfill service.
func NewBackfillService(
	revenue ports.RevenueHistoryPort,
	weather ports.WeatherHistoryPort,
	store ports.PredictionStore,
	builder *featurize.Builder,
	trainer *regress.Trainer,
	log *internal.Logger,
) *BackfillService {
	return &BackfillService{
		revenue: revenue,
		weather: weather,
		store:   store,
		builder: builder,
		trainer: trainer,
		log:     log,
	}
}

// dateOutcome is the terminal state of a single backfilled date.
type dateOutcome int

const (
	outcomeSaved dateOutcome = iota
	outcomeSkipped
	outcomeErrored
)

// Run backfills every date in the configured range. Per-date failures are
// contained and counted; only failing to read the initial bulk history
// aborts the run, since there is nothing to compute against.
func (s *BackfillService) Run(ctx context.Context, cfg BackfillConfig) (forecast.RunSummary, error) {
	summary := forecast.RunSummary{
		RunID: uuid.NewString(),
		Start: cfg.Start,
		End:   cfg.End,
	}
	if cfg.Start.IsZero() || cfg.End.Before(cfg.Start) {
		return summary, apperrors.InvalidInput("backfill range is empty or reversed")
	}

	revenueHistory, weatherByDate, err := s.loadHistory(ctx)
	if err != nil {
		return summary, apperrors.Wrap(err, "failed to load history for backfill")
	}
	s.log.Info("backfill %s: %d revenue days, %d weather days, range %s..%s",
		summary.RunID, len(revenueHistory), len(weatherByDate), cfg.Start, cfg.End)

	actualByDate := make(map[core.CalendarDate]float64, len(revenueHistory))
	for _, obs := range revenueHistory {
		actualByDate[obs.Date] = obs.TotalRevenue
	}

	for date := cfg.Start; !date.After(cfg.End); date = date.AddDays(1) {
		outcome := s.backfillDate(ctx, date, cfg, revenueHistory, weatherByDate, actualByDate)
		switch outcome {
		case outcomeSaved:
			summary.Saved++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeErrored:
			summary.Errored++
		}
	}

	s.log.Info("backfill %s complete: saved=%d skipped=%d errored=%d",
		summary.RunID, summary.Saved, summary.Skipped, summary.Errored)
	return summary, nil
}

// loadHistory performs the two up-front bulk reads concurrently; they are
// independent and everything downstream is in-memory.
func (s *BackfillService) loadHistory(ctx context.Context) (
	[]forecast.RevenueObservation,
	map[core.CalendarDate]forecast.WeatherObservation,
	error,
) {
	var (
		revenueHistory []forecast.RevenueObservation
		weatherHistory []forecast.WeatherObservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenueHistory, err = s.revenue.GetRevenueHistory(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		weatherHistory, err = s.weather.GetWeatherHistory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	weatherByDate := make(map[core.CalendarDate]forecast.WeatherObservation, len(weatherHistory))
	for _, obs := range weatherHistory {
		weatherByDate[obs.Date] = obs
	}
	return revenueHistory, weatherByDate, nil
}

// backfillDate runs the per-date state machine: filter, gate, train,
// predict, reconcile, persist.
func (s *BackfillService) backfillDate(
	ctx context.Context,
	date core.CalendarDate,
	cfg BackfillConfig,
	revenueHistory []forecast.RevenueObservation,
	weatherByDate map[core.CalendarDate]forecast.WeatherObservation,
	actualByDate map[core.CalendarDate]float64,
) dateOutcome {
	// Anti-leakage filter: revenue strictly before the prediction date,
	// weather on or before it.
	trainRevenue := make([]forecast.RevenueObservation, 0, len(revenueHistory))
	for _, obs := range revenueHistory {
		if obs.Date.Before(date) {
			trainRevenue = append(trainRevenue, obs)
		}
	}
	trainWeather := make(map[core.CalendarDate]forecast.WeatherObservation, len(weatherByDate))
	for d, obs := range weatherByDate {
		if !d.After(date) {
			trainWeather[d] = obs
		}
	}

	// Sample count is measured at the full tier; the tier decision drives a
	// rebuild because design-vector width differs per tier.
	fullRows, _ := s.builder.BuildRows(trainRevenue, trainWeather, forecast.TierFull)
	sampleCount := len(fullRows)
	if sampleCount < forecast.MinimumSamples {
		s.log.Debug("skip %s: %d samples below floor %d", date, sampleCount, forecast.MinimumSamples)
		return outcomeSkipped
	}

	tier := forecast.SelectTier(sampleCount)
	rows, quality := s.builder.BuildRows(trainRevenue, trainWeather, tier)
	if len(rows) == 0 {
		return outcomeSkipped
	}

	model := s.trainTierModel(rows, tier)

	// The prediction-time vector uses the date's own weather and lags drawn
	// from the unfiltered history strictly before the date.
	w, ok := weatherByDate[date]
	if !ok {
		s.log.Debug("skip %s: no weather observation", date)
		return outcomeSkipped
	}
	lag1, lag7, err := featurize.PredictionLags(revenueHistory, date)
	if err != nil {
		s.log.Debug("skip %s: %v", date, err)
		return outcomeSkipped
	}
	design, features := s.builder.Vector(date, lag1, lag7, w, model.Tier)

	predicted := model.Predict(design)
	margin := math.Max(cfg.MarginFloor, math.Abs(predicted)*model.Tier.MarginPercent())

	record := &forecast.PredictionRecord{
		PredictionDate:   date,
		PredictedAt:      time.Now().UTC(),
		PredictedRevenue: predicted,
		ConfidenceLow:    clamp(predicted-margin, 0, bandCeiling),
		ConfidenceHigh:   clamp(predicted+margin, 0, bandCeiling),
		ModelTier:        model.Tier,
		InSampleRSquared: model.Diagnostics.RSquared,
		Features:         features,
	}

	if actual, known := actualByDate[date]; known {
		record.ActualRevenue = actual
		record.IsClosure = actual < cfg.ClosureThreshold
		if actual > 0 {
			errVal := actual - predicted
			record.Error = clamp(errVal, -maxStoredError, maxStoredError)
			record.AbsError = clamp(math.Abs(errVal), 0, maxStoredError)
			record.PctError = clamp(round1(errVal/actual*100), -maxStoredPct, maxStoredPct)
			record.EvaluatedAt = time.Now().UTC()
		}
	}

	if err := s.store.UpsertPrediction(ctx, record); err != nil {
		s.log.Error("persist %s failed: %v", date, err)
		return outcomeErrored
	}
	s.log.Debug("saved %s: tier=%s predicted=%.2f actual=%.2f usable=%d",
		date, model.Tier, predicted, record.ActualRevenue, quality.UsableDays)
	return outcomeSaved
}

// trainTierModel trains at the selected tier, degrading to the mean-only
// fallback when the tier is Fallback outright or the fit turns out singular.
func (s *BackfillService) trainTierModel(rows []forecast.FeatureRow, tier forecast.Tier) forecast.TrainedModel {
	targets := make([]float64, len(rows))
	for i, r := range rows {
		targets[i] = r.Target
	}
	mean, _ := stats.Mean(targets)

	if tier == forecast.TierFallback {
		return forecast.MeanFallback(mean)
	}

	model, err := s.trainer.Train(rows, tier)
	if err != nil {
		if errors.Is(err, core.ErrSingularMatrix) {
			s.log.Warn("singular design at tier %s, using mean fallback: %v", tier, err)
		} else {
			s.log.Warn("training failed at tier %s, using mean fallback: %v", tier, err)
		}
		return forecast.MeanFallback(mean)
	}
	return model
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
