package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
	"lavanda/internal"
	"lavanda/internal/featurize"
	"lavanda/internal/regress"
	"lavanda/internal/testkit"
)

var historyStart = core.NewCalendarDate(2025, time.January, 6)

func newTestService(history *testkit.MemoryHistory, store *testkit.MemoryPredictionStore, trainer *regress.Trainer) *BackfillService {
	if trainer == nil {
		trainer = regress.NewTrainer(regress.DefaultConfig())
	}
	return NewBackfillService(
		history,
		history,
		store,
		featurize.NewBuilder(featurize.DefaultWeights()),
		trainer,
		internal.NewLogger(internal.LogLevelError),
	)
}

func TestRun_ConstantSeriesHitsFullTier(t *testing.T) {
	revenue, weather := testkit.ConstantHistory(historyStart, 70, 1000)
	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	service := newTestService(history, store, nil)

	day70 := historyStart.AddDays(69)
	cfg := DefaultBackfillConfig()
	cfg.Start = day70
	cfg.End = day70

	summary, err := service.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Errored)

	record := store.Records[day70]
	require.NotNil(t, record)
	assert.Equal(t, forecast.TierFull, record.ModelTier, "69 prior days yield 62 full-tier samples")

	// The constant series is trivially learnable: prediction within the
	// ±30% band around 1000 and near-zero percent error.
	assert.InDelta(t, 1000, record.PredictedRevenue, 300)
	assert.LessOrEqual(t, record.ConfidenceLow, record.PredictedRevenue)
	assert.GreaterOrEqual(t, record.ConfidenceHigh, record.PredictedRevenue)
	assert.InDelta(t, 0, record.PctError, 10)
	assert.Equal(t, 1000.0, record.ActualRevenue)
	assert.False(t, record.IsClosure)
	assert.False(t, record.EvaluatedAt.IsZero())
}

func TestRun_InsufficientHistoryIsSkipped(t *testing.T) {
	revenue, weather := testkit.ConstantHistory(historyStart, 10, 1000)
	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	service := newTestService(history, store, nil)

	cfg := DefaultBackfillConfig()
	cfg.Start = historyStart
	cfg.End = historyStart.AddDays(9)

	summary, err := service.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Saved, "no date with 10 days of history may be saved")
	assert.Equal(t, 10, summary.Skipped)
	assert.Equal(t, 0, store.Upserts)
}

func TestRun_NoFutureLeakage(t *testing.T) {
	// Everything after the predicted date is absurdly large. If any of it
	// leaked into training or lags, the prediction would be dragged far
	// from the constant level.
	revenue, weather := testkit.ConstantHistory(historyStart, 100, 1000)
	target := historyStart.AddDays(79)
	for i := range revenue {
		if revenue[i].Date.After(target) {
			revenue[i].TotalRevenue = 1_000_000
		}
	}
	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	service := newTestService(history, store, nil)

	cfg := DefaultBackfillConfig()
	cfg.Start = target
	cfg.End = target

	summary, err := service.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Saved)

	record := store.Records[target]
	require.NotNil(t, record)
	assert.InDelta(t, 1000, record.PredictedRevenue, 300,
		"future spike must not influence the prediction")
}

func TestRun_ClosureDayFlaggedAndClamped(t *testing.T) {
	revenue, weather := testkit.ConstantHistory(historyStart, 70, 1000)
	day70 := historyStart.AddDays(69)
	revenue[69].TotalRevenue = 50 // effectively closed

	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	service := newTestService(history, store, nil)

	cfg := DefaultBackfillConfig()
	cfg.Start = day70
	cfg.End = day70

	_, err := service.Run(context.Background(), cfg)
	require.NoError(t, err)

	record := store.Records[day70]
	require.NotNil(t, record)
	assert.True(t, record.IsClosure)
	assert.Equal(t, 50.0, record.ActualRevenue)
	// (50 − ~1000)/50·100 ≈ −1900%, clamped to the storage range.
	assert.Equal(t, -999.9, record.PctError)
}

func TestRun_PersistenceFailureCountedNotFatal(t *testing.T) {
	revenue, weather := testkit.ConstantHistory(historyStart, 72, 1000)
	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	failDate := historyStart.AddDays(70)
	store.FailDates[failDate] = true
	service := newTestService(history, store, nil)

	cfg := DefaultBackfillConfig()
	cfg.Start = historyStart.AddDays(69)
	cfg.End = historyStart.AddDays(71)

	summary, err := service.Run(context.Background(), cfg)
	require.NoError(t, err, "per-date persistence failures must not abort the run")
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.Errored)
	assert.Nil(t, store.Records[failDate])
}

func TestRun_IdempotentRerun(t *testing.T) {
	revenue, weather := testkit.ConstantHistory(historyStart, 75, 1000)
	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	service := newTestService(history, store, nil)

	cfg := DefaultBackfillConfig()
	cfg.Start = historyStart.AddDays(69)
	cfg.End = historyStart.AddDays(74)

	_, err := service.Run(context.Background(), cfg)
	require.NoError(t, err)
	first := make(map[core.CalendarDate]forecast.PredictionRecord)
	for date, record := range store.Records {
		first[date] = *record
	}

	_, err = service.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, len(first), len(store.Records))
	for date, prev := range first {
		curr := store.Records[date]
		require.NotNil(t, curr, "date %s vanished on rerun", date)
		assert.Equal(t, prev.PredictedRevenue, curr.PredictedRevenue, "date %s", date)
		assert.Equal(t, prev.ConfidenceLow, curr.ConfidenceLow, "date %s", date)
		assert.Equal(t, prev.ConfidenceHigh, curr.ConfidenceHigh, "date %s", date)
		assert.Equal(t, prev.ModelTier, curr.ModelTier, "date %s", date)
		assert.Equal(t, prev.InSampleRSquared, curr.InSampleRSquared, "date %s", date)
		assert.Equal(t, prev.Features, curr.Features, "date %s", date)
		assert.Equal(t, prev.Error, curr.Error, "date %s", date)
	}
}

func TestRun_SingularFitDegradesToMeanFallback(t *testing.T) {
	// A zero-only λ grid leaves the constant-column design singular, so the
	// orchestrator must substitute the mean model instead of aborting.
	revenue, weather := testkit.ConstantHistory(historyStart, 70, 1000)
	history := &testkit.MemoryHistory{Revenue: revenue, Weather: weather}
	store := testkit.NewMemoryPredictionStore()
	trainer := regress.NewTrainer(regress.Config{LambdaGrid: []float64{0}, Folds: 5, DefaultLambda: 0})
	service := newTestService(history, store, trainer)

	day70 := historyStart.AddDays(69)
	cfg := DefaultBackfillConfig()
	cfg.Start = day70
	cfg.End = day70

	summary, err := service.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Saved)

	record := store.Records[day70]
	require.NotNil(t, record)
	assert.Equal(t, forecast.TierFallback, record.ModelTier)
	assert.InDelta(t, 1000, record.PredictedRevenue, 1, "fallback predicts the training mean")
	assert.Equal(t, 0.0, record.InSampleRSquared)
}

func TestRun_EmptyRangeRejected(t *testing.T) {
	store := testkit.NewMemoryPredictionStore()
	service := newTestService(&testkit.MemoryHistory{}, store, nil)

	cfg := DefaultBackfillConfig()
	cfg.Start = historyStart
	cfg.End = historyStart.AddDays(-1)

	_, err := service.Run(context.Background(), cfg)
	assert.Error(t, err)
}
