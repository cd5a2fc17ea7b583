package ports

import (
	"context"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// PredictionStore persists and reads back prediction records. Upserts are
// keyed by prediction date, so rerunning a backfill over the same range
// overwrites prior results idempotently.
type PredictionStore interface {
	UpsertPrediction(ctx context.Context, record *forecast.PredictionRecord) error
	GetPredictionsInRange(ctx context.Context, from, to core.CalendarDate) ([]*forecast.PredictionRecord, error)
}
