package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// PredictionRepository persists prediction records keyed by prediction date.
type PredictionRepository struct {
	db *sqlx.DB
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// UpsertPrediction inserts or overwrites the record for its date. Reruns of
// the backfill are idempotent because of the date conflict key.
func (r *PredictionRepository) UpsertPrediction(ctx context.Context, record *forecast.PredictionRecord) error {
	query := `
		INSERT INTO revenue_predictions (
			prediction_date, predicted_at, predicted_revenue, confidence_low,
			confidence_high, model_tier, in_sample_r_squared, features,
			actual_revenue, error, abs_error, pct_error, evaluated_at, is_closure
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (prediction_date) DO UPDATE SET
			predicted_at = EXCLUDED.predicted_at,
			predicted_revenue = EXCLUDED.predicted_revenue,
			confidence_low = EXCLUDED.confidence_low,
			confidence_high = EXCLUDED.confidence_high,
			model_tier = EXCLUDED.model_tier,
			in_sample_r_squared = EXCLUDED.in_sample_r_squared,
			features = EXCLUDED.features,
			actual_revenue = EXCLUDED.actual_revenue,
			error = EXCLUDED.error,
			abs_error = EXCLUDED.abs_error,
			pct_error = EXCLUDED.pct_error,
			evaluated_at = EXCLUDED.evaluated_at,
			is_closure = EXCLUDED.is_closure`

	featuresJSON, err := json.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	var evaluatedAt interface{}
	if !record.EvaluatedAt.IsZero() {
		evaluatedAt = record.EvaluatedAt
	}

	_, err = r.db.ExecContext(ctx, query,
		record.PredictionDate.String(),
		record.PredictedAt,
		record.PredictedRevenue,
		record.ConfidenceLow,
		record.ConfidenceHigh,
		string(record.ModelTier),
		record.InSampleRSquared,
		featuresJSON,
		record.ActualRevenue,
		record.Error,
		record.AbsError,
		record.PctError,
		evaluatedAt,
		record.IsClosure,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert prediction for %s: %w", record.PredictionDate, err)
	}
	return nil
}

// GetPredictionsInRange returns records with prediction_date in [from, to],
// ascending by date.
func (r *PredictionRepository) GetPredictionsInRange(ctx context.Context, from, to core.CalendarDate) ([]*forecast.PredictionRecord, error) {
	query := `
		SELECT prediction_date, predicted_at, predicted_revenue, confidence_low,
			   confidence_high, model_tier, in_sample_r_squared, features,
			   actual_revenue, error, abs_error, pct_error, evaluated_at, is_closure
		FROM revenue_predictions
		WHERE prediction_date >= $1 AND prediction_date <= $2
		ORDER BY prediction_date ASC`

	rows, err := r.db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var out []*forecast.PredictionRecord
	for rows.Next() {
		var (
			record       forecast.PredictionRecord
			date         time.Time
			tier         string
			featuresJSON []byte
			actual       sql.NullFloat64
			errVal       sql.NullFloat64
			absErr       sql.NullFloat64
			pctErr       sql.NullFloat64
			evaluatedAt  sql.NullTime
		)
		if err := rows.Scan(
			&date,
			&record.PredictedAt,
			&record.PredictedRevenue,
			&record.ConfidenceLow,
			&record.ConfidenceHigh,
			&tier,
			&record.InSampleRSquared,
			&featuresJSON,
			&actual,
			&errVal,
			&absErr,
			&pctErr,
			&evaluatedAt,
			&record.IsClosure,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}

		record.PredictionDate = core.DateOf(date)
		record.ModelTier = forecast.Tier(tier)
		if err := json.Unmarshal(featuresJSON, &record.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
		record.ActualRevenue = actual.Float64
		record.Error = errVal.Float64
		record.AbsError = absErr.Float64
		record.PctError = pctErr.Float64
		if evaluatedAt.Valid {
			record.EvaluatedAt = evaluatedAt.Time
		}

		out = append(out, &record)
	}
	return out, rows.Err()
}
