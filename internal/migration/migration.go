package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"lavanda/internal/errors"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRevenueTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create daily_revenue table")
	}
	if err := r.createWeatherTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create daily_weather table")
	}
	if err := r.createPredictionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create revenue_predictions table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createRevenueTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS daily_revenue (
			revenue_date DATE PRIMARY KEY,
			total_revenue NUMERIC(12,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createWeatherTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS daily_weather (
			weather_date DATE PRIMARY KEY,
			temp_avg DOUBLE PRECISION NOT NULL,
			humidity_avg DOUBLE PRECISION NOT NULL,
			precipitation DOUBLE PRECISION NOT NULL,
			cloud_cover DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createPredictionsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS revenue_predictions (
			prediction_date DATE PRIMARY KEY,
			predicted_at TIMESTAMPTZ NOT NULL,
			predicted_revenue NUMERIC(10,2) NOT NULL,
			confidence_low NUMERIC(10,2) NOT NULL,
			confidence_high NUMERIC(10,2) NOT NULL,
			model_tier TEXT NOT NULL,
			in_sample_r_squared DOUBLE PRECISION NOT NULL DEFAULT 0,
			features JSONB NOT NULL DEFAULT '{}',
			actual_revenue NUMERIC(12,2),
			error NUMERIC(9,2),
			abs_error NUMERIC(9,2),
			pct_error NUMERIC(4,1),
			evaluated_at TIMESTAMPTZ,
			is_closure BOOLEAN NOT NULL DEFAULT FALSE
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_predictions_evaluated ON revenue_predictions (evaluated_at) WHERE evaluated_at IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_closure ON revenue_predictions (is_closure)`,
	}
	for _, query := range indexes {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
