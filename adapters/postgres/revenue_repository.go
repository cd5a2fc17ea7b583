// Package postgres implements the store ports against PostgreSQL via sqlx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// RevenueRepository reads and writes the daily_revenue table.
type RevenueRepository struct {
	db *sqlx.DB
}

// NewRevenueRepository creates a new revenue repository
func NewRevenueRepository(db *sqlx.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

// GetRevenueHistory returns the full revenue series ascending by date.
func (r *RevenueRepository) GetRevenueHistory(ctx context.Context) ([]forecast.RevenueObservation, error) {
	query := `
		SELECT revenue_date, total_revenue
		FROM daily_revenue
		ORDER BY revenue_date ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue history: %w", err)
	}
	defer rows.Close()

	var out []forecast.RevenueObservation
	for rows.Next() {
		var (
			date  time.Time
			total float64
		)
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		out = append(out, forecast.RevenueObservation{Date: core.DateOf(date), TotalRevenue: total})
	}
	return out, rows.Err()
}

// UpsertRevenue inserts or replaces revenue observations by date.
func (r *RevenueRepository) UpsertRevenue(ctx context.Context, observations []forecast.RevenueObservation) error {
	query := `
		INSERT INTO daily_revenue (revenue_date, total_revenue)
		VALUES ($1, $2)
		ON CONFLICT (revenue_date) DO UPDATE SET total_revenue = EXCLUDED.total_revenue`

	for _, obs := range observations {
		if _, err := r.db.ExecContext(ctx, query, obs.Date.String(), obs.TotalRevenue); err != nil {
			return fmt.Errorf("failed to upsert revenue for %s: %w", obs.Date, err)
		}
	}
	return nil
}
