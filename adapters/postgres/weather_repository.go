package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// WeatherRepository reads and writes the daily_weather table.
type WeatherRepository struct {
	db *sqlx.DB
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *sqlx.DB) *WeatherRepository {
	return &WeatherRepository{db: db}
}

// GetWeatherHistory returns the full weather series ascending by date.
func (r *WeatherRepository) GetWeatherHistory(ctx context.Context) ([]forecast.WeatherObservation, error) {
	query := `
		SELECT weather_date, temp_avg, humidity_avg, precipitation, cloud_cover
		FROM daily_weather
		ORDER BY weather_date ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather history: %w", err)
	}
	defer rows.Close()

	var out []forecast.WeatherObservation
	for rows.Next() {
		var (
			date time.Time
			obs  forecast.WeatherObservation
		)
		if err := rows.Scan(&date, &obs.TempAvg, &obs.HumidityAvg, &obs.Precipitation, &obs.CloudCover); err != nil {
			return nil, fmt.Errorf("failed to scan weather row: %w", err)
		}
		obs.Date = core.DateOf(date)
		out = append(out, obs)
	}
	return out, rows.Err()
}

// UpsertWeather inserts or replaces weather observations by date.
func (r *WeatherRepository) UpsertWeather(ctx context.Context, observations []forecast.WeatherObservation) error {
	query := `
		INSERT INTO daily_weather (weather_date, temp_avg, humidity_avg, precipitation, cloud_cover)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (weather_date) DO UPDATE SET
			temp_avg = EXCLUDED.temp_avg,
			humidity_avg = EXCLUDED.humidity_avg,
			precipitation = EXCLUDED.precipitation,
			cloud_cover = EXCLUDED.cloud_cover`

	for _, obs := range observations {
		if _, err := r.db.ExecContext(ctx, query,
			obs.Date.String(), obs.TempAvg, obs.HumidityAvg, obs.Precipitation, obs.CloudCover); err != nil {
			return fmt.Errorf("failed to upsert weather for %s: %w", obs.Date, err)
		}
	}
	return nil
}
