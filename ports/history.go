// Package ports defines the interfaces between the forecasting core and its
// external collaborators (the relational store and the dashboard API).
package ports

import (
	"context"

	"lavanda/domain/forecast"
)

// RevenueHistoryPort reads the full realized-revenue series, ascending by
// date. The backfill performs this read once up front and holds the result
// in memory for the whole run.
type RevenueHistoryPort interface {
	GetRevenueHistory(ctx context.Context) ([]forecast.RevenueObservation, error)
}

// WeatherHistoryPort reads the full daily-weather series, ascending by date.
type WeatherHistoryPort interface {
	GetWeatherHistory(ctx context.Context) ([]forecast.WeatherObservation, error)
}

// RevenueWriter ingests revenue observations (spreadsheet/CSV import path).
type RevenueWriter interface {
	UpsertRevenue(ctx context.Context, observations []forecast.RevenueObservation) error
}

// WeatherWriter ingests weather observations (spreadsheet/CSV import path).
type WeatherWriter interface {
	UpsertWeather(ctx context.Context, observations []forecast.WeatherObservation) error
}
