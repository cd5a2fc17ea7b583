// Package testkit provides synthetic histories and in-memory ports for
// exercising the forecasting pipeline without a database.
package testkit

import (
	"context"
	"fmt"
	"sort"

	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// MildWeather returns a constant no-rain observation for a date: warm,
// moderately humid, clear sky.
func MildWeather(date core.CalendarDate) forecast.WeatherObservation {
	return forecast.WeatherObservation{
		Date:          date,
		TempAvg:       24,
		HumidityAvg:   60,
		Precipitation: 0,
		CloudCover:    20,
	}
}

// RainyWeather returns a heavy-rain observation for a date.
func RainyWeather(date core.CalendarDate) forecast.WeatherObservation {
	return forecast.WeatherObservation{
		Date:          date,
		TempAvg:       19,
		HumidityAvg:   92,
		Precipitation: 14,
		CloudCover:    95,
	}
}

// ConstantHistory generates days consecutive days of constant revenue
// starting at start, with mild weather on every day.
func ConstantHistory(start core.CalendarDate, days int, revenue float64) ([]forecast.RevenueObservation, []forecast.WeatherObservation) {
	rev := make([]forecast.RevenueObservation, 0, days)
	wx := make([]forecast.WeatherObservation, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		rev = append(rev, forecast.RevenueObservation{Date: d, TotalRevenue: revenue})
		wx = append(wx, MildWeather(d))
	}
	return rev, wx
}

// WeatherMap indexes observations by date.
func WeatherMap(observations []forecast.WeatherObservation) map[core.CalendarDate]forecast.WeatherObservation {
	out := make(map[core.CalendarDate]forecast.WeatherObservation, len(observations))
	for _, obs := range observations {
		out[obs.Date] = obs
	}
	return out
}

// MemoryHistory serves fixed revenue and weather series through the history
// ports.
type MemoryHistory struct {
	Revenue []forecast.RevenueObservation
	Weather []forecast.WeatherObservation
}

func (m *MemoryHistory) GetRevenueHistory(_ context.Context) ([]forecast.RevenueObservation, error) {
	return m.Revenue, nil
}

func (m *MemoryHistory) GetWeatherHistory(_ context.Context) ([]forecast.WeatherObservation, error) {
	return m.Weather, nil
}

// MemoryPredictionStore collects upserted records in memory. FailDates makes
// specific upserts fail, for exercising the errored path.
type MemoryPredictionStore struct {
	Records   map[core.CalendarDate]*forecast.PredictionRecord
	FailDates map[core.CalendarDate]bool
	Upserts   int
}

// NewMemoryPredictionStore creates an empty in-memory store.
func NewMemoryPredictionStore() *MemoryPredictionStore {
	return &MemoryPredictionStore{
		Records:   make(map[core.CalendarDate]*forecast.PredictionRecord),
		FailDates: make(map[core.CalendarDate]bool),
	}
}

func (m *MemoryPredictionStore) UpsertPrediction(_ context.Context, record *forecast.PredictionRecord) error {
	m.Upserts++
	if m.FailDates[record.PredictionDate] {
		return fmt.Errorf("simulated persistence failure for %s", record.PredictionDate)
	}
	clone := *record
	m.Records[record.PredictionDate] = &clone
	return nil
}

func (m *MemoryPredictionStore) GetPredictionsInRange(_ context.Context, from, to core.CalendarDate) ([]*forecast.PredictionRecord, error) {
	var out []*forecast.PredictionRecord
	for date, record := range m.Records {
		if !date.Before(from) && !date.After(to) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictionDate.Before(out[j].PredictionDate) })
	return out, nil
}
