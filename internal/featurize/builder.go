// Package featurize converts revenue and weather history into
// supervised-learning rows for a given model tier.
package featurize

import (
	"math"
	"sort"

	"lavanda/domain/calendar"
	"lavanda/domain/core"
	"lavanda/domain/forecast"
)

// Precipitation thresholds in millimeters.
const (
	rainyMM     = 2.0
	heavyRainMM = 10.0
)

// lagDays is the longest revenue lag a row needs; dates without that much
// prior history are never featurized.
const lagDays = 7

// Weights parameterize the drying-difficulty score. The defaults are
// domain-tuned; treat them as configuration, not contract.
type Weights struct {
	Humidity      float64
	Precipitation float64
	SunDeficit    float64
}

// DefaultWeights returns the production drying-difficulty weights.
func DefaultWeights() Weights {
	return Weights{Humidity: 0.05, Precipitation: 0.3, SunDeficit: 0.5}
}

// Builder derives feature rows from history. Stateless apart from weights;
// identical inputs always produce identical rows.
type Builder struct {
	weights Weights
}

// NewBuilder creates a feature builder with the given drying weights.
func NewBuilder(w Weights) *Builder {
	return &Builder{weights: w}
}

// DryingDifficulty scores how hard it is to line-dry clothes on a day, a
// demand proxy for machine dryers: humid, rainy, overcast days score high.
func (b *Builder) DryingDifficulty(w forecast.WeatherObservation) float64 {
	sunHours := math.Max(0, 8-w.CloudCover/100*8)
	sunDeficit := math.Max(0, 8-sunHours)
	return b.weights.Humidity*w.HumidityAvg +
		b.weights.Precipitation*w.Precipitation +
		b.weights.SunDeficit*sunDeficit
}

// BuildRows derives one feature row per usable revenue day at the given
// tier, plus data-quality counters. A day is usable when its own weather is
// present and both lag-1 and lag-7 revenue exist and are nonzero.
func (b *Builder) BuildRows(
	revenue []forecast.RevenueObservation,
	weather map[core.CalendarDate]forecast.WeatherObservation,
	tier forecast.Tier,
) ([]forecast.FeatureRow, forecast.DataQuality) {
	sorted := make([]forecast.RevenueObservation, len(revenue))
	copy(sorted, revenue)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	byDate := make(map[core.CalendarDate]float64, len(sorted))
	for _, obs := range sorted {
		byDate[obs.Date] = obs.TotalRevenue
	}

	quality := forecast.DataQuality{}
	var rows []forecast.FeatureRow

	for i, obs := range sorted {
		if i < lagDays {
			continue // insufficient lag history
		}
		quality = quality.CountDay()

		w, ok := weather[obs.Date]
		if !ok {
			quality = quality.CountMissingWeather()
			continue
		}

		lag1 := byDate[obs.Date.AddDays(-1)]
		lag7 := byDate[obs.Date.AddDays(-lagDays)]
		if lag1 == 0 || lag7 == 0 {
			quality = quality.CountMissingLags()
			continue
		}

		design, features := b.Vector(obs.Date, lag1, lag7, w, tier)
		rows = append(rows, forecast.FeatureRow{
			Date:     obs.Date,
			Target:   obs.TotalRevenue,
			Design:   design,
			Features: features,
		})
		quality = quality.CountUsable(features[forecast.FeatHoliday] == 1)
	}

	return rows, quality
}

// Vector assembles the design vector and named feature map for one date at
// the given tier. Design[0] is the constant 1 intercept at every tier.
func (b *Builder) Vector(
	date core.CalendarDate,
	lag1, lag7 float64,
	w forecast.WeatherObservation,
	tier forecast.Tier,
) ([]float64, map[string]float64) {
	drying := b.DryingDifficulty(w)
	weekend := boolFeature(date.IsWeekend())
	rainy := boolFeature(w.Precipitation >= rainyMM)
	heavy := boolFeature(w.Precipitation >= heavyRainMM)
	holiday := boolFeature(calendar.IsHoliday(date).IsHoliday)
	eve := boolFeature(calendar.IsHolidayEve(date).IsHolidayEve)

	all := map[string]float64{
		forecast.FeatLag1:          lag1,
		forecast.FeatLag7:          lag7,
		forecast.FeatWeekend:       weekend,
		forecast.FeatDrying:        drying,
		forecast.FeatRainy:         rainy,
		forecast.FeatHeavyRain:     heavy,
		forecast.FeatHoliday:       holiday,
		forecast.FeatHolidayEve:    eve,
		forecast.FeatWeekendDrying: weekend * drying,
		forecast.FeatWeekendRain:   weekend * rainy,
		forecast.FeatHolidayDrying: holiday * drying,
	}

	names := tier.Features()
	design := make([]float64, 0, len(names)+1)
	design = append(design, 1) // intercept
	features := make(map[string]float64, len(names))
	for _, name := range names {
		design = append(design, all[name])
		features[name] = all[name]
	}
	return design, features
}

// PredictionLags extracts lag-1 and lag-7 revenue for a prediction date from
// the most recent seven observations strictly before it. Returns
// core.ErrMissingLags when history is too short or either lag is zero.
func PredictionLags(revenue []forecast.RevenueObservation, date core.CalendarDate) (lag1, lag7 float64, err error) {
	var prior []forecast.RevenueObservation
	for _, obs := range revenue {
		if obs.Date.Before(date) {
			prior = append(prior, obs)
		}
	}
	sort.Slice(prior, func(i, j int) bool { return prior[i].Date.Before(prior[j].Date) })

	if len(prior) < lagDays {
		return 0, 0, core.ErrMissingLags
	}
	lag1 = prior[len(prior)-1].TotalRevenue
	lag7 = prior[len(prior)-lagDays].TotalRevenue
	if lag1 == 0 || lag7 == 0 {
		return 0, 0, core.ErrMissingLags
	}
	return lag1, lag7, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
