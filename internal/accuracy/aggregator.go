// Package accuracy summarizes persisted prediction records into the rolling
// and weekly views the dashboard reads. Closure days are excluded from the
// headline numbers without being deleted from the record set.
package accuracy

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"lavanda/domain/core"
	"lavanda/ports"
)

// RollingSummary aggregates absolute and percentage error over a trailing
// window of evaluated, non-closure days.
type RollingSummary struct {
	WindowDays       int
	Days             int
	AvgAbsError      float64
	AvgAbsPctError   float64
	ClosuresExcluded int
}

// WeeklySummary reports one calendar week of accuracy, including directional
// bias (mean signed error: positive means the model under-predicted).
type WeeklySummary struct {
	WeekStart   core.CalendarDate
	Days        int
	AvgAbsError float64
	AvgPctError float64
	Bias        float64
}

// Aggregator reads prediction records back from the store.
type Aggregator struct {
	store ports.PredictionStore
}

// NewAggregator creates an accuracy aggregator.
func NewAggregator(store ports.PredictionStore) *Aggregator {
	return &Aggregator{store: store}
}

// Rolling computes the trailing-window summary ending at the given date.
func (a *Aggregator) Rolling(ctx context.Context, end core.CalendarDate, windowDays int) (RollingSummary, error) {
	summary := RollingSummary{WindowDays: windowDays}
	records, err := a.store.GetPredictionsInRange(ctx, end.AddDays(-(windowDays-1)), end)
	if err != nil {
		return summary, err
	}

	var absErrors, pctErrors []float64
	for _, r := range records {
		if r.EvaluatedAt.IsZero() {
			continue
		}
		if r.IsClosure {
			summary.ClosuresExcluded++
			continue
		}
		absErrors = append(absErrors, r.AbsError)
		pctErrors = append(pctErrors, math.Abs(r.PctError))
	}
	summary.Days = len(absErrors)
	if summary.Days > 0 {
		summary.AvgAbsError, _ = stats.Mean(absErrors)
		summary.AvgAbsPctError, _ = stats.Mean(pctErrors)
	}
	return summary, nil
}

// Weekly groups evaluated, non-closure records by week start (Monday) and
// reports per-week error averages and bias, ordered by week.
func (a *Aggregator) Weekly(ctx context.Context, from, to core.CalendarDate) ([]WeeklySummary, error) {
	records, err := a.store.GetPredictionsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		absErrors []float64
		signed    []float64
		pcts      []float64
	}
	buckets := make(map[core.CalendarDate]*bucket)
	for _, r := range records {
		if r.EvaluatedAt.IsZero() || r.IsClosure {
			continue
		}
		week := weekStart(r.PredictionDate)
		b, ok := buckets[week]
		if !ok {
			b = &bucket{}
			buckets[week] = b
		}
		b.absErrors = append(b.absErrors, r.AbsError)
		b.signed = append(b.signed, r.Error)
		b.pcts = append(b.pcts, r.PctError)
	}

	out := make([]WeeklySummary, 0, len(buckets))
	for week, b := range buckets {
		avgAbs, _ := stats.Mean(b.absErrors)
		avgPct, _ := stats.Mean(b.pcts)
		bias, _ := stats.Mean(b.signed)
		out = append(out, WeeklySummary{
			WeekStart:   week,
			Days:        len(b.signed),
			AvgAbsError: avgAbs,
			AvgPctError: avgPct,
			Bias:        bias,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out, nil
}

// weekStart returns the Monday of the date's ISO week.
func weekStart(d core.CalendarDate) core.CalendarDate {
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDays(-offset)
}
