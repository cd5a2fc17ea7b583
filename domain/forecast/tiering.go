package forecast

// Tier is a discrete model-complexity level. The feature sets are strictly
// nested: Full ⊃ Reduced ⊃ Minimal ⊃ Fallback (intercept only).
type Tier string

const (
	TierFull     Tier = "full"
	TierReduced  Tier = "reduced"
	TierMinimal  Tier = "minimal"
	TierFallback Tier = "fallback"
)

// Sample-count gates for the tier ladder. Below MinimumSamples no date is
// predicted at all: even a mean estimate is considered unreliable.
const (
	FullTierSamples    = 60
	ReducedTierSamples = 30
	MinimumSamples     = 14
)

// SelectTier chooses the richest tier the available sample count supports.
// Pure function, monotonic in complexity as sampleCount grows.
func SelectTier(sampleCount int) Tier {
	switch {
	case sampleCount >= FullTierSamples:
		return TierFull
	case sampleCount >= ReducedTierSamples:
		return TierReduced
	case sampleCount >= MinimumSamples:
		return TierMinimal
	default:
		return TierFallback
	}
}

// Feature names in design-vector order, excluding the intercept.
const (
	FeatLag1          = "lag_1"
	FeatLag7          = "lag_7"
	FeatWeekend       = "is_weekend"
	FeatDrying        = "drying_difficulty"
	FeatRainy         = "is_rainy"
	FeatHeavyRain     = "heavy_rain"
	FeatHoliday       = "is_holiday"
	FeatHolidayEve    = "is_holiday_eve"
	FeatWeekendDrying = "weekend_drying"
	FeatWeekendRain   = "weekend_rain"
	FeatHolidayDrying = "holiday_drying"
)

var tierFeatures = map[Tier][]string{
	TierFull: {
		FeatLag1, FeatLag7, FeatWeekend, FeatDrying, FeatRainy, FeatHeavyRain,
		FeatHoliday, FeatHolidayEve, FeatWeekendDrying, FeatWeekendRain, FeatHolidayDrying,
	},
	TierReduced: {
		FeatLag1, FeatLag7, FeatWeekend, FeatDrying, FeatRainy, FeatHeavyRain,
	},
	TierMinimal:  {FeatLag1, FeatLag7},
	TierFallback: {},
}

// Features returns the ordered feature names of the tier (intercept excluded).
func (t Tier) Features() []string {
	return tierFeatures[t]
}

// DesignWidth returns the design-vector length including the intercept.
func (t Tier) DesignWidth() int {
	return len(tierFeatures[t]) + 1
}

// Confidence-band sizing per tier: simpler models earn wider bands.
var marginPercent = map[Tier]float64{
	TierFull:     0.30,
	TierReduced:  0.40,
	TierMinimal:  0.50,
	TierFallback: 0.60,
}

// MarginPercent returns the confidence-band half-width as a fraction of the
// predicted value.
func (t Tier) MarginPercent() float64 {
	return marginPercent[t]
}
