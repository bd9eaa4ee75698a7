// Package stats contains small numeric helpers shared by the matchup engine
// and its presentation boundary.
package stats

import "math"

// Round2 rounds x to two decimals, half up: floor(100*x + 0.5) / 100.
// NaN and infinities pass through unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Floor(x*100+0.5) / 100
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// WeightedMean returns floor(100·Σ(value·weight)/Σweight + 0.5)/100, or NaN
// when the total weight is zero. The sum is scaled before dividing so ties
// such as 25.085 round up.
func WeightedMean(weightedSum, totalWeight float64) float64 {
	if totalWeight == 0 {
		return math.NaN()
	}
	return math.Floor(100*weightedSum/totalWeight+0.5) / 100
}

// Nullable converts a float to a JSON-friendly pointer: NaN and infinities
// become nil (encoded as null) so "no data" is never rendered as 0.
func Nullable(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

// FromNullable is the inverse of Nullable.
func FromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
