package podds

import "math"

// safeDiv divides a by b, returning fallback when b is zero or the result is not finite
func safeDiv(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	return finiteOr(a/b, fallback)
}

// finiteOr returns v unless it is NaN or infinite
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// nonNegative multiplies v by factor without letting the result go below zero
func nonNegative(v, factor float64) float64 {
	return math.Max(0, finiteOr(v*factor, 0))
}
