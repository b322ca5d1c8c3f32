package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ScaleFloor multiplies v by factor, rounds down and keeps the result at or
// above low. Negative or NaN factors yield low.
func ScaleFloor[T constraints.Unsigned](v T, factor float32, low T) T {
	if factor != factor || factor <= 0 {
		return low
	}
	scaled := stdmath.Floor(float64(v) * float64(factor))
	if scaled > float64(^T(0)) {
		return ^T(0)
	}
	return Clamp(T(scaled), low, ^T(0))
}
