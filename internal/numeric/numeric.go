// Package numeric holds small generic numeric helpers shared across the
// economy packages (xp, quest), instead of each
// package hand-rolling its own per-type clamp/min.
package numeric

import "golang.org/x/exp/constraints"

// Clamp confines v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
