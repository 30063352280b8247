// Package anglemath provides circular arithmetic on angles in degrees.
package anglemath

import "math"

// FullTurn is the number of degrees in one revolution.
const FullTurn = 360.0

// Normalize wraps angle into [0, 360).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, FullTurn)
	if a < 0 {
		a += FullTurn
	}
	// Adding 360 to a tiny negative remainder can round up to exactly 360.
	if a >= FullTurn {
		a = 0
	}
	return a
}

// ShortestDifference returns the signed difference a-b taken the short way
// around the circle, in (-180, 180].
func ShortestDifference(a, b float64) float64 {
	diff := Normalize(a - b)
	if diff > FullTurn/2 {
		diff -= FullTurn
	}
	return diff
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
