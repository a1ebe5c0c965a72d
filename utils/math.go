// Package utils contains small numeric helpers shared by the mechanics packages.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// WrapAngle maps an angle in radians into the half-open range (-pi, pi].
func WrapAngle(theta float64) float64 {
	wrapped := math.Remainder(theta, 2*math.Pi)
	if wrapped <= -math.Pi {
		wrapped += 2 * math.Pi
	}
	return wrapped
}
