package scale

import "math"

func clamp(t, min, max float64) float64 {
	min, max = math.Min(min, max), math.Max(min, max)
	return math.Max(math.Min(t, max), min)
}

// Clamp returns a function that maps [rMin,rMax] linearly onto [tMin,tMax] and clamps
// the result to the target interval. A degenerate source interval maps everything to tMin.
func Clamp(rMin, rMax, tMin, tMax float64) func(m float64) float64 {
	return func(m float64) float64 {
		if rMax == rMin || math.IsNaN(m) {
			return tMin
		}
		return clamp((m-rMin)/(rMax-rMin)*(tMax-tMin)+tMin, tMin, tMax)
	}
}

// ToUnitClamp returns a function that scales a number from the interval [rMin,rMax]
// to the unit interval ([0,1]), if the result falls outside [0,1], it is clamped
// to 0 or 1.
func ToUnitClamp(rMin, rMax float64) func(m float64) float64 {
	return Clamp(rMin, rMax, 0, 1)
}

// ToDMX maps a unit value to a DMX slot value, rounding to the nearest step.
func ToDMX(v float64) byte {
	if math.IsNaN(v) {
		return 0
	}
	return byte(math.Round(clamp(v, 0, 1) * 255))
}
