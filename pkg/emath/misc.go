package emath

import "math"

// Some functions that only operate on basic types, that are useful

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
// f is assumed to be in the range [0,1]
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}

// Normalize maps v from [min,max] into [0,1], clipping at both ends. A
// degenerate range maps everything to 0.
func Normalize(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	f := (v - min) / (max - min)
	if f < 0 {
		return 0
	} else if f > 1 {
		return 1
	}
	return f
}

// IsFinite is false for NaN and +/-Inf
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
