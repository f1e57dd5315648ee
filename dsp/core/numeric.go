package core

import "math"

const defaultEpsilon = 1e-12

// Epsilon guards divisions by running power or variance estimates.
const Epsilon = 1e-10

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Lerp maps x from [x0, x1] onto [y0, y1], saturating outside the band.
// A degenerate band (x0 == x1) returns y1 for x >= x0 and y0 otherwise.
func Lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		if x >= x0 {
			return y1
		}
		return y0
	}

	t := Clamp((x-x0)/(x1-x0), 0, 1)
	return y0 + t*(y1-y0)
}

// Smooth returns the one-pole average alpha*prev + (1-alpha)*x.
func Smooth(prev, x, alpha float64) float64 {
	return alpha*prev + (1-alpha)*x
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// Recursive filter state decaying toward zero otherwise ends up in the
// denormal range, which is slow on most FPUs.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}
