package biquad

import (
	"math"
)

// Notch designs the RBJ band-stop centred on freq (Hz) with quality
// factor q:
//
//	w0 = 2*pi*freq/fs, alpha = sin(w0)/(2q)
//	b = [1, -2cos(w0), 1] / (1+alpha)
//	a = [1, -2cos(w0)/(1+alpha), (1-alpha)/(1+alpha)]
//
// The pole radius is sqrt((1-alpha)/(1+alpha)), inside the unit circle for
// every q > 0 and 0 < freq < fs/2. Invalid arguments return a passthrough.
func Notch(freq, q, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !(q > 0) {
		return Coefficients{B0: 1}
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	return normalize(1, -2*cw, 1, 1+alpha, -2*cw, 1-alpha)
}

// NotchPoleRadius designs a notch by placing zeros on the unit circle at
// ±w0 and poles at radius r = exp(-pi*bandwidth/fs) on the same angle:
//
//	a1 = -2r*cos(w0), a2 = r^2
//
// The numerator is scaled for unity gain at DC so that the pass band sits
// at 0 dB like the RBJ design. A non-positive bandwidth returns a
// passthrough because the poles would land on the zeros.
func NotchPoleRadius(freq, bandwidth, sampleRate float64) Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !(bandwidth > 0) {
		return Coefficients{B0: 1}
	}

	r := math.Exp(-math.Pi * bandwidth / sampleRate)
	cw := math.Cos(w0)
	a1 := -2 * r * cw
	a2 := r * r

	g := (1 + a1 + a2) / (2 - 2*cw)

	return Coefficients{
		B0: g,
		B1: -2 * cw * g,
		B2: g,
		A1: a1,
		A2: a2,
	}
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{B0: 1}
	}

	inv := 1 / a0

	return Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: a1 * inv,
		A2: a2 * inv,
	}
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 ||
		math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}
