// Package pcm converts between signed 16-bit PCM and normalized float
// samples at the audio-I/O boundary.
package pcm

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Scale maps full-scale int16 to ±1.0. The negative extreme -32768 maps
// slightly below -1 and is clamped on the way back.
const Scale = 32767.0

// ToFloat converts src into dst and returns the number of samples written,
// min(len(dst), len(src)).
func ToFloat(dst []float64, src []int16) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
	vecmath.ScaleBlock(dst[:n], dst[:n], 1/Scale)
	return n
}

// FromFloat converts src into dst with rounding and saturation and returns
// the number of samples written. NaN becomes 0.
func FromFloat(dst []int16, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Sample(src[i])
	}
	return n
}

// Sample converts one normalized value to int16.
func Sample(x float64) int16 {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= 1:
		return math.MaxInt16
	case x <= -1:
		return -math.MaxInt16
	}
	return int16(math.Round(x * Scale))
}
