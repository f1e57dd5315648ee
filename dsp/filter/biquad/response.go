package biquad

import (
	"math"

	"github.com/moukito/SON-project/dsp/core"
)

// MagnitudeSquared returns |H(f)|² evaluated on the unit circle.
func (c *Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	s1, c1 := math.Sincos(w)
	s2, c2 := math.Sincos(2 * w)

	nr := c.B0 + c.B1*c1 + c.B2*c2
	ni := c.B1*s1 + c.B2*s2
	dr := 1 + c.A1*c1 + c.A2*c2
	di := c.A1*s1 + c.A2*s2

	return (nr*nr + ni*ni) / (dr*dr + di*di)
}

// MagnitudeDB returns |H(f)|² in dB. An exact zero gives -Inf.
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return core.LinearPowerToDB(c.MagnitudeSquared(freqHz, sampleRate))
}
