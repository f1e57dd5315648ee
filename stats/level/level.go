// Package level measures signal levels block by block.
//
// A Meter accumulates energy, peak and clipping counts across blocks so a
// whole recording can be summarised without holding it in memory.
package level

import (
	"math"

	"github.com/moukito/SON-project/dsp/core"
)

// Level summarises a stretch of signal.
type Level struct {
	Samples int
	RMS     float64
	RMSdB   float64
	Peak    float64
	PeakdB  float64
	// CrestdB is peak over RMS in dB, 0 for silence.
	CrestdB float64
	// Clipped counts samples at or beyond full scale.
	Clipped int
}

// Meter accumulates a Level over successive blocks.
type Meter struct {
	n       int
	sumSq   float64
	peak    float64
	clipped int
}

// Update folds a block into the running totals.
func (m *Meter) Update(block []float64) {
	for _, x := range block {
		a := math.Abs(x)
		m.sumSq += x * x
		if a > m.peak {
			m.peak = a
		}
		if a >= 1 {
			m.clipped++
		}
	}
	m.n += len(block)
}

// Result returns the level accumulated so far.
func (m *Meter) Result() Level {
	if m.n == 0 {
		return Level{RMSdB: math.Inf(-1), PeakdB: math.Inf(-1)}
	}

	rms := math.Sqrt(m.sumSq / float64(m.n))
	l := Level{
		Samples: m.n,
		RMS:     rms,
		RMSdB:   core.LinearToDB(rms),
		Peak:    m.peak,
		PeakdB:  core.LinearToDB(m.peak),
		Clipped: m.clipped,
	}
	if rms > 0 {
		l.CrestdB = core.LinearToDB(m.peak / rms)
	}
	return l
}

// Reset clears the running totals.
func (m *Meter) Reset() {
	*m = Meter{}
}

// Measure returns the level of a single block.
func Measure(block []float64) Level {
	var m Meter
	m.Update(block)
	return m.Result()
}

// ReductionDB returns how far out sits below in, in dB. Positive values
// mean attenuation. Two silent levels give 0.
func ReductionDB(in, out Level) float64 {
	if in.RMS == 0 && out.RMS == 0 {
		return 0
	}
	return in.RMSdB - out.RMSdB
}
