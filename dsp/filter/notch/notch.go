package notch

import (
	"fmt"
	"math"

	"github.com/moukito/SON-project/dsp/core"
	"github.com/moukito/SON-project/dsp/filter/biquad"
)

const (
	// DefaultMinSelectivity is the smallest Q accepted by the setters.
	DefaultMinSelectivity = 0.1
	// DefaultMaxSelectivity is the largest Q accepted by the setters.
	DefaultMaxSelectivity = 1000.0

	minFrequency = 1.0
	// maxNyquistRatio keeps the centre strictly below fs/2.
	maxNyquistRatio = 0.49
)

// Design selects how selectivity is turned into pole placement.
type Design int

const (
	// DesignQ uses the RBJ form, alpha = sin(w0)/(2Q).
	DesignQ Design = iota
	// DesignPoleRadius derives a bandwidth f/Q and places the poles at
	// r = exp(-pi*bandwidth/fs).
	DesignPoleRadius
)

// String implements fmt.Stringer.
func (d Design) String() string {
	switch d {
	case DesignQ:
		return "q"
	case DesignPoleRadius:
		return "pole-radius"
	default:
		return fmt.Sprintf("Design(%d)", int(d))
	}
}

type config struct {
	design Design
	minQ   float64
	maxQ   float64
}

// Option configures a Filter.
type Option func(*config)

// WithPoleRadiusDesign selects the bandwidth-driven pole-radius design.
func WithPoleRadiusDesign() Option {
	return func(cfg *config) { cfg.design = DesignPoleRadius }
}

// WithSelectivityLimits sets the clamping range for selectivity. The lower
// bound must be positive; invalid ranges are ignored.
func WithSelectivityLimits(minQ, maxQ float64) Option {
	return func(cfg *config) {
		if minQ > 0 && maxQ >= minQ && !math.IsInf(maxQ, 0) {
			cfg.minQ = minQ
			cfg.maxQ = maxQ
		}
	}
}

// Filter is a single notch (band-stop) biquad.
//
// It is not safe for concurrent use.
type Filter struct {
	section    biquad.Section
	sampleRate float64
	freq       float64
	q          float64
	cfg        config
}

// New returns a notch centred on freq (Hz) with selectivity q. Frequency
// and selectivity are clamped into range; only an unusable sample rate is
// an error.
func New(freq, q, sampleRate float64, opts ...Option) (*Filter, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("notch: %w", err)
	}

	cfg := config{
		design: DesignQ,
		minQ:   DefaultMinSelectivity,
		maxQ:   DefaultMaxSelectivity,
	}
	for _, o := range opts {
		o(&cfg)
	}

	f := &Filter{
		sampleRate: sampleRate,
		freq:       1000,
		q:          cfg.minQ,
		cfg:        cfg,
	}
	f.freq = f.clampFrequency(freq)
	f.q = f.clampSelectivity(q)
	f.updateCoefficients()

	return f, nil
}

// SetFrequency re-centres the notch. NaN is ignored.
func (f *Filter) SetFrequency(freq float64) {
	if math.IsNaN(freq) {
		return
	}
	f.freq = f.clampFrequency(freq)
	f.updateCoefficients()
}

// SetSelectivity changes Q. Values below the configured minimum are
// clamped up so the pole radius stays below one. NaN is ignored.
func (f *Filter) SetSelectivity(q float64) {
	if math.IsNaN(q) {
		return
	}
	f.q = f.clampSelectivity(q)
	f.updateCoefficients()
}

// Tune sets frequency and selectivity with a single coefficient update.
func (f *Filter) Tune(freq, q float64) {
	if !math.IsNaN(freq) {
		f.freq = f.clampFrequency(freq)
	}
	if !math.IsNaN(q) {
		f.q = f.clampSelectivity(q)
	}
	f.updateCoefficients()
}

// Frequency returns the centre frequency in Hz.
func (f *Filter) Frequency() float64 { return f.freq }

// Selectivity returns Q.
func (f *Filter) Selectivity() float64 { return f.q }

// Bandwidth returns the -3 dB width f/Q in Hz.
func (f *Filter) Bandwidth() float64 { return f.freq / f.q }

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Design returns the active coefficient design.
func (f *Filter) Design() Design { return f.cfg.design }

// Coefficients returns the current biquad coefficients.
func (f *Filter) Coefficients() biquad.Coefficients { return f.section.Coefficients }

// PoleRadius returns the pole magnitude of the current design.
func (f *Filter) PoleRadius() float64 { return f.section.PoleRadius() }

// MagnitudeDB returns the filter response in dB at freqHz.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.section.MagnitudeDB(freqHz, f.sampleRate)
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	return f.section.ProcessSample(x)
}

// ProcessBlock filters buf in place.
func (f *Filter) ProcessBlock(buf []float64) {
	f.section.ProcessBlock(buf)
}

// Reset clears the delay state; tuning is kept.
func (f *Filter) Reset() {
	f.section.Reset()
}

func (f *Filter) clampFrequency(freq float64) float64 {
	return core.Clamp(freq, minFrequency, maxNyquistRatio*f.sampleRate)
}

func (f *Filter) clampSelectivity(q float64) float64 {
	return core.Clamp(q, f.cfg.minQ, f.cfg.maxQ)
}

func (f *Filter) updateCoefficients() {
	var c biquad.Coefficients
	switch f.cfg.design {
	case DesignPoleRadius:
		c = biquad.NotchPoleRadius(f.freq, f.Bandwidth(), f.sampleRate)
	default:
		c = biquad.Notch(f.freq, f.q, f.sampleRate)
	}
	if !c.Stable() {
		c = biquad.Coefficients{B0: 1}
	}
	f.section.Coefficients = c
}
