package afc

import (
	"math"

	"github.com/moukito/SON-project/dsp/adaptive"
	"github.com/moukito/SON-project/dsp/core"
	"github.com/moukito/SON-project/dsp/filter/bank"
)

// DefaultEnergySmoothing is the one-pole factor of the input and error
// energy trackers.
const DefaultEnergySmoothing = 0.95

// Orchestrator combines a notch bank and an adaptive predictor.
//
// The configured mode and the mode used for the last sample are kept
// apart, so Adaptive keeps re-evaluating after it has picked a fixed mode.
type Orchestrator struct {
	bank      *bank.Bank
	predictor *adaptive.Predictor

	mode      Mode
	effective Mode

	notchEnabled    bool
	adaptiveEnabled bool

	inputEnergy float64
	errorEnergy float64
	alpha       float64

	peakRemoved float64
	peakOutput  float64
}

// NewOrchestrator wires b and p together. An invalid mode falls back to
// Adaptive.
func NewOrchestrator(b *bank.Bank, p *adaptive.Predictor, mode Mode) *Orchestrator {
	if !mode.Valid() {
		mode = Adaptive
	}
	o := &Orchestrator{
		bank:            b,
		predictor:       p,
		mode:            mode,
		notchEnabled:    true,
		adaptiveEnabled: true,
		alpha:           DefaultEnergySmoothing,
	}
	o.effective = o.resolve()
	return o
}

// ProcessSample runs x through the pipeline of the current mode.
func (o *Orchestrator) ProcessSample(x float64) float64 {
	o.inputEnergy = core.Smooth(o.inputEnergy, x*x, o.alpha)
	o.effective = o.resolve()

	var y float64
	switch o.effective {
	case NotchFirst:
		y = o.adapt(o.notch(x))
	case LMSFirst:
		y = o.notch(o.adapt(x))
	default:
		y = 0.5*o.notch(x) + 0.5*o.adapt(x)
	}

	if !core.IsFinite(y) {
		o.bank.Reset()
		o.predictor.Reset()
		y = 0
	}

	d := y - x
	o.errorEnergy = core.Clamp(core.Smooth(o.errorEnergy, d*d, o.alpha), 0, math.MaxFloat64)
	o.peakRemoved = max(o.peakRemoved, math.Abs(d))
	o.peakOutput = max(o.peakOutput, math.Abs(y))

	return y
}

func (o *Orchestrator) resolve() Mode {
	if o.mode == Adaptive {
		return SelectMode(o.SER())
	}
	return o.mode
}

func (o *Orchestrator) notch(x float64) float64 {
	if !o.notchEnabled {
		return x
	}
	return o.bank.ProcessSample(x)
}

func (o *Orchestrator) adapt(x float64) float64 {
	if !o.adaptiveEnabled {
		return x
	}
	return o.predictor.Tick(x)
}

// SER returns the smoothed input energy over the smoothed error energy.
// Near-silent input reports 1.
func (o *Orchestrator) SER() float64 {
	if o.inputEnergy <= core.Epsilon {
		return 1
	}
	return o.inputEnergy / (o.errorEnergy + core.Epsilon)
}

// Retune forwards a ranked frequency list to the bank and returns the
// number of active notches. An empty list keeps the current tuning.
func (o *Orchestrator) Retune(freqs []float64) int {
	return o.bank.Retune(freqs)
}

// SetMode changes the configured mode. Invalid modes are ignored.
func (o *Orchestrator) SetMode(m Mode) {
	if m.Valid() {
		o.mode = m
		o.effective = o.resolve()
	}
}

// Mode returns the configured mode.
func (o *Orchestrator) Mode() Mode { return o.mode }

// EffectiveMode returns the mode used for the most recent sample.
func (o *Orchestrator) EffectiveMode() Mode { return o.effective }

// SetNotchEnabled switches the notch stage between filtering and
// pass-through.
func (o *Orchestrator) SetNotchEnabled(on bool) { o.notchEnabled = on }

// NotchEnabled reports whether the notch stage filters.
func (o *Orchestrator) NotchEnabled() bool { return o.notchEnabled }

// SetAdaptiveEnabled switches the predictor stage between filtering and
// pass-through.
func (o *Orchestrator) SetAdaptiveEnabled(on bool) { o.adaptiveEnabled = on }

// AdaptiveEnabled reports whether the predictor stage filters.
func (o *Orchestrator) AdaptiveEnabled() bool { return o.adaptiveEnabled }

// Energies returns the smoothed input and error energies.
func (o *Orchestrator) Energies() (input, err float64) {
	return o.inputEnergy, o.errorEnergy
}

// Activity returns the largest |y-x| and |y| seen since the last
// ClearActivity.
func (o *Orchestrator) Activity() (removed, output float64) {
	return o.peakRemoved, o.peakOutput
}

// ClearActivity restarts the Activity peaks.
func (o *Orchestrator) ClearActivity() {
	o.peakRemoved, o.peakOutput = 0, 0
}

// Reset clears the energy trackers and the state of both stages. The bank
// tuning is kept.
func (o *Orchestrator) Reset() {
	o.inputEnergy = 0
	o.errorEnergy = 0
	o.ClearActivity()
	o.bank.Reset()
	o.predictor.Reset()
	o.effective = o.resolve()
}
