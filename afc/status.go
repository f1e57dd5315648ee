package afc

import "github.com/moukito/SON-project/dsp/feedback"

// Status is a snapshot of the canceller configuration and state.
type Status struct {
	Mode            Mode
	EffectiveMode   Mode
	Gain            float64
	Muted           bool
	Bypass          bool
	NotchEnabled    bool
	AdaptiveEnabled bool

	// Notches lists the active bank slots.
	Notches []Notch
	// Detected is the latest detector output, strongest first.
	Detected []feedback.Peak
	// Attenuation is the bank response in dB at each Detected frequency.
	Attenuation []float64
	// Tracking is the notch glide rate, 0 when detections re-tune outright.
	Tracking float64

	InputEnergy       float64
	ErrorEnergy       float64
	SER               float64
	StepSize          float64
	EffectiveStepSize float64
	DetectorEnergy    float64
	Analyses          int
	Retunes           int
}

// Notch describes one active bank slot.
type Notch struct {
	Frequency   float64
	Selectivity float64
	Bandwidth   float64
	PoleRadius  float64
}

// Status returns a snapshot. It allocates and belongs on the control path.
func (c *Canceller) Status() Status {
	in, errE := c.orch.Energies()

	notches := make([]Notch, c.bank.Active())
	for i := range notches {
		f := c.bank.Filter(i)
		notches[i] = Notch{
			Frequency:   f.Frequency(),
			Selectivity: f.Selectivity(),
			Bandwidth:   f.Bandwidth(),
			PoleRadius:  f.PoleRadius(),
		}
	}

	peaks := c.detector.Peaks()
	attenuation := make([]float64, len(peaks))
	for i, p := range peaks {
		attenuation[i] = c.bank.ResponseDB(p.Frequency)
	}

	return Status{
		Mode:              c.orch.Mode(),
		EffectiveMode:     c.orch.EffectiveMode(),
		Gain:              c.gain,
		Muted:             c.muted,
		Bypass:            c.bypass,
		NotchEnabled:      c.orch.NotchEnabled(),
		AdaptiveEnabled:   c.orch.AdaptiveEnabled(),
		Notches:           notches,
		Detected:          peaks,
		Attenuation:       attenuation,
		Tracking:          c.bank.Tracking(),
		InputEnergy:       in,
		ErrorEnergy:       errE,
		SER:               c.orch.SER(),
		StepSize:          c.predictor.StepSize(),
		EffectiveStepSize: c.predictor.EffectiveStepSize(),
		DetectorEnergy:    c.detector.Energy(),
		Analyses:          c.detector.Analyses(),
		Retunes:           c.retunes,
	}
}
