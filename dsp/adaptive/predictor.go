package adaptive

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/moukito/SON-project/dsp/core"
)

// Predictor is a single-reference LMS transversal predictor returning
// the prediction error.
//
// The history and weight buffers are allocated once in New and never
// resized. It is not safe for concurrent use.
type Predictor struct {
	order   int
	mu      float64
	history []float64
	weights []float64
	idx     int
	power   float64

	muEff   float64
	leakage float64

	estimator VarianceEstimator
	tuner     *noiseTuner
	cfg       config
}

// New returns a predictor with order taps and base step size mu.
func New(order int, mu float64, opts ...Option) (*Predictor, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if !(mu > 0) || math.IsInf(mu, 0) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidStepSize, mu)
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if (cfg.adaptiveStep || cfg.adaptiveLeak) && cfg.variance == varianceNone {
		cfg.variance = varianceExponential
	}

	buf := make([]float64, 2*order)
	p := &Predictor{
		order:   order,
		mu:      mu,
		history: buf[:order:order],
		weights: buf[order:],
		cfg:     cfg,
	}

	switch cfg.variance {
	case varianceExponential:
		p.estimator = NewExponentialEstimator(cfg.alpha)
	case varianceKalman:
		k := NewKalmanEstimator(cfg.kalmanQ, cfg.kalmanR)
		p.estimator = k
		if cfg.noiseWindow > 0 {
			p.tuner = newNoiseTuner(k, cfg.noiseWindow)
		}
	}

	p.Reset()

	return p, nil
}

// Tick consumes one input sample and returns the prediction error.
func (p *Predictor) Tick(x float64) float64 {
	var estimate float64
	j := p.idx
	for i := range p.order {
		estimate += p.weights[i] * p.history[j]
		if j--; j < 0 {
			j = p.order - 1
		}
	}

	if !(math.Abs(estimate) <= DivergenceLimit) {
		// Diverged: restart from zero weights.
		clear(p.weights)
		estimate = 0
	}

	e := x - estimate

	if xx, ee := x*x, e*e; p.estimator != nil && core.IsFinite(xx) && core.IsFinite(ee) {
		p.estimator.Update(xx, ee)
		if p.tuner != nil {
			p.tuner.observe(xx, ee)
		}
	}

	p.muEff = p.stepSize()
	p.leakage = p.leakageFactor()

	if p.leakage != 1 && core.IsFinite(p.leakage) {
		vecmath.ScaleBlock(p.weights, p.weights, p.leakage)
	}

	if g := p.muEff * e; g != 0 && core.IsFinite(g) {
		j = p.idx
		for i := range p.order {
			p.weights[i] = core.FlushDenormals(p.weights[i] + g*p.history[j])
			if j--; j < 0 {
				j = p.order - 1
			}
		}
	}

	old := p.history[p.idx]
	p.history[p.idx] = x
	p.power += x*x - old*old
	if p.power < 0 {
		p.power = 0
	}

	if p.idx++; p.idx == p.order {
		p.idx = 0
	}

	return e
}

// ProcessBlock replaces every sample of buf with its prediction error.
func (p *Predictor) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = p.Tick(x)
	}
}

// Reset zeroes history, weights, index and all running statistics.
func (p *Predictor) Reset() {
	clear(p.history)
	clear(p.weights)
	p.idx = 0
	p.power = 0
	if p.estimator != nil {
		p.estimator.Reset()
	}
	if p.tuner != nil {
		p.tuner.reset()
		p.tuner.kalman.SetNoise(p.cfg.kalmanQ, p.cfg.kalmanR)
	}
	p.leakage = p.leakageFactor()
	p.muEff = p.stepSize()
}

// SetStepSize changes the base step size. Zero freezes the weights in
// every variant; negative or non-finite values are rejected.
func (p *Predictor) SetStepSize(mu float64) error {
	if mu < 0 || math.IsNaN(mu) || math.IsInf(mu, 0) {
		return fmt.Errorf("%w: %f", ErrInvalidStepSize, mu)
	}
	p.mu = mu
	return nil
}

// StepSize returns the base step size.
func (p *Predictor) StepSize() float64 { return p.mu }

// EffectiveStepSize returns the step size used by the last update.
func (p *Predictor) EffectiveStepSize() float64 { return p.muEff }

// Leakage returns the leakage factor used by the last update.
func (p *Predictor) Leakage() float64 { return p.leakage }

// Order returns the number of taps.
func (p *Predictor) Order() int { return p.order }

// Power returns the running sum of squares of the history buffer.
func (p *Predictor) Power() float64 { return p.power }

// Weights returns a copy of the tap weights.
func (p *Predictor) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

// SNR returns the smoothed signal-to-error ratio, or 0 when no variance
// estimator is configured.
func (p *Predictor) SNR() float64 {
	if p.estimator == nil {
		return 0
	}
	return p.estimator.SignalVariance() / (p.estimator.ErrorVariance() + core.Epsilon)
}

// Estimator returns the variance estimator, nil for plain LMS/NLMS.
func (p *Predictor) Estimator() VarianceEstimator { return p.estimator }

func (p *Predictor) stepSize() float64 {
	if p.mu == 0 {
		return 0
	}

	mu := p.mu
	if p.cfg.adaptiveStep {
		mu = core.Lerp(p.SNR(), DefaultSNRLow, DefaultSNRHigh, p.cfg.muMin, p.cfg.muMax)
	}
	if p.cfg.normalized {
		mu /= p.power + p.cfg.eps
	}
	return mu
}

func (p *Predictor) leakageFactor() float64 {
	if !p.cfg.adaptiveLeak {
		return p.cfg.fixedLeak
	}
	return core.Lerp(p.estimator.ErrorVariance(), p.cfg.leakLo, p.cfg.leakHi, p.cfg.leakMax, p.cfg.leakMin)
}
