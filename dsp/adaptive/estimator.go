package adaptive

import "github.com/moukito/SON-project/dsp/core"

// VarianceEstimator tracks the running power of the input signal and of the
// prediction error. Update receives x² and e² once per tick.
type VarianceEstimator interface {
	Update(signalSq, errorSq float64)
	SignalVariance() float64
	ErrorVariance() float64
	Reset()
}

// DefaultSmoothing is the exponential smoothing factor used when none is
// configured.
const DefaultSmoothing = 0.95

// ExponentialEstimator smooths x² and e² with a one-pole average.
type ExponentialEstimator struct {
	alpha  float64
	signal float64
	err    float64
}

// NewExponentialEstimator returns an estimator with smoothing factor alpha
// in (0, 1); other values fall back to DefaultSmoothing.
func NewExponentialEstimator(alpha float64) *ExponentialEstimator {
	if !(alpha > 0 && alpha < 1) {
		alpha = DefaultSmoothing
	}
	return &ExponentialEstimator{alpha: alpha}
}

// Update folds in one observation.
func (e *ExponentialEstimator) Update(signalSq, errorSq float64) {
	e.signal = core.Smooth(e.signal, signalSq, e.alpha)
	e.err = core.Smooth(e.err, errorSq, e.alpha)
}

// SignalVariance returns the smoothed x².
func (e *ExponentialEstimator) SignalVariance() float64 { return e.signal }

// ErrorVariance returns the smoothed e².
func (e *ExponentialEstimator) ErrorVariance() float64 { return e.err }

// Reset zeroes both estimates.
func (e *ExponentialEstimator) Reset() {
	e.signal, e.err = 0, 0
}

// Kalman noise bounds. Values outside are clamped by SetNoise.
const (
	MinProcessNoise     = 1e-8
	MaxProcessNoise     = 1e-2
	MinMeasurementNoise = 1e-6
	MaxMeasurementNoise = 1.0
)

// scalarKalman tracks a random-walk level.
type scalarKalman struct {
	est float64
	p   float64
}

func (k *scalarKalman) update(z, q, r float64) {
	k.p += q
	gain := k.p / (k.p + r)
	k.est += gain * (z - k.est)
	k.p *= 1 - gain
}

// KalmanEstimator estimates signal and error variance with two scalar
// Kalman filters sharing process noise q and measurement noise r.
type KalmanEstimator struct {
	q, r   float64
	signal scalarKalman
	err    scalarKalman
}

// NewKalmanEstimator returns an estimator with the given noise parameters,
// clamped into the supported range.
func NewKalmanEstimator(q, r float64) *KalmanEstimator {
	k := &KalmanEstimator{}
	k.SetNoise(q, r)
	k.Reset()
	return k
}

// SetNoise replaces the process and measurement noise variances.
func (k *KalmanEstimator) SetNoise(q, r float64) {
	k.q = core.Clamp(q, MinProcessNoise, MaxProcessNoise)
	k.r = core.Clamp(r, MinMeasurementNoise, MaxMeasurementNoise)
}

// Noise returns the current process and measurement noise.
func (k *KalmanEstimator) Noise() (q, r float64) { return k.q, k.r }

// Update folds in one observation.
func (k *KalmanEstimator) Update(signalSq, errorSq float64) {
	k.signal.update(signalSq, k.q, k.r)
	k.err.update(errorSq, k.q, k.r)
}

// SignalVariance returns the filtered x².
func (k *KalmanEstimator) SignalVariance() float64 { return k.signal.est }

// ErrorVariance returns the filtered e².
func (k *KalmanEstimator) ErrorVariance() float64 { return k.err.est }

// Reset returns both states to zero with unit covariance.
func (k *KalmanEstimator) Reset() {
	k.signal = scalarKalman{p: 1}
	k.err = scalarKalman{p: 1}
}
