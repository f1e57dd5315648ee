package adaptive

// Defaults for the optional variants.
const (
	DefaultNormalizationEpsilon = 1e-6
	DefaultSNRLow               = 2.0
	DefaultSNRHigh              = 10.0
	DefaultLeakageMin           = 0.99
	DefaultLeakageMax           = 1.0
	DefaultLeakageBandLow       = 0.01
	DefaultLeakageBandHigh      = 0.1
	DefaultKalmanProcessNoise   = 1e-5
	DefaultKalmanMeasureNoise   = 1e-2
)

// DivergenceLimit bounds the magnitude of an estimate. Anything larger,
// or NaN, clears the weights and the tick returns its input unchanged.
const DivergenceLimit = 1e6

type varianceKind int

const (
	varianceNone varianceKind = iota
	varianceExponential
	varianceKalman
)

type config struct {
	normalized bool
	eps        float64

	adaptiveStep bool
	muMin, muMax float64

	variance    varianceKind
	alpha       float64
	kalmanQ     float64
	kalmanR     float64
	noiseWindow int

	adaptiveLeak     bool
	fixedLeak        float64
	leakMin, leakMax float64
	leakLo, leakHi   float64
}

func defaultConfig() config {
	return config{
		eps:       DefaultNormalizationEpsilon,
		alpha:     DefaultSmoothing,
		kalmanQ:   DefaultKalmanProcessNoise,
		kalmanR:   DefaultKalmanMeasureNoise,
		fixedLeak: 1,
		leakMin:   DefaultLeakageMin,
		leakMax:   DefaultLeakageMax,
		leakLo:    DefaultLeakageBandLow,
		leakHi:    DefaultLeakageBandHigh,
	}
}

// Option configures a Predictor.
type Option func(*config)

// WithNormalization divides the step size by the history power plus eps
// (NLMS). A non-positive eps keeps the default.
func WithNormalization(eps float64) Option {
	return func(cfg *config) {
		cfg.normalized = true
		if eps > 0 {
			cfg.eps = eps
		}
	}
}

// WithAdaptiveStepSize derives the step size from the smoothed SNR,
// interpolating linearly from muMin at SNR 2 to muMax at SNR 10. An
// exponential variance estimate is used unless another is selected.
func WithAdaptiveStepSize(muMin, muMax float64) Option {
	return func(cfg *config) {
		if muMin >= 0 && muMax >= muMin {
			cfg.adaptiveStep = true
			cfg.muMin = muMin
			cfg.muMax = muMax
		}
	}
}

// WithExponentialVariance selects one-pole smoothing with factor alpha
// for the signal and error variance estimates.
func WithExponentialVariance(alpha float64) Option {
	return func(cfg *config) {
		cfg.variance = varianceExponential
		if alpha > 0 && alpha < 1 {
			cfg.alpha = alpha
		}
	}
}

// WithKalmanVariance selects the scalar Kalman variance estimator with
// process noise q and measurement noise r.
func WithKalmanVariance(q, r float64) Option {
	return func(cfg *config) {
		cfg.variance = varianceKalman
		if q > 0 {
			cfg.kalmanQ = q
		}
		if r > 0 {
			cfg.kalmanR = r
		}
	}
}

// WithDynamicNoise re-estimates the Kalman noise parameters every window
// samples. It selects the Kalman estimator, keeping noise values from an
// earlier WithKalmanVariance as the starting point.
func WithDynamicNoise(window int) Option {
	return func(cfg *config) {
		cfg.variance = varianceKalman
		cfg.noiseWindow = window
		if window < 5 {
			cfg.noiseWindow = DefaultNoiseWindow
		}
	}
}

// WithLeakage adapts the leakage factor between min and max from the
// error variance: low error energy moves it toward max (long memory),
// high error energy toward min (fast forgetting).
func WithLeakage(minLeak, maxLeak float64) Option {
	return func(cfg *config) {
		if minLeak > 0 && minLeak <= maxLeak && maxLeak <= 1 {
			cfg.adaptiveLeak = true
			cfg.leakMin = minLeak
			cfg.leakMax = maxLeak
		}
	}
}

// WithLeakageBand sets the error-variance band over which adaptive
// leakage is interpolated. Defaults to [0.01, 0.1].
func WithLeakageBand(lo, hi float64) Option {
	return func(cfg *config) {
		if lo >= 0 && hi > lo {
			cfg.leakLo = lo
			cfg.leakHi = hi
		}
	}
}

// WithFixedLeakage applies a constant leakage factor in (0, 1].
func WithFixedLeakage(gamma float64) Option {
	return func(cfg *config) {
		if gamma > 0 && gamma <= 1 {
			cfg.adaptiveLeak = false
			cfg.fixedLeak = gamma
		}
	}
}
