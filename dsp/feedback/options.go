package feedback

// Detector defaults.
const (
	DefaultBufferSize   = 512
	MinBufferSize       = 16
	DefaultScanDivisor  = 8
	DefaultThreshold    = 0.1
	DefaultMinFrequency = 100.0
	DefaultMaxFrequency = 8000.0
	// MaxPeaks bounds the ranked candidate list.
	MaxPeaks = 5
)

type config struct {
	bufferSize  int
	scanDivisor int
	threshold   float64
	minFreq     float64
	maxFreq     float64
	maxPeaks    int
	useFFT      bool
}

func defaultConfig() config {
	return config{
		bufferSize:  DefaultBufferSize,
		scanDivisor: DefaultScanDivisor,
		threshold:   DefaultThreshold,
		minFreq:     DefaultMinFrequency,
		maxFreq:     DefaultMaxFrequency,
		maxPeaks:    MaxPeaks,
	}
}

// Option configures a Detector.
type Option func(*config)

// WithBufferSize sets the analysis window length. Values below
// MinBufferSize are ignored.
func WithBufferSize(n int) Option {
	return func(cfg *config) {
		if n >= MinBufferSize {
			cfg.bufferSize = n
		}
	}
}

// WithScanDivisor sets the lowest scanned lag to B/d. d must be at least 2.
func WithScanDivisor(d int) Option {
	return func(cfg *config) {
		if d >= 2 {
			cfg.scanDivisor = d
		}
	}
}

// WithThreshold sets the minimum peak height as a fraction of the
// zero-lag autocorrelation.
func WithThreshold(ratio float64) Option {
	return func(cfg *config) {
		if ratio >= 0 && ratio < 1 {
			cfg.threshold = ratio
		}
	}
}

// WithFrequencyRange restricts reported frequencies to [lo, hi] Hz.
func WithFrequencyRange(lo, hi float64) Option {
	return func(cfg *config) {
		if lo > 0 && hi > lo {
			cfg.minFreq = lo
			cfg.maxFreq = hi
		}
	}
}

// WithMaxPeaks caps the number of reported frequencies (1..MaxPeaks).
func WithMaxPeaks(n int) Option {
	return func(cfg *config) {
		if n >= 1 && n <= MaxPeaks {
			cfg.maxPeaks = n
		}
	}
}

// WithFFT computes the autocorrelation through a zero-padded FFT instead
// of the direct sum.
func WithFFT() Option {
	return func(cfg *config) {
		cfg.useFFT = true
	}
}
