package afc

import (
	"github.com/sirupsen/logrus"

	"github.com/moukito/SON-project/dsp/adaptive"
	"github.com/moukito/SON-project/dsp/core"
	"github.com/moukito/SON-project/dsp/feedback"
	"github.com/moukito/SON-project/dsp/filter/bank"
)

// Canceller defaults.
const (
	DefaultOrder            = 64
	DefaultStepSize         = 0.001
	DefaultInitialFrequency = 2750.0
	DefaultGain             = 1.0
	// MaxGain bounds SetGain.
	MaxGain = 10.0
)

// With notch tracking on, a detection only moves the bank when, since the
// previous detection, the pipeline removed more than TrackingRemovedLevel
// from some sample or produced an output above TrackingOutputLevel.
const (
	TrackingRemovedLevel = 0.05
	TrackingOutputLevel  = 0.7
)

type config struct {
	processor core.ProcessorConfig

	order     int
	stepSize  float64
	predictor []adaptive.Option

	initialFreq float64
	bankOpts    []bank.Option

	detectorOpts []feedback.Option

	mode   Mode
	gain   float64
	logger logrus.FieldLogger
}

func defaultConfig() config {
	return config{
		processor:   core.DefaultProcessorConfig(),
		order:       DefaultOrder,
		stepSize:    DefaultStepSize,
		predictor:   []adaptive.Option{adaptive.WithNormalization(0)},
		initialFreq: DefaultInitialFrequency,
		mode:        Adaptive,
		gain:        DefaultGain,
	}
}

// Option configures a Canceller.
type Option func(*config)

// WithProcessorOptions applies sample rate and block size options.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *config) {
		for _, o := range opts {
			if o != nil {
				o(&cfg.processor)
			}
		}
	}
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return WithProcessorOptions(core.WithSampleRate(sampleRate))
}

// WithBlockSize sets the block size used by ProcessInt16 scratch buffers.
func WithBlockSize(n int) Option {
	return WithProcessorOptions(core.WithBlockSize(n))
}

// WithOrder sets the predictor order. Validation happens in New.
func WithOrder(order int) Option {
	return func(cfg *config) {
		cfg.order = order
	}
}

// WithStepSize sets the predictor base step size. Validation happens in New.
func WithStepSize(mu float64) Option {
	return func(cfg *config) {
		cfg.stepSize = mu
	}
}

// WithPredictorOptions replaces the default predictor variant (NLMS).
// Passing no options selects plain LMS.
func WithPredictorOptions(opts ...adaptive.Option) Option {
	return func(cfg *config) {
		cfg.predictor = append([]adaptive.Option(nil), opts...)
	}
}

// WithInitialFrequency sets the notch centre used before the first
// detection.
func WithInitialFrequency(freq float64) Option {
	return func(cfg *config) {
		if freq > 0 {
			cfg.initialFreq = freq
		}
	}
}

// WithBankOptions forwards options to the notch bank.
func WithBankOptions(opts ...bank.Option) Option {
	return func(cfg *config) {
		cfg.bankOpts = append(cfg.bankOpts, opts...)
	}
}

// WithTracking makes detections glide the active notches toward the
// detected frequencies by rate per analysis instead of re-tuning them
// outright. See bank.WithTracking.
func WithTracking(rate float64) Option {
	return WithBankOptions(bank.WithTracking(rate))
}

// WithDetectorOptions forwards options to the feedback detector.
func WithDetectorOptions(opts ...feedback.Option) Option {
	return func(cfg *config) {
		cfg.detectorOpts = append(cfg.detectorOpts, opts...)
	}
}

// WithMode sets the initial combination mode.
func WithMode(m Mode) Option {
	return func(cfg *config) {
		if m.Valid() {
			cfg.mode = m
		}
	}
}

// WithGain sets the initial output gain.
func WithGain(g float64) Option {
	return func(cfg *config) {
		cfg.gain = g
	}
}

// WithLogger routes control-path logging to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}
