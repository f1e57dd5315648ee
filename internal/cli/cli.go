// Package cli holds the flag set and logger setup shared by the commands.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/moukito/SON-project/afc"
	"github.com/moukito/SON-project/dsp/adaptive"
	"github.com/moukito/SON-project/dsp/core"
	"github.com/moukito/SON-project/dsp/feedback"
	"github.com/moukito/SON-project/dsp/filter/bank"
	"github.com/moukito/SON-project/dsp/filter/notch"
)

// Flags are the canceller settings exposed on the command line.
type Flags struct {
	SampleRate float64
	BlockSize  int
	Order      int
	StepSize   float64
	Variant    string
	Mode       string
	Gain       float64
	Frequency  float64
	Window     int
	FFT        bool
	PoleRadius bool
	Track      float64
	NoNotch    bool
	NoAdaptive bool
	LogLevel   string
	LogJSON    bool
}

// Register adds the canceller flags to fs. The sample rate flag is only
// added when withRate is set; file input carries its own rate.
func Register(fs *flag.FlagSet, withRate bool) *Flags {
	f := &Flags{SampleRate: core.DefaultSampleRate}
	if withRate {
		fs.Float64Var(&f.SampleRate, "rate", core.DefaultSampleRate, "sample rate in Hz")
	}
	fs.IntVar(&f.BlockSize, "block", core.DefaultBlockSize, "block size in samples")
	fs.IntVar(&f.Order, "order", afc.DefaultOrder, "adaptive predictor order")
	fs.Float64Var(&f.StepSize, "mu", afc.DefaultStepSize, "adaptive predictor step size")
	fs.StringVar(&f.Variant, "variant", "nlms", "predictor variant: lms, nlms, adaptive, kalman")
	fs.StringVar(&f.Mode, "mode", afc.Adaptive.String(), "combination mode: notch-first, lms-first, parallel, adaptive")
	fs.Float64Var(&f.Gain, "gain", afc.DefaultGain, "output gain")
	fs.Float64Var(&f.Frequency, "freq", afc.DefaultInitialFrequency, "initial notch frequency in Hz")
	fs.IntVar(&f.Window, "window", feedback.DefaultBufferSize, "detector window in samples")
	fs.BoolVar(&f.FFT, "fft", false, "use the FFT autocorrelation backend")
	fs.BoolVar(&f.PoleRadius, "pole-radius", false, "design notches from a pole radius instead of Q")
	fs.Float64Var(&f.Track, "track", 0, "glide notches toward detections at this rate per analysis (0 re-tunes outright)")
	fs.BoolVar(&f.NoNotch, "no-notch", false, "start with the notch stage disabled")
	fs.BoolVar(&f.NoAdaptive, "no-lms", false, "start with the adaptive stage disabled")
	fs.StringVar(&f.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&f.LogJSON, "log-json", false, "log as JSON")
	return f
}

// PredictorOptions maps a variant name onto predictor options.
func PredictorOptions(variant string, mu float64) ([]adaptive.Option, error) {
	switch variant {
	case "lms":
		return nil, nil
	case "nlms":
		return []adaptive.Option{adaptive.WithNormalization(0)}, nil
	case "adaptive":
		return []adaptive.Option{
			adaptive.WithAdaptiveStepSize(mu/10, mu),
			adaptive.WithLeakage(adaptive.DefaultLeakageMin, adaptive.DefaultLeakageMax),
		}, nil
	case "kalman":
		return []adaptive.Option{
			adaptive.WithDynamicNoise(adaptive.DefaultNoiseWindow),
			adaptive.WithAdaptiveStepSize(mu/10, mu),
		}, nil
	}
	return nil, fmt.Errorf("unknown predictor variant %q", variant)
}

// Options converts the flags into canceller options. sampleRate overrides
// the flag value when positive.
func (f *Flags) Options(sampleRate float64, logger logrus.FieldLogger) ([]afc.Option, error) {
	mode, err := afc.ParseMode(f.Mode)
	if err != nil {
		return nil, err
	}
	popts, err := PredictorOptions(f.Variant, f.StepSize)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		sampleRate = f.SampleRate
	}

	opts := []afc.Option{
		afc.WithProcessorOptions(core.WithSampleRate(sampleRate), core.WithBlockSize(f.BlockSize)),
		afc.WithOrder(f.Order),
		afc.WithStepSize(f.StepSize),
		afc.WithPredictorOptions(popts...),
		afc.WithMode(mode),
		afc.WithGain(f.Gain),
		afc.WithInitialFrequency(f.Frequency),
		afc.WithDetectorOptions(feedback.WithBufferSize(f.Window)),
		afc.WithLogger(logger),
	}
	if f.FFT {
		opts = append(opts, afc.WithDetectorOptions(feedback.WithFFT()))
	}
	if f.Track > 0 {
		opts = append(opts, afc.WithTracking(f.Track))
	}
	if f.PoleRadius {
		opts = append(opts, afc.WithBankOptions(bank.WithNotchOptions(notch.WithPoleRadiusDesign())))
	}
	return opts, nil
}

// NewCanceller builds a canceller from the flags and applies the stage
// switches.
func (f *Flags) NewCanceller(sampleRate float64, logger logrus.FieldLogger) (*afc.Canceller, error) {
	opts, err := f.Options(sampleRate, logger)
	if err != nil {
		return nil, err
	}
	c, err := afc.New(opts...)
	if err != nil {
		return nil, err
	}
	if f.NoNotch {
		c.SetNotchEnabled(false)
	}
	if f.NoAdaptive {
		c.SetAdaptiveEnabled(false)
	}
	return c, nil
}

// NewLogger returns a logger writing to stderr at the given level.
func NewLogger(level string, json bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}
