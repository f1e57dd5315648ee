package afc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/moukito/SON-project/dsp/adaptive"
	"github.com/moukito/SON-project/dsp/core"
	"github.com/moukito/SON-project/dsp/feedback"
	"github.com/moukito/SON-project/dsp/filter/bank"
	"github.com/moukito/SON-project/dsp/pcm"
)

// Canceller is the per-sample entry point of the feedback canceller.
//
// It is not safe for concurrent use.
type Canceller struct {
	sampleRate float64
	blockSize  int

	detector  *feedback.Detector
	bank      *bank.Bank
	predictor *adaptive.Predictor
	orch      *Orchestrator

	gain    float64
	muted   bool
	bypass  bool
	retunes int

	scratch []float64
	logger  logrus.FieldLogger
}

// New builds a canceller. All buffers are allocated here.
func New(opts ...Option) (*Canceller, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	fs := cfg.processor.SampleRate
	if err := core.ValidateSampleRate(fs); err != nil {
		return nil, fmt.Errorf("afc: %w", err)
	}

	det, err := feedback.New(fs, cfg.detectorOpts...)
	if err != nil {
		return nil, fmt.Errorf("afc: detector: %w", err)
	}

	bankOpts := append([]bank.Option{bank.WithInitialFrequency(cfg.initialFreq)}, cfg.bankOpts...)
	b, err := bank.New(fs, bankOpts...)
	if err != nil {
		return nil, fmt.Errorf("afc: %w", err)
	}

	p, err := adaptive.New(cfg.order, cfg.stepSize, cfg.predictor...)
	if err != nil {
		return nil, fmt.Errorf("afc: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = logrus.WithField("component", "canceller")
	}

	c := &Canceller{
		sampleRate: fs,
		blockSize:  cfg.processor.BlockSize,
		detector:   det,
		bank:       b,
		predictor:  p,
		orch:       NewOrchestrator(b, p, cfg.mode),
		gain:       clampGain(cfg.gain, DefaultGain),
		scratch:    make([]float64, cfg.processor.BlockSize),
		logger:     logger,
	}

	c.logger.WithFields(logrus.Fields{
		"sample_rate":  fs,
		"block_size":   c.blockSize,
		"order":        cfg.order,
		"step_size":    cfg.stepSize,
		"initial_freq": cfg.initialFreq,
		"window":       det.BufferSize(),
		"mode":         cfg.mode.String(),
	}).Info("Canceller initialized")

	return c, nil
}

func clampGain(g, fallback float64) float64 {
	if math.IsNaN(g) {
		return fallback
	}
	return core.Clamp(g, 0, MaxGain)
}

// ProcessSample returns the cancelled output for one input sample.
func (c *Canceller) ProcessSample(x float64) float64 {
	if !core.IsFinite(x) {
		x = 0
	}
	if c.detector.AddSample(x) {
		c.retune()
	}

	y := x
	if !c.bypass {
		y = c.orch.ProcessSample(x) * c.gain
	}
	if c.muted {
		return 0
	}
	return clampOutput(y)
}

// clampOutput limits y to [-1, 1] and maps NaN and ±Inf to silence.
func clampOutput(y float64) float64 {
	if !core.IsFinite(y) {
		return 0
	}
	return core.Clamp(y, -1, 1)
}

// ProcessBlock processes min(len(dst), len(src)) samples and returns the
// count. dst and src may be the same slice.
func (c *Canceller) ProcessBlock(dst, src []float64) int {
	n := min(len(dst), len(src))
	dst, src = dst[:n], src[:n]

	for i, x := range src {
		if !core.IsFinite(x) {
			x = 0
		}
		if c.detector.AddSample(x) {
			c.retune()
		}
		if c.bypass {
			dst[i] = x
		} else {
			dst[i] = c.orch.ProcessSample(x)
		}
	}

	if c.muted {
		clear(dst)
		return n
	}
	if !c.bypass {
		vecmath.ScaleBlock(dst, dst, c.gain)
	}
	for i, y := range dst {
		dst[i] = clampOutput(y)
	}

	return n
}

// ProcessInt16 converts src to float, processes it in chunks of the block
// size and writes 16-bit output to dst. It returns the sample count.
func (c *Canceller) ProcessInt16(dst, src []int16) int {
	n := min(len(dst), len(src))
	for off := 0; off < n; {
		m := pcm.ToFloat(c.scratch, src[off:n])
		buf := c.scratch[:m]
		c.ProcessBlock(buf, buf)
		pcm.FromFloat(dst[off:n], buf)
		off += m
	}
	return n
}

func (c *Canceller) retune() {
	if c.bank.Tracking() > 0 {
		removed, out := c.orch.Activity()
		c.orch.ClearActivity()
		if removed <= TrackingRemovedLevel && out <= TrackingOutputLevel {
			return
		}
	}
	c.orch.Retune(c.detector.Frequencies())
	c.retunes++
}

// SetGain sets the output gain, clamped to [0, MaxGain]. NaN is ignored.
func (c *Canceller) SetGain(g float64) {
	c.gain = clampGain(g, c.gain)
	if c.logger != nil {
		c.logger.WithField("gain", c.gain).Info("Gain updated")
	}
}

// Gain returns the output gain.
func (c *Canceller) Gain() float64 { return c.gain }

// SetBypass switches literal pass-through on or off.
func (c *Canceller) SetBypass(on bool) {
	c.bypass = on
	if c.logger != nil {
		c.logger.WithField("bypass", on).Info("Bypass updated")
	}
}

// ToggleBypass flips bypass and returns the new state.
func (c *Canceller) ToggleBypass() bool {
	c.SetBypass(!c.bypass)
	return c.bypass
}

// Bypass reports whether input is passed through untouched.
func (c *Canceller) Bypass() bool { return c.bypass }

// SetMute forces the output to zero while on.
func (c *Canceller) SetMute(on bool) {
	c.muted = on
	if c.logger != nil {
		c.logger.WithField("mute", on).Info("Mute updated")
	}
}

// Muted reports whether output is forced to zero.
func (c *Canceller) Muted() bool { return c.muted }

// SetNotchEnabled enables or disables the notch stage.
func (c *Canceller) SetNotchEnabled(on bool) {
	c.orch.SetNotchEnabled(on)
	if c.logger != nil {
		c.logger.WithField("notch", on).Info("Notch stage updated")
	}
}

// SetAdaptiveEnabled enables or disables the adaptive stage.
func (c *Canceller) SetAdaptiveEnabled(on bool) {
	c.orch.SetAdaptiveEnabled(on)
	if c.logger != nil {
		c.logger.WithField("adaptive", on).Info("Adaptive stage updated")
	}
}

// SetMode changes the combination mode.
func (c *Canceller) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	c.orch.SetMode(m)
	if c.logger != nil {
		c.logger.WithField("mode", m.String()).Info("Mode updated")
	}
	return nil
}

// SetStepSize changes the predictor base step size.
func (c *Canceller) SetStepSize(mu float64) error {
	if err := c.predictor.SetStepSize(mu); err != nil {
		return fmt.Errorf("afc: %w", err)
	}
	if c.logger != nil {
		c.logger.WithField("step_size", mu).Info("Step size updated")
	}
	return nil
}

// ResetAdaptive clears the predictor history, weights and statistics.
func (c *Canceller) ResetAdaptive() {
	c.predictor.Reset()
	if c.logger != nil {
		c.logger.Info("Adaptive predictor reset")
	}
}

// Reset returns every stage to its post-construction state except the
// control settings and the bank tuning.
func (c *Canceller) Reset() {
	c.detector.Reset()
	c.orch.Reset()
	c.retunes = 0
	if c.logger != nil {
		c.logger.Info("Canceller reset")
	}
}

// SetLogger replaces the control-path logger. A nil logger silences the
// mutators, which is required when they run inside an audio callback.
func (c *Canceller) SetLogger(l logrus.FieldLogger) {
	c.logger = l
}

// SampleRate returns the sample rate in Hz.
func (c *Canceller) SampleRate() float64 { return c.sampleRate }

// BlockSize returns the conversion chunk size of ProcessInt16.
func (c *Canceller) BlockSize() int { return c.blockSize }

// Detector exposes the feedback detector.
func (c *Canceller) Detector() *feedback.Detector { return c.detector }

// Bank exposes the notch bank.
func (c *Canceller) Bank() *bank.Bank { return c.bank }

// Predictor exposes the adaptive predictor.
func (c *Canceller) Predictor() *adaptive.Predictor { return c.predictor }

// Orchestrator exposes the mode logic.
func (c *Canceller) Orchestrator() *Orchestrator { return c.orch }
