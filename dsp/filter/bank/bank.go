package bank

import (
	"fmt"

	"github.com/moukito/SON-project/dsp/core"
	"github.com/moukito/SON-project/dsp/filter/notch"
)

// MaxNotch is the number of notch slots in every bank.
const MaxNotch = 5

const (
	defaultInitialFreq = 1000.0
	defaultInitialQ    = 10.0
	defaultMinFreq     = 100.0
	defaultMaxFreq     = 8000.0
	defaultMinQ        = 1.0
	defaultMaxQ        = 30.0
)

// Tracking bandwidth: max(TrackingMinBandwidth, TrackingBandwidthRatio·f).
const (
	TrackingMinBandwidth   = 50.0
	TrackingBandwidthRatio = 0.1
)

type bankConfig struct {
	initialFreq float64
	initialQ    float64
	minFreq     float64
	maxFreq     float64
	minQ        float64
	maxQ        float64
	capacity    int
	trackRate   float64
	notchOpts   []notch.Option
}

func defaultBankConfig() bankConfig {
	return bankConfig{
		initialFreq: defaultInitialFreq,
		initialQ:    defaultInitialQ,
		minFreq:     defaultMinFreq,
		maxFreq:     defaultMaxFreq,
		minQ:        defaultMinQ,
		maxQ:        defaultMaxQ,
		capacity:    MaxNotch,
	}
}

// Option configures a Bank.
type Option func(*bankConfig)

// WithInitialFrequency sets the centre of the single notch active before
// the first re-tune.
func WithInitialFrequency(freq float64) Option {
	return func(cfg *bankConfig) {
		if freq > 0 {
			cfg.initialFreq = freq
		}
	}
}

// WithInitialSelectivity sets the Q of the notch active before the first
// re-tune.
func WithInitialSelectivity(q float64) Option {
	return func(cfg *bankConfig) {
		if q > 0 {
			cfg.initialQ = q
		}
	}
}

// WithFrequencyRange sets the clamping range applied to detected
// frequencies. Defaults to 100–8000 Hz.
func WithFrequencyRange(lower, upper float64) Option {
	return func(cfg *bankConfig) {
		if lower > 0 && upper > lower {
			cfg.minFreq = lower
			cfg.maxFreq = upper
		}
	}
}

// WithSelectivityRange sets the Q assigned at the bottom and top of the
// frequency range. Defaults to 1–30.
func WithSelectivityRange(minQ, maxQ float64) Option {
	return func(cfg *bankConfig) {
		if minQ > 0 && maxQ >= minQ {
			cfg.minQ = minQ
			cfg.maxQ = maxQ
		}
	}
}

// WithCapacity limits the number of simultaneously active notches to
// n in [1, MaxNotch].
func WithCapacity(n int) Option {
	return func(cfg *bankConfig) {
		if n >= 1 && n <= MaxNotch {
			cfg.capacity = n
		}
	}
}

// WithTracking makes Retune glide slots that are already active toward
// their new target by rate in (0, 1] per call instead of jumping. Tracked
// slots get a bandwidth of max(50 Hz, 0.1·f). Newly activated slots still
// jump straight to their target.
func WithTracking(rate float64) Option {
	return func(cfg *bankConfig) {
		if rate > 0 && rate <= 1 {
			cfg.trackRate = rate
		}
	}
}

// WithNotchOptions forwards options to every notch slot.
func WithNotchOptions(opts ...notch.Option) Option {
	return func(cfg *bankConfig) {
		cfg.notchOpts = append(cfg.notchOpts, opts...)
	}
}

// Bank is a fixed set of notch slots with an active count.
//
// It is not safe for concurrent use.
type Bank struct {
	slots      [MaxNotch]*notch.Filter
	active     int
	sampleRate float64
	cfg        bankConfig
}

// New pre-allocates every slot at the initial tuning and activates one.
func New(sampleRate float64, opts ...Option) (*Bank, error) {
	cfg := defaultBankConfig()
	for _, o := range opts {
		o(&cfg)
	}

	b := &Bank{
		active:     1,
		sampleRate: sampleRate,
		cfg:        cfg,
	}

	for i := range b.slots {
		f, err := notch.New(cfg.initialFreq, cfg.initialQ, sampleRate, cfg.notchOpts...)
		if err != nil {
			return nil, fmt.Errorf("bank: slot %d: %w", i, err)
		}
		b.slots[i] = f
	}

	return b, nil
}

// Retune maps a ranked frequency list onto the slots and returns the new
// active count. An empty list keeps the previous tuning.
func (b *Bank) Retune(freqs []float64) int {
	if len(freqs) == 0 {
		return b.active
	}

	n := min(len(freqs), b.cfg.capacity)
	for i := range n {
		if i < b.active && b.cfg.trackRate > 0 {
			b.slots[i].Tune(b.glide(b.slots[i].Frequency(), freqs[i]))
			continue
		}
		f, q := b.Mapping(freqs[i])
		b.slots[i].Tune(f, q)
		if i >= b.active {
			// Slot was idle; drop whatever it held when last deactivated.
			b.slots[i].Reset()
		}
	}
	b.active = n

	return n
}

// Mapping returns the clamped frequency and the selectivity Retune would
// assign to freq.
func (b *Bank) Mapping(freq float64) (float64, float64) {
	lo, hi := b.cfg.minFreq, b.cfg.maxFreq
	f := core.Clamp(freq, lo, hi)
	q := b.cfg.minQ + (b.cfg.maxQ-b.cfg.minQ)*(f-lo)/(hi-lo)
	return f, q
}

// glide moves cur toward target by the tracking rate and returns the new
// centre and its tracking selectivity.
func (b *Bank) glide(cur, target float64) (float64, float64) {
	f := core.Clamp(core.Lerp(b.cfg.trackRate, 0, 1, cur, target), b.cfg.minFreq, b.cfg.maxFreq)
	bw := max(TrackingMinBandwidth, TrackingBandwidthRatio*f)
	return f, f / bw
}

// Tracking returns the glide rate, 0 when Retune jumps.
func (b *Bank) Tracking() float64 { return b.cfg.trackRate }

// SetActive sets the number of cascaded slots, clamped to [0, capacity].
func (b *Bank) SetActive(n int) {
	b.active = max(0, min(n, b.cfg.capacity))
}

// Active returns the number of cascaded slots.
func (b *Bank) Active() int { return b.active }

// Capacity returns the maximum number of active slots.
func (b *Bank) Capacity() int { return b.cfg.capacity }

// Filter returns slot i, active or not.
func (b *Bank) Filter(i int) *notch.Filter { return b.slots[i] }

// ProcessSample cascades x through the active slots in order.
func (b *Bank) ProcessSample(x float64) float64 {
	for i := range b.active {
		x = b.slots[i].ProcessSample(x)
	}
	return x
}

// ProcessBlock filters buf in place through the active slots.
func (b *Bank) ProcessBlock(buf []float64) {
	for i := range b.active {
		b.slots[i].ProcessBlock(buf)
	}
}

// Reset clears the delay state of every slot.
func (b *Bank) Reset() {
	for _, f := range b.slots {
		f.Reset()
	}
}

// ResponseDB returns the cascade magnitude response of the active slots at
// freqHz in dB.
func (b *Bank) ResponseDB(freqHz float64) float64 {
	var db float64
	for _, f := range b.slots[:b.active] {
		db += f.MagnitudeDB(freqHz)
	}
	return db
}

// Frequencies returns the centres of the active slots.
func (b *Bank) Frequencies() []float64 {
	out := make([]float64, b.active)
	for i := range out {
		out[i] = b.slots[i].Frequency()
	}
	return out
}

// Selectivities returns the Q of the active slots.
func (b *Bank) Selectivities() []float64 {
	out := make([]float64, b.active)
	for i := range out {
		out[i] = b.slots[i].Selectivity()
	}
	return out
}
