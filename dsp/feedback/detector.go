package feedback

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/moukito/SON-project/dsp/core"
)

// Peak is one feedback candidate.
type Peak struct {
	Frequency float64
	Magnitude float64
}

// Detector finds periodic components in a sliding window of samples.
type Detector struct {
	sampleRate float64
	cfg        config

	buf     []float64
	pos     int
	acf     []float64
	scratch []float64
	fft     *fftAutocorrelator

	peaks   [MaxPeaks]Peak
	freqs   [MaxPeaks]float64
	count   int
	pending [MaxPeaks]Peak

	energy   float64
	analyses int
}

// New returns a detector for the given sample rate.
func New(sampleRate float64, opts ...Option) (*Detector, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.scanDivisor > cfg.bufferSize/2 {
		cfg.scanDivisor = cfg.bufferSize / 2
	}

	d := &Detector{
		sampleRate: sampleRate,
		cfg:        cfg,
		buf:        make([]float64, cfg.bufferSize),
		acf:        make([]float64, cfg.bufferSize/2),
		scratch:    make([]float64, cfg.bufferSize),
	}

	if cfg.useFFT {
		fft, err := newFFTAutocorrelator(cfg.bufferSize)
		if err != nil {
			return nil, fmt.Errorf("feedback: %w", err)
		}
		d.fft = fft
	}

	return d, nil
}

// AddSample appends x to the window. When the write index wraps the
// window is analysed and AddSample reports true.
func (d *Detector) AddSample(x float64) bool {
	d.buf[d.pos] = x
	d.pos++
	if d.pos < len(d.buf) {
		return false
	}
	d.pos = 0
	d.analyze()
	return true
}

// AddBlock appends every sample of buf and returns how many analyses ran.
func (d *Detector) AddBlock(buf []float64) int {
	n := 0
	for _, x := range buf {
		if d.AddSample(x) {
			n++
		}
	}
	return n
}

func (d *Detector) analyze() {
	n := len(d.buf)

	vecmath.MulBlock(d.scratch, d.buf, d.buf)
	var sum float64
	for _, v := range d.scratch {
		sum += v
	}
	d.energy = sum / float64(n)

	if d.fft != nil {
		d.fft.compute(d.acf, d.buf)
	} else {
		d.autocorrelate()
	}

	found := d.findPeaks()

	d.peaks = d.pending
	d.count = found
	for i := range found {
		d.freqs[i] = d.peaks[i].Frequency
	}
	d.analyses++
}

// autocorrelate fills acf with the unbiased estimate Σ x[i]x[i+lag]/(B-lag).
func (d *Detector) autocorrelate() {
	n := len(d.buf)
	for lag := range d.acf {
		m := n - lag
		prod := d.scratch[:m]
		vecmath.MulBlock(prod, d.buf[:m], d.buf[lag:])
		var sum float64
		for _, v := range prod {
			sum += v
		}
		d.acf[lag] = sum / float64(m)
	}
}

// findPeaks ranks local maxima into pending and returns their count.
func (d *Detector) findPeaks() int {
	r0 := d.acf[0]
	if !(r0 > 0) {
		return 0
	}
	floor := d.cfg.threshold * r0

	lo := max(len(d.buf)/d.cfg.scanDivisor, 1)
	hi := len(d.acf) - 1
	limit := d.cfg.maxPeaks
	count := 0

	for lag := lo; lag < hi; lag++ {
		v := d.acf[lag]
		if v <= d.acf[lag-1] || v <= d.acf[lag+1] || v <= floor {
			continue
		}
		f := d.sampleRate / float64(lag)
		if f < d.cfg.minFreq || f > d.cfg.maxFreq {
			continue
		}

		// Insert into the descending list, dropping the weakest.
		i := count
		if i == limit {
			if v <= d.pending[limit-1].Magnitude {
				continue
			}
			i = limit - 1
		} else {
			count++
		}
		for i > 0 && d.pending[i-1].Magnitude < v {
			d.pending[i] = d.pending[i-1]
			i--
		}
		d.pending[i] = Peak{Frequency: f, Magnitude: v}
	}

	return count
}

// Frequencies returns the latest candidate frequencies, strongest first.
// The slice aliases internal storage and is valid until the next analysis.
func (d *Detector) Frequencies() []float64 { return d.freqs[:d.count] }

// Peaks returns a copy of the latest candidates.
func (d *Detector) Peaks() []Peak {
	return append([]Peak(nil), d.peaks[:d.count]...)
}

// Energy returns the mean square of the window at the last analysis.
func (d *Detector) Energy() float64 { return d.energy }

// Analyses returns the number of completed analyses since construction
// or Reset.
func (d *Detector) Analyses() int { return d.analyses }

// BufferSize returns the window length B.
func (d *Detector) BufferSize() int { return len(d.buf) }

// SampleRate returns the sample rate in Hz.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// UsesFFT reports whether the FFT backend is selected.
func (d *Detector) UsesFFT() bool { return d.fft != nil }

// Reset clears the window, the candidate list and the statistics.
func (d *Detector) Reset() {
	clear(d.buf)
	clear(d.acf)
	d.pos = 0
	d.count = 0
	d.energy = 0
	d.analyses = 0
}
