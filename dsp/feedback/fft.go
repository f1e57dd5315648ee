package feedback

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// fftAutocorrelator evaluates the linear autocorrelation as the inverse
// transform of the power spectrum. Zero padding to at least 2B keeps the
// circular wrap out of the lags of interest.
type fftAutocorrelator struct {
	plan  *algofft.Plan[complex128]
	in    []complex128
	power []complex128
	out   []complex128
}

func newFFTAutocorrelator(bufferSize int) (*fftAutocorrelator, error) {
	size := nextPowerOf2(2 * bufferSize)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create FFT plan: %w", err)
	}
	return &fftAutocorrelator{
		plan:  plan,
		in:    make([]complex128, size),
		power: make([]complex128, size),
		out:   make([]complex128, size),
	}, nil
}

// compute writes Σ x[i]x[i+lag]/(B-lag) into acf for every lag < len(acf).
func (f *fftAutocorrelator) compute(acf, x []float64) {
	for i, v := range x {
		f.in[i] = complex(v, 0)
	}
	clear(f.in[len(x):])

	if err := f.plan.Forward(f.power, f.in); err != nil {
		clear(acf)
		return
	}
	for i, c := range f.power {
		re, im := real(c), imag(c)
		f.power[i] = complex(re*re+im*im, 0)
	}
	if err := f.plan.Inverse(f.out, f.power); err != nil {
		clear(acf)
		return
	}

	n := len(x)
	for lag := range acf {
		acf[lag] = real(f.out[lag]) / float64(n-lag)
	}
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
