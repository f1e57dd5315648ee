package adaptive

import (
	"errors"
	"math"
	"testing"

	"github.com/moukito/SON-project/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		order int
		mu    float64
		want  error
	}{
		{"zero order", 0, 0.01, ErrInvalidOrder},
		{"negative order", -4, 0.01, ErrInvalidOrder},
		{"zero mu", 8, 0, ErrInvalidStepSize},
		{"negative mu", 8, -0.1, ErrInvalidStepSize},
		{"nan mu", 8, math.NaN(), ErrInvalidStepSize},
		{"inf mu", 8, math.Inf(1), ErrInvalidStepSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.order, tt.mu)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New(%d, %v) err = %v, want %v", tt.order, tt.mu, err, tt.want)
			}
		})
	}

	p, err := New(64, 0.001)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Order() != 64 || p.StepSize() != 0.001 {
		t.Fatalf("order=%d mu=%v", p.Order(), p.StepSize())
	}
}

func TestFirstTickPassesInputThrough(t *testing.T) {
	p, err := New(16, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Tick(0.25); got != 0.25 {
		t.Fatalf("first error = %v, want 0.25", got)
	}
}

func TestLMSConvergesOnNoisyTone(t *testing.T) {
	const (
		window = 100
		floor  = 1e-3
	)

	tests := []struct {
		name string
		mu   float64
		opts []Option
	}{
		{"lms", 0.01, nil},
		{"nlms", 0.1, []Option{WithNormalization(0)}},
		{"adaptive", 0.01, []Option{WithAdaptiveStepSize(0.002, 0.02)}},
		{"kalman", 0.01, []Option{WithKalmanVariance(1e-5, 1e-2), WithAdaptiveStepSize(0.002, 0.02)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(32, tt.mu, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}

			buf := testutil.Howl(1000, 16000, 0.5, 0.01, 11, 16000)
			p.ProcessBlock(buf)
			testutil.RequireFinite(t, buf)

			// Windowed error energy over the first 800 ticks falls until it
			// reaches the noise floor.
			prev := testutil.MeanSquare(buf, 0, window)
			for start := window; start < 8*window; start += window {
				cur := testutil.MeanSquare(buf, start, start+window)
				if cur > prev && cur > floor {
					t.Fatalf("error energy rose from %g to %g at tick %d", prev, cur, start)
				}
				prev = cur
			}

			early := testutil.MeanSquare(buf, 0, window)
			late := testutil.MeanSquare(buf, len(buf)-2000, len(buf))
			if late > 0.1*early {
				t.Fatalf("error energy early=%g late=%g, want at least 10 dB reduction", early, late)
			}
		})
	}
}

func TestDivergenceClearsWeights(t *testing.T) {
	p, err := New(32, 1)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicSine(1000, 48000, 0.9, 20000)
	resets := 0
	for i, x := range in {
		e := p.Tick(x)
		if math.IsNaN(e) || math.Abs(e) > DivergenceLimit+1 {
			t.Fatalf("tick %d: error %v escaped the divergence limit", i, e)
		}
		if e == x && i > 0 {
			resets++
		}
	}
	if resets == 0 {
		t.Fatal("plain LMS at mu=1 never diverged")
	}
}

func TestNormalizedPowerTracksHistory(t *testing.T) {
	const order = 16
	p, err := New(order, 0.05, WithNormalization(1e-6))
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicNoise(7, 0.8, 1000)
	for _, x := range in {
		p.Tick(x)
	}

	var want float64
	for _, x := range in[len(in)-order:] {
		want += x * x
	}
	if math.Abs(p.Power()-want) > 1e-9 {
		t.Fatalf("power = %v, want %v", p.Power(), want)
	}
	if p.Power() < 0 {
		t.Fatal("negative power")
	}
	if got, want := p.EffectiveStepSize(), 0.05/(p.Power()+1e-6); math.Abs(got-want) > 1e-9*want {
		t.Fatalf("effective mu = %v, want %v", got, want)
	}
}

func TestZeroStepSizeFreezesWeights(t *testing.T) {
	variants := map[string][]Option{
		"lms":      nil,
		"nlms":     {WithNormalization(0)},
		"adaptive": {WithAdaptiveStepSize(0.001, 0.01)},
		"kalman":   {WithDynamicNoise(20), WithAdaptiveStepSize(0.001, 0.01)},
	}

	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			const order = 8
			p, err := New(order, 0.01, opts...)
			if err != nil {
				t.Fatal(err)
			}

			train := testutil.Howl(500, 8000, 0.5, 0.05, 3, 2000)
			p.ProcessBlock(train)

			if err := p.SetStepSize(0); err != nil {
				t.Fatal(err)
			}
			frozen := p.Weights()

			// History after training, oldest first.
			in := testutil.Howl(500, 8000, 0.5, 0.05, 3, 2000)
			hist := append([]float64(nil), in[len(in)-order:]...)

			input := testutil.DeterministicNoise(11, 0.3, 200)
			for n, x := range input {
				want := x - frozenEstimate(frozen, hist)
				got := p.Tick(x)
				if math.Abs(got-want) > 1e-12 {
					t.Fatalf("sample %d: got %v want %v", n, got, want)
				}
				hist = append(hist[1:], x)
			}

			after := p.Weights()
			for i := range frozen {
				if after[i] != frozen[i] {
					t.Fatalf("weight %d moved: %v -> %v", i, frozen[i], after[i])
				}
			}
			if p.EffectiveStepSize() != 0 {
				t.Fatalf("effective mu = %v, want 0", p.EffectiveStepSize())
			}
		})
	}
}

// frozenEstimate mirrors the tap layout of Tick: weight 0 pairs with the
// oldest history sample, weight i (i >= 1) with the sample i ticks ago.
func frozenEstimate(w, hist []float64) float64 {
	order := len(w)
	est := w[0] * hist[0]
	for i := 1; i < order; i++ {
		est += w[i] * hist[order-i]
	}
	return est
}

func TestSetStepSizeRejectsInvalid(t *testing.T) {
	p, err := New(4, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	for _, mu := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := p.SetStepSize(mu); !errors.Is(err, ErrInvalidStepSize) {
			t.Fatalf("SetStepSize(%v) err = %v", mu, err)
		}
	}
	if p.StepSize() != 0.01 {
		t.Fatalf("step size changed to %v", p.StepSize())
	}
}

func TestAdaptiveStepSizeInterpolatesSNR(t *testing.T) {
	const muMin, muMax = 0.001, 0.01
	p, err := New(16, 0.005, WithAdaptiveStepSize(muMin, muMax))
	if err != nil {
		t.Fatal(err)
	}

	for _, x := range testutil.Howl(700, 16000, 0.5, 0.1, 5, 4000) {
		p.Tick(x)

		mu := p.EffectiveStepSize()
		if mu < muMin || mu > muMax {
			t.Fatalf("effective mu %v outside [%v, %v]", mu, muMin, muMax)
		}

		snr := p.SNR()
		var want float64
		switch {
		case snr <= DefaultSNRLow:
			want = muMin
		case snr >= DefaultSNRHigh:
			want = muMax
		default:
			want = muMin + (snr-DefaultSNRLow)/(DefaultSNRHigh-DefaultSNRLow)*(muMax-muMin)
		}
		if math.Abs(mu-want) > 1e-12 {
			t.Fatalf("snr=%v mu=%v want %v", snr, mu, want)
		}
	}
}

func TestFixedLeakageDecaysWeights(t *testing.T) {
	p, err := New(8, 0.01, WithFixedLeakage(0.9))
	if err != nil {
		t.Fatal(err)
	}
	p.ProcessBlock(testutil.DeterministicSine(440, 8000, 0.5, 500))

	for range 300 {
		p.Tick(0)
	}
	for i, w := range p.Weights() {
		if math.Abs(w) > 1e-6 {
			t.Fatalf("weight %d = %v, want decayed", i, w)
		}
	}
	if p.Leakage() != 0.9 {
		t.Fatalf("leakage = %v", p.Leakage())
	}
}

func TestAdaptiveLeakageStaysInRange(t *testing.T) {
	p, err := New(8, 0.01, WithLeakage(0.95, 0.999))
	if err != nil {
		t.Fatal(err)
	}
	if p.Estimator() == nil {
		t.Fatal("adaptive leakage must install a variance estimator")
	}

	if p.Leakage() != 0.999 {
		t.Fatalf("initial leakage = %v, want max for zero error", p.Leakage())
	}

	saturated := 0
	for _, x := range testutil.DeterministicNoise(1, 1, 2000) {
		p.Tick(x)
		l := p.Leakage()
		if l < 0.95 || l > 0.999 {
			t.Fatalf("leakage %v outside [0.95, 0.999]", l)
		}
		if l == 0.95 {
			saturated++
		}
	}
	// White noise cannot be predicted, so error variance sits above the
	// band and leakage mostly saturates at the fast-forgetting end.
	if saturated < 1000 {
		t.Fatalf("leakage saturated on %d of 2000 ticks", saturated)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	p, err := New(16, 0.05, WithNormalization(0), WithDynamicNoise(10))
	if err != nil {
		t.Fatal(err)
	}
	in := testutil.Howl(900, 16000, 0.5, 0.1, 9, 300)
	first := append([]float64(nil), in...)
	p.ProcessBlock(first)

	p.Reset()
	if p.Power() != 0 {
		t.Fatalf("power after reset = %v", p.Power())
	}
	for i, w := range p.Weights() {
		if w != 0 {
			t.Fatalf("weight %d = %v after reset", i, w)
		}
	}

	second := append([]float64(nil), in...)
	p.ProcessBlock(second)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after reset: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestWeightsReturnsCopy(t *testing.T) {
	p, err := New(4, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	p.ProcessBlock([]float64{1, 0.5, -0.5, 0.25, 1})
	w := p.Weights()
	w[0] = 123
	if p.Weights()[0] == 123 {
		t.Fatal("Weights exposes internal storage")
	}
}

func BenchmarkPredictorTick(b *testing.B) {
	p, err := New(64, 0.001, WithNormalization(0))
	if err != nil {
		b.Fatal(err)
	}
	in := testutil.Howl(2750, 44100, 0.5, 0.05, 1, 128)
	buf := make([]float64, len(in))
	b.ReportAllocs()
	for b.Loop() {
		copy(buf, in)
		p.ProcessBlock(buf)
	}
}
