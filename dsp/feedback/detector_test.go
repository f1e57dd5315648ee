package feedback

import (
	"math"
	"testing"

	"github.com/moukito/SON-project/internal/testutil"
)

func TestNewRejectsInvalidSampleRate(t *testing.T) {
	for _, fs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(fs); err == nil {
			t.Fatalf("New(%v) succeeded", fs)
		}
	}
}

func TestDefaults(t *testing.T) {
	d, err := New(44100)
	if err != nil {
		t.Fatal(err)
	}
	if d.BufferSize() != DefaultBufferSize {
		t.Fatalf("buffer size = %d", d.BufferSize())
	}
	if d.UsesFFT() {
		t.Fatal("direct backend expected by default")
	}
	if len(d.Frequencies()) != 0 {
		t.Fatal("fresh detector reports frequencies")
	}
	if _, err := New(44100, WithBufferSize(4)); err != nil {
		t.Fatal(err)
	}
}

func TestAnalysisRunsOnlyOnWrap(t *testing.T) {
	d, err := New(48000, WithBufferSize(64))
	if err != nil {
		t.Fatal(err)
	}
	in := testutil.DeterministicSine(3000, 48000, 0.5, 64*3+10)
	for i, x := range in {
		ran := d.AddSample(x)
		want := (i+1)%64 == 0
		if ran != want {
			t.Fatalf("sample %d: analysis=%v want %v", i, ran, want)
		}
	}
	if d.Analyses() != 3 {
		t.Fatalf("analyses = %d, want 3", d.Analyses())
	}
}

func TestDetectsSingleTone(t *testing.T) {
	for _, useFFT := range []bool{false, true} {
		var opts []Option
		if useFFT {
			opts = append(opts, WithFFT())
		}
		d, err := New(48000, opts...)
		if err != nil {
			t.Fatal(err)
		}

		in := testutil.DeterministicSine(300, 48000, 0.5, 512)
		if n := d.AddBlock(in); n != 1 {
			t.Fatalf("fft=%v: analyses = %d, want 1", useFFT, n)
		}

		freqs := d.Frequencies()
		if len(freqs) != 1 {
			t.Fatalf("fft=%v: frequencies = %v, want one", useFFT, freqs)
		}
		if math.Abs(freqs[0]-300) > 1e-9 {
			t.Fatalf("fft=%v: frequency = %v, want 300", useFFT, freqs[0])
		}

		// 0.5² / 2
		if math.Abs(d.Energy()-0.125) > 0.005 {
			t.Fatalf("fft=%v: energy = %v, want ~0.125", useFFT, d.Energy())
		}
	}
}

func TestFFTMatchesDirect(t *testing.T) {
	direct, err := New(48000, WithBufferSize(256))
	if err != nil {
		t.Fatal(err)
	}
	viaFFT, err := New(48000, WithBufferSize(256), WithFFT())
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.Howl(1200, 48000, 0.4, 0.2, 42, 256*4)
	for i := 0; i < len(in); i += 256 {
		direct.AddBlock(in[i : i+256])
		viaFFT.AddBlock(in[i : i+256])

		for lag := range direct.acf {
			if math.Abs(direct.acf[lag]-viaFFT.acf[lag]) > 1e-9 {
				t.Fatalf("block %d lag %d: direct=%v fft=%v", i/256, lag, direct.acf[lag], viaFFT.acf[lag])
			}
		}

		a, b := direct.Peaks(), viaFFT.Peaks()
		if len(a) != len(b) {
			t.Fatalf("block %d: %d vs %d peaks", i/256, len(a), len(b))
		}
		for k := range a {
			if a[k].Frequency != b[k].Frequency || math.Abs(a[k].Magnitude-b[k].Magnitude) > 1e-9 {
				t.Fatalf("block %d peak %d: %+v vs %+v", i/256, k, a[k], b[k])
			}
		}
	}
}

func TestPeaksRankedAndBounded(t *testing.T) {
	d, err := New(48000, WithBufferSize(1024), WithScanDivisor(32), WithThreshold(0))
	if err != nil {
		t.Fatal(err)
	}
	d.AddBlock(testutil.DeterministicNoise(5, 1, 1024))

	peaks := d.Peaks()
	if len(peaks) > MaxPeaks {
		t.Fatalf("%d peaks exceed MaxPeaks", len(peaks))
	}
	for i := 1; i < len(peaks); i++ {
		if peaks[i].Magnitude > peaks[i-1].Magnitude {
			t.Fatalf("peaks not descending: %+v", peaks)
		}
	}
	for _, p := range peaks {
		if p.Frequency < DefaultMinFrequency || p.Frequency > DefaultMaxFrequency {
			t.Fatalf("frequency %v outside range", p.Frequency)
		}
	}
}

func TestMaxPeaksOption(t *testing.T) {
	d, err := New(48000, WithBufferSize(1024), WithScanDivisor(32), WithThreshold(0), WithMaxPeaks(2))
	if err != nil {
		t.Fatal(err)
	}
	d.AddBlock(testutil.DeterministicNoise(5, 1, 1024))
	if len(d.Frequencies()) > 2 {
		t.Fatalf("frequencies = %v, want at most 2", d.Frequencies())
	}
}

func TestFrequencyRangeFilters(t *testing.T) {
	d, err := New(48000, WithFrequencyRange(500, 8000))
	if err != nil {
		t.Fatal(err)
	}
	d.AddBlock(testutil.DeterministicSine(300, 48000, 0.5, 512))
	if len(d.Frequencies()) != 0 {
		t.Fatalf("frequencies = %v, want none below 500 Hz", d.Frequencies())
	}
}

func TestSilenceYieldsNoCandidates(t *testing.T) {
	d, err := New(44100)
	if err != nil {
		t.Fatal(err)
	}
	d.AddBlock(make([]float64, 512))
	if d.Analyses() != 1 || len(d.Frequencies()) != 0 || d.Energy() != 0 {
		t.Fatalf("analyses=%d freqs=%v energy=%v", d.Analyses(), d.Frequencies(), d.Energy())
	}
}

func TestReset(t *testing.T) {
	d, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}
	d.AddBlock(testutil.DeterministicSine(300, 48000, 0.5, 600))
	d.Reset()
	if d.Analyses() != 0 || len(d.Frequencies()) != 0 || d.Energy() != 0 {
		t.Fatal("reset did not clear detector state")
	}
	// The partially filled window was discarded.
	for i := range 511 {
		if d.AddSample(0.1) {
			t.Fatalf("analysis after %d samples", i+1)
		}
	}
	if !d.AddSample(0.1) {
		t.Fatal("no analysis after a full window")
	}
}

func BenchmarkDetectorDirect(b *testing.B) {
	benchmarkDetector(b)
}

func BenchmarkDetectorFFT(b *testing.B) {
	benchmarkDetector(b, WithFFT())
}

func benchmarkDetector(b *testing.B, opts ...Option) {
	d, err := New(44100, opts...)
	if err != nil {
		b.Fatal(err)
	}
	in := testutil.Howl(2750, 44100, 0.5, 0.05, 1, 512)
	b.ReportAllocs()
	for b.Loop() {
		d.AddBlock(in)
	}
}
