package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	RequireWithin(t, s, -1, 1)
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
	c := DeterministicNoise(43, 1.0, 64)
	if d, _ := MaxAbsDiff(a, c); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestTones(t *testing.T) {
	got := Tones([]float64{500, 1500}, 48000, 0.25, 256)
	a := DeterministicSine(500, 48000, 0.25, 256)
	b := DeterministicSine(1500, 48000, 0.25, 256)
	for i := range got {
		if math.Abs(got[i]-(a[i]+b[i])) > 1e-15 {
			t.Fatalf("index %d: %v != %v", i, got[i], a[i]+b[i])
		}
	}
}

func TestHowl(t *testing.T) {
	h := Howl(1000, 48000, 0.5, 0.01, 7, 512)
	s := DeterministicSine(1000, 48000, 0.5, 512)
	d, err := MaxAbsDiff(h, s)
	if err != nil {
		t.Fatal(err)
	}
	if d == 0 || d > 0.01 {
		t.Fatalf("noise deviation = %v, want (0, 0.01]", d)
	}
}

func TestDC(t *testing.T) {
	for i, v := range DC(0.5, 4) {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}
