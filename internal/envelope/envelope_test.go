package envelope

import (
	"math"
	"testing"
)

func TestSampleZeroBeforePress(t *testing.T) {
	var e Envelope
	e.Params = DefaultParams()
	for _, at := range []float64{-10, 0, 0.5, 100} {
		if got := e.Sample(at); got != 0 {
			t.Fatalf("unpressed envelope at %v: got %v, want 0", at, got)
		}
	}
	e.OnPress(5)
	if got := e.Sample(4.9); got != 0 {
		t.Fatalf("before press: got %v, want 0", got)
	}
}

func TestDegenerateStagesCollapse(t *testing.T) {
	var e Envelope
	e.Params = Params{SustainLevel: 0.8}
	e.OnPress(1)
	if got := e.Sample(1); got != 0.8 {
		t.Fatalf("all-zero stages at press: got %v, want 0.8", got)
	}
	if got := e.Sample(3); got != 0.8 {
		t.Fatalf("all-zero stages later: got %v, want 0.8", got)
	}
}

func TestStageWalk(t *testing.T) {
	var e Envelope
	e.Params = Params{Delay: 1, Attack: 2, Hold: 1, Decay: 2, SustainLevel: 0.5}
	e.OnPress(0)
	cases := []struct {
		at   float64
		want float32
	}{
		{0.5, 0},   // delay
		{1, 0},     // attack start
		{2, 0.5},   // mid attack
		{3, 1},     // attack end / hold
		{3.5, 1},   // hold
		{5, 0.75},  // mid decay
		{6, 0.5},   // decay end
		{100, 0.5}, // sustain forever without release
	}
	for _, tc := range cases {
		if got := e.Sample(tc.at); math.Abs(float64(got-tc.want)) > 1e-6 {
			t.Errorf("sample(%v) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestPressIdempotent(t *testing.T) {
	var a, b Envelope
	a.Params = DefaultParams()
	b.Params = DefaultParams()
	a.OnPress(1)
	b.OnPress(1)
	b.OnPress(1)
	for _, at := range []float64{1, 1.05, 1.5, 3} {
		if a.Sample(at) != b.Sample(at) {
			t.Fatalf("double press diverges at %v", at)
		}
	}
}

func TestPressClearsRelease(t *testing.T) {
	var e Envelope
	e.Params = Params{Attack: 0.1, SustainLevel: 1, Release: 0.5}
	e.OnPress(0)
	e.OnRelease(1)
	e.OnPress(2)
	if got := e.Sample(4); got != 1 {
		t.Fatalf("re-pressed envelope should sustain, got %v", got)
	}
	if e.AfterSampling(10) {
		t.Fatal("AfterSampling true with release cleared")
	}
}

func TestReleaseRampsToZero(t *testing.T) {
	var e Envelope
	e.Params = Params{Attack: 1, Decay: 1, SustainLevel: 0.5, Release: 2}
	e.OnPress(0)
	e.OnRelease(5)

	if got := e.Sample(5); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("at release: got %v, want 0.5", got)
	}
	prev := e.Sample(5)
	for at := 5.25; at < 7; at += 0.25 {
		got := e.Sample(at)
		if got > prev {
			t.Fatalf("release not monotone at %v: %v > %v", at, got, prev)
		}
		prev = got
	}
	if got := e.Sample(7); got != 0 {
		t.Fatalf("past release end: got %v, want 0", got)
	}
	if !e.AfterSampling(7) {
		t.Fatal("AfterSampling false past release end")
	}
	if e.AfterSampling(6.9) {
		t.Fatal("AfterSampling true inside release ramp")
	}
}

func TestReleaseBeforeSustain(t *testing.T) {
	// Releasing mid-attack ramps down from the attack value, not from
	// the sustain level.
	var e Envelope
	e.Params = Params{Attack: 2, SustainLevel: 0.9, Release: 1}
	e.OnPress(0)
	e.OnRelease(1) // attack at 0.5

	if got := e.Sample(1); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("level at release: got %v, want 0.5", got)
	}
	if got := e.Sample(1.5); math.Abs(float64(got)-0.25) > 1e-6 {
		t.Fatalf("mid release: got %v, want 0.25", got)
	}
}

func TestZeroReleaseDuration(t *testing.T) {
	var e Envelope
	e.Params = Params{SustainLevel: 1}
	e.OnPress(0)
	e.OnRelease(1)
	if got := e.Sample(1); got != 0 {
		t.Fatalf("zero-length release at release time: got %v, want 0", got)
	}
	if !e.AfterSampling(1) {
		t.Fatal("AfterSampling false with zero-length release")
	}
}

func TestReset(t *testing.T) {
	var e Envelope
	e.Params = Params{SustainLevel: 1}
	e.OnPress(0)
	e.Reset()
	if e.Pressed() {
		t.Fatal("pressed after reset")
	}
	if got := e.Sample(1); got != 0 {
		t.Fatalf("sample after reset: got %v, want 0", got)
	}
}
