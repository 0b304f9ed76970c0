package stage

import (
	"math"
	"testing"
)

func TestClassifyBandBoundaries(t *testing.T) {
	cases := []struct {
		percent float64
		stage   int
		name    string
	}{
		{0, 0, "Awareness"},
		{10, 0, "Awareness"},
		{11, 1, "Foundational"},
		{25, 1, "Foundational"},
		{30, 1, "Foundational"},
		{31, 2, "Developing"},
		{45, 2, "Developing"},
		{50, 2, "Developing"},
		{51, 3, "Scaling"},
		{70, 3, "Scaling"},
		{71, 4, "Optimizing"},
		{90, 4, "Optimizing"},
		{91, 5, "Leading"},
		{100, 5, "Leading"},
	}

	for _, tc := range cases {
		got := Classify(tc.percent)
		if got.Stage != tc.stage || got.Name != tc.name {
			t.Fatalf("Classify(%v) = %d %q, expected %d %q", tc.percent, got.Stage, got.Name, tc.stage, tc.name)
		}
	}
}

// The 11-30 and 11-50 bands overlap in the published model. First match in
// table order must win, so 11-30 always resolves to Foundational.
func TestClassifyOverlapResolvesToFirstBand(t *testing.T) {
	for p := 11.0; p <= 30; p++ {
		got := Classify(p)
		if got.Stage != 1 {
			t.Fatalf("Classify(%v) = stage %d, expected stage 1 in the overlap range", p, got.Stage)
		}
	}
}

func TestClassifyFailsClosed(t *testing.T) {
	for _, p := range []float64{-1, -50, 101, 250, math.NaN(), math.Inf(1), math.Inf(-1)} {
		got := Classify(p)
		if got.Stage != 0 || got.Name != "Awareness" {
			t.Fatalf("Classify(%v) = %d %q, expected fail-closed stage 0 Awareness", p, got.Stage, got.Name)
		}
	}
}

func TestName(t *testing.T) {
	if Name(3) != "Scaling" {
		t.Fatalf("Name(3) = %q, expected Scaling", Name(3))
	}
	if Name(99) != "Awareness" {
		t.Fatalf("Name(99) = %q, expected fallback Awareness", Name(99))
	}
}
