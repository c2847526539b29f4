package curve

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// Scenario A from spec.md §8.
func TestCenteredDeadzoneScenarioA(t *testing.T) {
	c := Curve{
		Kind:       Linear,
		Saturation: 1,
		Deadzone: Deadzone{
			Mode:       Centered,
			Low:        -1,
			CenterLow:  -0.05,
			CenterHigh: 0.05,
			High:       1,
		},
	}

	cases := []struct {
		in, want float64
	}{
		{-1, -1},
		{-0.04, 0},
		{0, 0},
		{0.04, 0},
		{0.5, 0.473684},
		{1, 1},
	}

	for _, tc := range cases {
		got := Apply(c, tc.in)
		if !approxEqual(got, tc.want) {
			t.Errorf("Apply(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// Invariant 1: inside the centered deadzone, output is always exactly 0.
func TestCenteredDeadzoneInvariant(t *testing.T) {
	c := Curve{
		Kind:       SCurve,
		Curvature:  0.5,
		Saturation: 0.9,
		Deadzone: Deadzone{
			Mode:       Centered,
			Low:        -1,
			CenterLow:  -0.1,
			CenterHigh: 0.1,
			High:       1,
		},
	}
	for _, v := range []float64{-0.09, -0.05, 0, 0.05, 0.099} {
		if got := Apply(c, v); got != 0 {
			t.Errorf("Apply(%v) = %v, want 0", v, got)
		}
	}
}

// Invariant 2: |apply(v)| <= 1 and sign never flips from inversion.
func TestBoundedAndSignPreserving(t *testing.T) {
	c := Curve{
		Kind:       Exponential,
		Curvature:  -0.3,
		Saturation: 0.8,
		Inverted:   true,
		Deadzone: Deadzone{
			Mode: Centered, Low: -1, CenterLow: -0.02, CenterHigh: 0.02, High: 1,
		},
	}
	for v := -1.0; v <= 1.0; v += 0.05 {
		got := Apply(c, v)
		if math.Abs(got) > 1+1e-9 {
			t.Fatalf("Apply(%v) = %v exceeds [-1,1]", v, got)
		}
		if v > 0.02 && got < 0 {
			t.Fatalf("Apply(%v) = %v, sign flipped by inversion", v, got)
		}
		if v < -0.02 && got > 0 {
			t.Fatalf("Apply(%v) = %v, sign flipped by inversion", v, got)
		}
	}
}

// Invariant 11: saturation boundary never exceeds magnitude 1.
func TestSaturationBoundary(t *testing.T) {
	c := Curve{Kind: Linear, Saturation: 0.6, Deadzone: Deadzone{Mode: Centered, Low: -1, High: 1}}
	if got := Apply(c, 0.6); !approxEqual(got, 1) {
		t.Errorf("Apply(saturation) = %v, want 1", got)
	}
	if got := Apply(c, 0.9); !approxEqual(got, 1) {
		t.Errorf("Apply(beyond saturation) = %v, want 1", got)
	}
}

// Invariant 12: continuity at the center_high boundary.
func TestCenterHighContinuity(t *testing.T) {
	c := Curve{
		Kind:       Linear,
		Saturation: 1,
		Deadzone:   Deadzone{Mode: Centered, Low: -1, CenterLow: -0.05, CenterHigh: 0.05, High: 1},
	}
	at := Apply(c, 0.05)
	if at != 0 {
		t.Errorf("Apply(center_high) = %v, want 0", at)
	}
	justAbove := Apply(c, 0.05+1e-6)
	if justAbove < 0 || justAbove > 1e-4 {
		t.Errorf("Apply(center_high+eps) = %v, want small positive", justAbove)
	}
}

// Invariant 14: a two-point custom curve anchored at (0,0),(1,1) is Linear.
func TestCustomTwoPointsIsLinear(t *testing.T) {
	c := Curve{
		Kind:          Custom,
		Saturation:    1,
		ControlPoints: []ControlPoint{{0, 0}, {1, 1}},
		Deadzone:      Deadzone{Mode: Centered, Low: -1, High: 1},
	}
	for v := 0.0; v <= 1.0; v += 0.1 {
		got := Apply(c, v)
		if !approxEqual(got, v) {
			t.Errorf("Apply(%v) = %v, want %v (linear)", v, got, v)
		}
	}
}

func TestEndOnlyDeadzone(t *testing.T) {
	c := Curve{
		Kind:       Linear,
		Saturation: 1,
		Deadzone:   Deadzone{Mode: EndOnly, Low: -0.9, High: 0.9},
	}
	if got := Apply(c, 0); got != 0 {
		t.Errorf("Apply(0) = %v, want 0", got)
	}
	if got := Apply(c, 1); !approxEqual(got, 1) {
		t.Errorf("Apply(1) = %v, want 1", got)
	}
	if got := Apply(c, -1); !approxEqual(got, -1) {
		t.Errorf("Apply(-1) = %v, want -1", got)
	}
}
