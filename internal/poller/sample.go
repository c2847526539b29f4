package poller

import "time"

// Sample is an immutable snapshot from one physical device at one instant
// (spec.md §3). Axes are normalized to [-1, 1]; Hats are degrees, or -1 for
// centered.
type Sample struct {
	DeviceID  string // registry.StableID.String()
	Timestamp time.Time
	Axes      []float64
	Buttons   []bool
	Hats      []int
}

// Clone returns a deep copy, safe to retain past the caller's stack frame.
func (s Sample) Clone() Sample {
	out := s
	if s.Axes != nil {
		out.Axes = append([]float64(nil), s.Axes...)
	}
	if s.Buttons != nil {
		out.Buttons = append([]bool(nil), s.Buttons...)
	}
	if s.Hats != nil {
		out.Hats = append([]int(nil), s.Hats...)
	}
	return out
}

const jitterEpsilon = 0.01

// changed reports whether b differs from a by more than the jitter epsilon
// on any axis, or at all on any button/hat -- spec.md §4.2's change
// detection, generalized from
// backend/internal/gamepad/state.go's ComputeDelta/floatEqual (which only
// ever compared a fixed four-field struct) to arbitrary-length slices.
func changed(a, b Sample) bool {
	if len(a.Buttons) != len(b.Buttons) || len(a.Hats) != len(b.Hats) || len(a.Axes) != len(b.Axes) {
		return true
	}
	for i := range b.Buttons {
		if a.Buttons[i] != b.Buttons[i] {
			return true
		}
	}
	for i := range b.Hats {
		if a.Hats[i] != b.Hats[i] {
			return true
		}
	}
	for i := range b.Axes {
		d := a.Axes[i] - b.Axes[i]
		if d < 0 {
			d = -d
		}
		if d > jitterEpsilon {
			return true
		}
	}
	return false
}
