// Package mapping implements the Mapping Engine (spec.md §4.3): the
// stateful transformation core that applies a Mapping Profile to every
// poller.Sample and drives the Virtual Device Sink and Keystroke Sink.
//
// The data model (spec.md §3) collapses the mapping hierarchy to a tagged
// union over a shared base, per the design note in spec.md §9 ("prefer sum
// types with a single dispatch over subtype polymorphism"); this mirrors
// the teacher's own flat struct-of-fields GamepadState rather than any
// interface hierarchy (backend/internal/gamepad/state.go).
package mapping

import (
	"time"

	"github.com/mazzeestudio/asteriq/internal/curve"
)

// InputKind is one of the three addressable input classes on a physical
// device (spec.md §3).
type InputKind int

const (
	KindAxis InputKind = iota
	KindButton
	KindHat
)

// InputSource is a reference to one bit/value in a poller.Sample.
type InputSource struct {
	DeviceID string
	Kind     InputKind
	Index    int
}

// OutputKind tags the variant of OutputTarget.
type OutputKind int

const (
	OutputVirtualAxis OutputKind = iota
	OutputVirtualButton
	OutputVirtualPov
	OutputKey
)

// OutputTarget is the tagged union of spec.md §3's Output Target.
type OutputTarget struct {
	Kind OutputKind

	Slot   int // VirtualAxis/VirtualButton/VirtualPov
	Axis   int // VirtualAxis: 0..7
	Button int // VirtualButton: 1-based
	Pov    int // VirtualPov: 0..3

	Key       string // Key: the key name
	Modifiers []string
}

// MergeOp is the multi-input merge operator (spec.md §4.3).
type MergeOp int

const (
	MergeAverage MergeOp = iota
	MergeMin
	MergeMax
	MergeSum
)

// Merge reduces vs under op. Empty input is a no-op (returns 0, false).
func Merge(op MergeOp, vs []float64) (float64, bool) {
	if len(vs) == 0 {
		return 0, false
	}
	switch op {
	case MergeMin:
		m := vs[0]
		for _, v := range vs[1:] {
			if v < m {
				m = v
			}
		}
		return m, true
	case MergeMax:
		m := vs[0]
		for _, v := range vs[1:] {
			if v > m {
				m = v
			}
		}
		return m, true
	case MergeSum:
		var sum float64
		for _, v := range vs {
			sum += v
		}
		if sum > 1 {
			sum = 1
		}
		if sum < -1 {
			sum = -1
		}
		return sum, true
	default: // MergeAverage
		var sum float64
		for _, v := range vs {
			sum += v
		}
		return sum / float64(len(vs)), true
	}
}

// ButtonMode is the button state-machine mode (spec.md §4.4.2).
type ButtonMode int

const (
	Normal ButtonMode = iota
	Toggle
	Pulse
	HoldToActivate
)

// Base fields shared by every Mapping variant (spec.md §3 "Mapping").
type Base struct {
	ID      string
	Name    string
	Enabled bool
	Inputs  []InputSource
	Output  OutputTarget
	Merge   MergeOp
	Invert  bool
	LayerID string // empty = base layer, always evaluated
}

// AxisMapping is spec.md §3's AxisMapping.
type AxisMapping struct {
	Base
	Curve curve.Curve
}

// ButtonMapping is spec.md §3's ButtonMapping, including hidden runtime
// state (toggle latch, hold start time) reset by LoadProfile/Stop.
type ButtonMapping struct {
	Base
	Mode    ButtonMode
	PulseMs int
	HoldMs  int

	toggleLatch bool
	pulseStart  time.Time
	pulseActive bool
	holdStart   time.Time
	wasHeld     bool
}

// HatMapping is spec.md §3's HatMapping.
type HatMapping struct {
	Base
	Continuous bool
}

// AxisToButtonMapping is spec.md §3's AxisToButtonMapping.
type AxisToButtonMapping struct {
	Base
	Threshold     float64
	ActivateAbove bool
	Hysteresis    float64

	activated bool
}

// ButtonToAxisMapping is spec.md §3's ButtonToAxisMapping.
type ButtonToAxisMapping struct {
	Base
	PressedValue  float64
	ReleasedValue float64
	SmoothingMs   int

	current float64
	target  float64
	hasRun  bool

	transitionStart time.Time // instant the current edge transition began
	transitionFrom  float64   // current's value at transitionStart
}

// ShiftLayer is spec.md §3's Shift Layer.
type ShiftLayer struct {
	ID        string
	Name      string
	Activator InputSource // must be a button

	active bool
}

// SlotAssignment maps a physical device to a virtual slot (spec.md §3
// "list of physical→virtual slot assignments").
type SlotAssignment struct {
	DeviceID string
	SlotID   int
}

// Profile is spec.md §3's Mapping Profile.
type Profile struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	ModifiedAt  time.Time

	SlotAssignments []SlotAssignment
	Layers          []ShiftLayer

	AxisMappings         []AxisMapping
	ButtonMappings       []ButtonMapping
	HatMappings          []HatMapping
	AxisToButtonMappings []AxisToButtonMapping
	ButtonToAxisMappings []ButtonToAxisMapping
}
