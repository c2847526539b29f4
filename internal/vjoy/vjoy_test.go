//go:build windows

package vjoy

import (
	"testing"

	"github.com/mazzeestudio/asteriq/internal/vjoydrv"
)

func TestEncodeAxis(t *testing.T) {
	cases := []struct {
		in   float64
		want int32
	}{
		{-1, 0},
		{0, axisBackendCenter},
		{1, axisBackendMax},
		{2, axisBackendMax}, // clamp
		{-2, 0},             // clamp
	}
	for _, c := range cases {
		if got := encodeAxis(c.in); got != c.want {
			t.Fatalf("encodeAxis(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSinkDeviceLostAfterConsecutiveFailures(t *testing.T) {
	var lostSlot = -1
	s := New(func(slot int) { lostSlot = slot }, nil)

	for i := 0; i < maxConsecutiveFailures; i++ {
		s.record(2, false)
	}
	if lostSlot != 2 {
		t.Fatalf("expected DeviceLost(2), got lostSlot=%d", lostSlot)
	}

	// Further failures on a lost slot must not double-fire.
	lostSlot = -1
	s.record(2, false)
	if lostSlot != -1 {
		t.Fatalf("DeviceLost fired twice for the same slot")
	}
}

func TestSinkSkipsDriverCallOnceSlotIsLost(t *testing.T) {
	var axisCalls, buttonCalls int
	origAxis, origButton := driverSetAxis, driverSetButton
	defer func() { driverSetAxis, driverSetButton = origAxis, origButton }()
	driverSetAxis = func(slot int, axis vjoydrv.AxisID, value int32) bool {
		axisCalls++
		return false
	}
	driverSetButton = func(slot, button int, on bool) bool {
		buttonCalls++
		return false
	}

	s := New(nil, nil)
	for i := 0; i < maxConsecutiveFailures; i++ {
		s.SetAxis(3, 0, 0.5)
	}
	if axisCalls != maxConsecutiveFailures {
		t.Fatalf("got %d axis calls before the slot was lost, want %d", axisCalls, maxConsecutiveFailures)
	}
	if !s.isLost(3) {
		t.Fatalf("expected slot 3 to be lost")
	}

	s.SetAxis(3, 0, 0.9)
	s.SetButton(3, 1, true)
	if axisCalls != maxConsecutiveFailures {
		t.Fatalf("SetAxis invoked the driver after the slot was lost: got %d calls", axisCalls)
	}
	if buttonCalls != 0 {
		t.Fatalf("SetButton invoked the driver on an already-lost slot: got %d calls", buttonCalls)
	}
}

func TestSinkRecoversOnSuccess(t *testing.T) {
	fired := false
	s := New(func(slot int) { fired = true }, nil)
	s.record(1, false)
	s.record(1, true)
	for i := 0; i < maxConsecutiveFailures-1; i++ {
		s.record(1, false)
	}
	if fired {
		t.Fatalf("DeviceLost fired despite a success resetting the failure count")
	}
}
