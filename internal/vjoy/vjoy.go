//go:build windows

// Package vjoy implements internal/mapping.VirtualSink on top of
// internal/vjoydrv: axis [-1,1] -> [0,32767]/center-16384 encoding
// (spec.md §4.5), acquire/release/reset bookkeeping, and the
// DeviceLost(slot) de-escalation spec.md §7 requires for a sink whose
// hot-path writes must never propagate an error upward.
package vjoy

import (
	"log"
	"sync"

	"github.com/mazzeestudio/asteriq/internal/vjoydrv"
)

// axisBackendMax/Center are spec.md §4.5's Virtual Device Sink axis
// encoding constants.
const (
	axisBackendMax    = 32767
	axisBackendCenter = 16384

	// maxConsecutiveFailures is the "N consecutive failures" spec.md §4.3's
	// failure semantics references before a slot is marked lost.
	maxConsecutiveFailures = 5
)

// axisOrder is the fixed mapping from the mapping engine's 0..7 logical
// axis index to vJoy's named axis identifiers, in the order spec.md §6.4
// lists them.
var axisOrder = [8]vjoydrv.AxisID{
	vjoydrv.AxisX, vjoydrv.AxisY, vjoydrv.AxisZ,
	vjoydrv.AxisRx, vjoydrv.AxisRy, vjoydrv.AxisRz,
	vjoydrv.AxisSlider0, vjoydrv.AxisSlider1,
}

// LostHandler is invoked once per DeviceLost event, per spec.md §4.3.
type LostHandler func(slot int)

// The driver calls are indirected through package vars, rather than called
// on vjoydrv directly, so tests can substitute fakes without touching the
// real vJoyInterface.dll binding.
var (
	driverSetAxis    = vjoydrv.SetAxis
	driverSetButton  = vjoydrv.SetButton
	driverSetContPov = vjoydrv.SetContinuousPov
	driverSetDiscPov = vjoydrv.SetDiscretePov
)

// Sink is the concrete internal/mapping.VirtualSink backed by vJoy.
type Sink struct {
	mu       sync.Mutex
	failures map[int]int
	lost     map[int]bool
	onLost   LostHandler
	logger   *log.Logger
}

func New(onLost LostHandler, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.Default()
	}
	return &Sink{
		failures: make(map[int]int),
		lost:     make(map[int]bool),
		onLost:   onLost,
		logger:   logger,
	}
}

// CheckDriver reports a DriverMismatchError if the user-mode library and
// kernel driver versions disagree, per spec.md §7's startup-error policy.
func CheckDriver() error {
	if !vjoydrv.Enabled() {
		return errDriverDisabled
	}
	lib, drv, ok := vjoydrv.Version()
	if !ok {
		return &vjoydrv.DriverMismatchError{LibVersion: lib, DrvVersion: drv}
	}
	return nil
}

func (s *Sink) Acquire(slot int) error {
	if err := vjoydrv.Acquire(slot); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.failures, slot)
	delete(s.lost, slot)
	s.mu.Unlock()
	return nil
}

func (s *Sink) Release(slot int) {
	vjoydrv.Release(slot)
	s.mu.Lock()
	delete(s.failures, slot)
	delete(s.lost, slot)
	s.mu.Unlock()
}

func (s *Sink) Reset(slot int) {
	vjoydrv.ResetAll(slot)
}

func (s *Sink) SetAxis(slot, axis int, value float64) {
	if axis < 0 || axis >= len(axisOrder) || s.isLost(slot) {
		return
	}
	raw := encodeAxis(value)
	s.record(slot, driverSetAxis(slot, axisOrder[axis], raw))
}

func (s *Sink) SetButton(slot, button int, pressed bool) {
	if s.isLost(slot) {
		return
	}
	s.record(slot, driverSetButton(slot, button, pressed))
}

func (s *Sink) SetContinuousPov(slot, pov, degrees int) {
	if s.isLost(slot) {
		return
	}
	v := -1
	if degrees >= 0 {
		v = degrees * 100
	}
	s.record(slot, driverSetContPov(slot, pov, v))
}

func (s *Sink) SetDiscretePov(slot, pov, direction int) {
	if s.isLost(slot) {
		return
	}
	s.record(slot, driverSetDiscPov(slot, pov, direction))
}

// isLost reports whether slot has already been marked lost, so callers can
// skip the live vjoydrv call entirely instead of merely suppressing its
// bookkeeping in record.
func (s *Sink) isLost(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost[slot]
}

// encodeAxis implements spec.md §4.5's linear [-1,1] -> [0,32767] mapping
// with center 16384, clamping out-of-range input.
func encodeAxis(v float64) int32 {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	if v >= 0 {
		return int32(axisBackendCenter + v*(axisBackendMax-axisBackendCenter))
	}
	return int32(axisBackendCenter + v*axisBackendCenter)
}

// record tracks a write outcome and, after maxConsecutiveFailures writes to
// the same slot have failed, fires DeviceLost and stops counting further
// failures until the slot is re-acquired (spec.md §4.3's failure
// semantics). The engine itself never sees or propagates this error; the
// sink absorbs it on the caller's behalf, matching "the engine never
// throws from the hot path".
func (s *Sink) record(slot int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lost[slot] {
		return
	}
	if ok {
		s.failures[slot] = 0
		return
	}
	s.failures[slot]++
	if s.failures[slot] >= maxConsecutiveFailures {
		s.lost[slot] = true
		s.logger.Printf("vjoy: slot %d lost after %d consecutive write failures", slot, s.failures[slot])
		if s.onLost != nil {
			s.onLost(slot)
		}
	}
}
