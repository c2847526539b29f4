//go:build windows

// Package vjoydrv is the opaque foreign-driver binding of spec.md §6.4: a
// syscall surface over vJoyInterface.dll, the user-mode library that talks
// to the vJoy kernel driver. It exposes driver version/enabled checks, slot
// capability queries, acquire/release, owner-pid lookup, reset, and the
// set-axis/set-button/set-pov primitives -- nothing else; all semantics
// (axis encoding, slot bookkeeping, failure de-escalation) live one layer
// up in internal/vjoy.
//
// The DLL-binding idiom (syscall.NewLazyDLL + NewProc + Call) is
// backend/internal/console/console.go's, applied to vJoyInterface.dll
// instead of kernel32/user32; the exposed surface shape (SetAxis/SetButton
// plus a Close/release) echoes
// other_examples/88248248_rdnt-uinput__joystick.go.go's Joystick interface.
package vjoydrv

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	vJoyInterface = syscall.NewLazyDLL("vJoyInterface.dll")

	procVJoyEnabled          = vJoyInterface.NewProc("vJoyEnabled")
	procGetvJoyVersion       = vJoyInterface.NewProc("GetvJoyVersion")
	procGetvJoyProductString = vJoyInterface.NewProc("GetvJoyProductString")
	procDriverMatch          = vJoyInterface.NewProc("DriverMatch")

	procGetVJDStatus       = vJoyInterface.NewProc("GetVJDStatus")
	procAcquireVJD         = vJoyInterface.NewProc("AcquireVJD")
	procRelinquishVJD      = vJoyInterface.NewProc("RelinquishVJD")
	procGetOwnerPid        = vJoyInterface.NewProc("GetOwnerPid")

	procGetVJDAxisExist    = vJoyInterface.NewProc("GetVJDAxisExist")
	procGetVJDButtonNumber = vJoyInterface.NewProc("GetVJDButtonNumber")
	procGetVJDContPovNumber = vJoyInterface.NewProc("GetVJDContPovNumber")
	procGetVJDDiscPovNumber = vJoyInterface.NewProc("GetVJDDiscPovNumber")

	procResetVJD     = vJoyInterface.NewProc("ResetVJD")
	procResetButtons = vJoyInterface.NewProc("ResetButtons")
	procResetPovs    = vJoyInterface.NewProc("ResetPovs")

	procSetAxis     = vJoyInterface.NewProc("SetAxis")
	procSetBtn      = vJoyInterface.NewProc("SetBtn")
	procSetDiscPov  = vJoyInterface.NewProc("SetDiscPov")
	procSetContPov  = vJoyInterface.NewProc("SetContPov")
)

// VjdStat mirrors vJoy's VjdStat enum.
type VjdStat int

const (
	StatOwn  VjdStat = iota // owned by this process
	StatFree                // exists, unowned
	StatBusy                // owned by another process
	StatMiss                // not configured/installed
	StatUnknown
)

// AxisID is one of vJoy's HID usage-code axis identifiers (spec.md §6.4:
// X/Y/Z/Rx/Ry/Rz/Slider0/Slider1/Wheel/POV mapped to 0x30..0x39).
type AxisID uint32

const (
	AxisX       AxisID = 0x30
	AxisY       AxisID = 0x31
	AxisZ       AxisID = 0x32
	AxisRx      AxisID = 0x33
	AxisRy      AxisID = 0x34
	AxisRz      AxisID = 0x35
	AxisSlider0 AxisID = 0x36
	AxisSlider1 AxisID = 0x37
	AxisWheel   AxisID = 0x38
	AxisPov     AxisID = 0x39
)

// Enabled reports whether the vJoy driver is installed and enabled.
func Enabled() bool {
	r, _, _ := procVJoyEnabled.Call()
	return r != 0
}

// Version returns (libraryVersion, driverVersion) and whether they match.
// A mismatch is reported by the caller as DriverMismatch (spec.md §7).
func Version() (libVer, drvVer uint16, match bool) {
	var dll, drv uint32
	r, _, _ := procDriverMatch.Call(uintptr(unsafe.Pointer(&dll)), uintptr(unsafe.Pointer(&drv)))
	lib, _, _ := procGetvJoyVersion.Call()
	return uint16(lib), uint16(drv), r != 0 && uint16(dll) == uint16(lib)
}

// Status returns the current ownership status of slot.
func Status(slot int) VjdStat {
	r, _, _ := procGetVJDStatus.Call(uintptr(slot))
	return VjdStat(r)
}

// Acquire claims exclusive ownership of slot for this process.
func Acquire(slot int) error {
	switch Status(slot) {
	case StatOwn:
		return fmt.Errorf("vjoydrv: slot %d: %w", slot, ErrSlotAlreadyOwned)
	case StatBusy:
		return fmt.Errorf("vjoydrv: slot %d: %w", slot, ErrSlotBusy)
	case StatMiss, StatUnknown:
		return fmt.Errorf("vjoydrv: slot %d: %w", slot, ErrSlotMissing)
	}
	r, _, _ := procAcquireVJD.Call(uintptr(slot))
	if r == 0 {
		return fmt.Errorf("vjoydrv: AcquireVJD(%d) failed", slot)
	}
	return nil
}

func Release(slot int) {
	procRelinquishVJD.Call(uintptr(slot))
}

func OwnerPid(slot int) int {
	var pid uint32
	procGetOwnerPid.Call(uintptr(slot), uintptr(unsafe.Pointer(&pid)))
	return int(pid)
}

func AxisExists(slot int, axis AxisID) bool {
	r, _, _ := procGetVJDAxisExist.Call(uintptr(slot), uintptr(axis))
	return r != 0
}

func ButtonCount(slot int) int {
	r, _, _ := procGetVJDButtonNumber.Call(uintptr(slot))
	return int(r)
}

func ContinuousPovCount(slot int) int {
	r, _, _ := procGetVJDContPovNumber.Call(uintptr(slot))
	return int(r)
}

func DiscretePovCount(slot int) int {
	r, _, _ := procGetVJDDiscPovNumber.Call(uintptr(slot))
	return int(r)
}

func ResetAll(slot int) {
	procResetVJD.Call(uintptr(slot))
}

func ResetButtons(slot int) {
	procResetButtons.Call(uintptr(slot))
}

func ResetPovs(slot int) {
	procResetPovs.Call(uintptr(slot))
}

// SetAxis writes a raw backend value in [0, 32767] to axis on slot.
func SetAxis(slot int, axis AxisID, value int32) bool {
	r, _, _ := procSetAxis.Call(uintptr(value), uintptr(slot), uintptr(axis))
	return r != 0
}

// SetButton writes the state of a 1-based button index.
func SetButton(slot int, button int, on bool) bool {
	var v uintptr
	if on {
		v = 1
	}
	r, _, _ := procSetBtn.Call(v, uintptr(slot), uintptr(button))
	return r != 0
}

// SetDiscretePov writes direction (0=N,1=E,2=S,3=W) or -1 for neutral, to
// 1-based pov index.
func SetDiscretePov(slot, pov, direction int) bool {
	v := uintptr(direction)
	if direction < 0 {
		v = uintptr(0xFFFFFFFF)
	}
	r, _, _ := procSetDiscPov.Call(v, uintptr(slot), uintptr(pov))
	return r != 0
}

// SetContinuousPov writes degrees*100 (vJoy's native continuous-pov unit)
// or -1 for neutral, to 1-based pov index.
func SetContinuousPov(slot, pov, degreesHundredths int) bool {
	v := uintptr(int32(degreesHundredths))
	r, _, _ := procSetContPov.Call(v, uintptr(slot), uintptr(pov))
	return r != 0
}
