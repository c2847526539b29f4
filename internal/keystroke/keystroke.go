//go:build windows

// Package keystroke implements the Keystroke Sink (spec.md §4.6): it
// synthesizes key press/release events via SendInput, tracks every key it
// has pressed so stop()/release_all() can release them in strict
// reverse-of-press order, and sets the extended-key flag for navigation,
// non-digit numpad, and right-side modifier keys.
//
// VK constant naming and the syscall-based Windows API idiom are grounded
// on other_examples/dcd2330d_serty2005-clipQueue__platform-windows-input_listener.go.go
// (VK_LCONTROL etc., KBDLLHOOKSTRUCT-style low-level key handling),
// inverted from that file's hook-based listening to SendInput-based
// emission. Library: golang.org/x/sys/windows.
package keystroke

import (
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// interEventSpacing is spec.md §4.6's "default inter-event spacing of
// ~25 ms" applied when a mapping emits a sequence of key events.
const interEventSpacing = 25 * time.Millisecond

// Virtual-key codes for the modifier keys Modifiers canonicalizes, named
// after the clipQueue reference file's VK_* constants.
const (
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12 // Alt
	vkLWin    = 0x5B
	vkRWin    = 0x5C

	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

// modifierCanonicalOrder is spec.md §4.6's "modifiers-in-canonical-order":
// Ctrl, Shift, Alt, Win, matching the conventional Windows accelerator
// display order.
var modifierCanonicalOrder = []string{"ctrl", "shift", "alt", "win"}

var modifierVK = map[string]uint16{
	"ctrl":  vkControl,
	"shift": vkShift,
	"alt":   vkMenu,
	"win":   vkLWin,
}

// extendedKeys are virtual-key codes requiring the extended-key flag:
// navigation keys, numpad non-digit keys, and right-side modifier
// variants, per spec.md §4.6.
var extendedKeys = map[uint16]bool{
	0x21: true, // PRIOR (Page Up)
	0x22: true, // NEXT (Page Down)
	0x23: true, // END
	0x24: true, // HOME
	0x25: true, // LEFT
	0x26: true, // UP
	0x27: true, // RIGHT
	0x28: true, // DOWN
	0x2D: true, // INSERT
	0x2E: true, // DELETE
	0x6F: true, // DIVIDE (numpad /)
	0x90: true, // NUMLOCK
	vkRShift:   true,
	vkRControl: true,
	vkRMenu:    true,
	vkRWin:     true,
	0x5D:       true, // APPS (menu key)
}

const (
	inputKeyboard     = 1
	keyEventFKeyUp    = 0x0002
	keyEventFExtended = 0x0001
)

// keybdInput mirrors the KEYBDINPUT member of Windows' tagINPUT union.
type keybdInput struct {
	wVK         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// rawInput mirrors tagINPUT sized for the 64-bit KEYBDINPUT layout: type
// (4 bytes + 4 padding) followed by the union, padded to the union's
// largest member (MOUSEINPUT, 32 bytes) as SendInput requires.
type rawInput struct {
	Type uint32
	_    uint32
	Ki   keybdInput
	_    [8]byte
}

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procSendInput   = user32.NewProc("SendInput")
	procGetKeyState = user32.NewProc("GetKeyState")
)

// VkFor resolves a spec.md §3 key name (a single printable character, or
// one of the named special keys) to a virtual-key code. Unresolvable names
// return (0, false); the caller should skip the mapping rather than emit a
// garbage key.
func VkFor(name string) (uint16, bool) {
	if vk, ok := namedKeys[name]; ok {
		return vk, true
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint16(c - 'a' + 'A'), true
		case c >= 'A' && c <= 'Z':
			return uint16(c), true
		case c >= '0' && c <= '9':
			return uint16(c), true
		}
	}
	return 0, false
}

// Sink is the process-wide Keystroke Sink singleton's state: the set of
// currently pressed keys, touched only from the engine thread and flushed
// on Stop, per spec.md §9's "Global state" note.
type Sink struct {
	mu     sync.Mutex
	pressStack []uint16 // press order, for strict reverse release on ReleaseAll
	held       map[uint16]int

	send func(vk uint16, up bool) // overridden in tests
}

func New() *Sink {
	return &Sink{held: make(map[uint16]int), send: sendKeyEvent}
}

// KeyDown presses modifiers in canonical order, then the main key.
func (s *Sink) KeyDown(key string, modifiers []string) {
	vk, ok := VkFor(key)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range canonicalize(modifiers) {
		if mvk, ok := modifierVK[m]; ok {
			s.pressLocked(mvk)
			time.Sleep(interEventSpacing)
		}
	}
	s.pressLocked(vk)
}

// KeyUp releases the main key then modifiers, the exact reverse of
// KeyDown's press order.
func (s *Sink) KeyUp(key string, modifiers []string) {
	vk, ok := VkFor(key)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked(vk)
	mods := canonicalize(modifiers)
	for i := len(mods) - 1; i >= 0; i-- {
		if mvk, ok := modifierVK[mods[i]]; ok {
			time.Sleep(interEventSpacing)
			s.releaseLocked(mvk)
		}
	}
}

// ReleaseAll releases every key currently tracked as pressed, in strict
// reverse-of-press order, per spec.md §4.6's teardown obligation.
func (s *Sink) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.pressStack) - 1; i >= 0; i-- {
		s.send(s.pressStack[i], true)
	}
	s.pressStack = nil
	s.held = make(map[uint16]int)
}

func (s *Sink) pressLocked(vk uint16) {
	if s.held[vk] == 0 {
		s.send(vk, false)
		s.pressStack = append(s.pressStack, vk)
	}
	s.held[vk]++
}

func (s *Sink) releaseLocked(vk uint16) {
	if s.held[vk] == 0 {
		return
	}
	s.held[vk]--
	if s.held[vk] > 0 {
		return
	}
	delete(s.held, vk)
	s.send(vk, true)
	for i, v := range s.pressStack {
		if v == vk {
			s.pressStack = append(s.pressStack[:i], s.pressStack[i+1:]...)
			break
		}
	}
}

func canonicalize(mods []string) []string {
	set := make(map[string]bool, len(mods))
	for _, m := range mods {
		set[m] = true
	}
	out := make([]string, 0, len(mods))
	for _, m := range modifierCanonicalOrder {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}

func sendKeyEvent(vk uint16, up bool) {
	var in rawInput
	in.Type = inputKeyboard
	in.Ki.wVK = vk
	if up {
		in.Ki.dwFlags |= keyEventFKeyUp
	}
	if extendedKeys[vk] {
		in.Ki.dwFlags |= keyEventFExtended
	}
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}
