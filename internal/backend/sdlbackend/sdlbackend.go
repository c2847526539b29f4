// Package sdlbackend implements poller.Backend on top of SDL3's Joystick
// API: the "high-level enumeration" backend of spec.md §4.2, limited to 6
// axes plus sliders. It is backend/internal/gamepad/reader.go's
// SDL-calling code (openJoystick/removeJoystick/pollState), generalized
// from the teacher's single fixed Xbox-style GamepadState to the spec's
// axes[]/buttons[]/hats[] Sample, and from "track the first connected
// joystick" to "track every opened joystick". Like the teacher, identity
// (vendor/product/name) is only available once a joystick handle has been
// opened -- SDL3's ID-only query functions used on the backend side are
// not part of the Joystick subsystem's public surface the teacher
// exercises -- so Enumerate opens every newly seen id exactly as
// reader.go's openJoystick does, and the resulting handle is reused by
// Open/Close/Read rather than reopened.
package sdlbackend

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/mazzeestudio/asteriq/internal/poller"
	"github.com/mazzeestudio/asteriq/internal/registry"
)

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

type joystickInfo struct {
	joystick *sdl.Joystick
	name     string
	vendorID uint16
	productID uint16
}

// Backend implements poller.Backend using SDL3.
type Backend struct {
	mu   sync.Mutex
	byID map[sdl.JoystickID]*joystickInfo
}

func New() *Backend {
	return &Backend{byID: make(map[sdl.JoystickID]*joystickInfo)}
}

func (b *Backend) Init() error {
	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("sdlbackend: SDL_Init failed: %s", sdl.GetError())
	}
	return nil
}

func (b *Backend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, info := range b.byID {
		sdl.CloseJoystick(info.joystick)
	}
	b.byID = make(map[sdl.JoystickID]*joystickInfo)
	sdl.Quit()
}

func instancePath(id sdl.JoystickID) string {
	return "sdl:" + strconv.FormatUint(uint64(id), 10)
}

// Enumerate mirrors reader.go's processEvents+openJoystick: every
// currently-attached id is opened (idempotently) so its vendor/product/name
// can be read off the handle, then reported as a registry candidate.
func (b *Backend) Enumerate() ([]registry.CandidatePath, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := sdl.GetJoysticks()
	live := make(map[sdl.JoystickID]bool, len(ids))

	out := make([]registry.CandidatePath, 0, len(ids))
	for _, id := range ids {
		live[id] = true

		info, ok := b.byID[id]
		if !ok {
			js := sdl.OpenJoystick(id)
			if js == nil {
				continue
			}
			info = &joystickInfo{
				joystick:  js,
				name:      sdl.GetJoystickName(js),
				vendorID:  sdl.GetJoystickVendor(js),
				productID: sdl.GetJoystickProduct(js),
			}
			b.byID[id] = info
		}

		out = append(out, registry.CandidatePath{
			VendorProduct: fmt.Sprintf("%04X:%04X", info.vendorID, info.productID),
			InstancePath:  instancePath(id),
			DisplayName:   info.name,
			Axes:          int(sdl.GetNumJoystickAxes(info.joystick)),
			Buttons:       int(sdl.GetNumJoystickButtons(info.joystick)),
			Hats:          int(sdl.GetNumJoystickHats(info.joystick)),
		})
	}

	for id, info := range b.byID {
		if !live[id] {
			sdl.CloseJoystick(info.joystick)
			delete(b.byID, id)
		}
	}

	return out, nil
}

// Open is a no-op beyond validating the path: Enumerate already opened the
// handle, matching reader.go's guard ("if _, exists := r.joysticks[instanceID]; exists { return }").
func (b *Backend) Open(path string) error {
	id, err := parseInstancePath(path)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.byID[id]; !ok {
		return fmt.Errorf("sdlbackend: %s not enumerated", path)
	}
	return nil
}

// Close is a no-op: the handle is owned by Enumerate's live-set bookkeeping
// and closed there once SDL stops reporting the id.
func (b *Backend) Close(path string) {}

func (b *Backend) Read(path string) (poller.Sample, bool) {
	id, err := parseInstancePath(path)
	if err != nil {
		return poller.Sample{}, false
	}

	b.mu.Lock()
	info, ok := b.byID[id]
	b.mu.Unlock()
	if !ok || !sdl.JoystickConnected(info.joystick) {
		return poller.Sample{}, false
	}

	js := info.joystick
	numAxes := int(sdl.GetNumJoystickAxes(js))
	numButtons := int(sdl.GetNumJoystickButtons(js))
	numHats := int(sdl.GetNumJoystickHats(js))

	s := poller.Sample{
		Axes:    make([]float64, numAxes),
		Buttons: make([]bool, numButtons),
		Hats:    make([]int, numHats),
	}

	for i := 0; i < numAxes; i++ {
		s.Axes[i] = normalizeAxis(sdl.GetJoystickAxis(js, int32(i)))
	}
	for i := 0; i < numButtons; i++ {
		s.Buttons[i] = sdl.GetJoystickButton(js, int32(i))
	}
	for i := 0; i < numHats; i++ {
		s.Hats[i] = hatToDegrees(sdl.GetJoystickHat(js, int32(i)))
	}

	return s, true
}

func normalizeAxis(raw int16) float64 {
	v := float64(raw) / 32768.0
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	return v
}

// hatToDegrees converts SDL's 4-bit hat bitmask to spec.md §3's degrees
// convention (0 = up, clockwise; -1 = centered).
func hatToDegrees(hat uint8) int {
	switch hat {
	case hatUp:
		return 0
	case hatUp | hatRight:
		return 45
	case hatRight:
		return 90
	case hatRight | hatDown:
		return 135
	case hatDown:
		return 180
	case hatDown | hatLeft:
		return 225
	case hatLeft:
		return 270
	case hatLeft | hatUp:
		return 315
	default:
		return -1
	}
}

func parseInstancePath(path string) (sdl.JoystickID, error) {
	if len(path) < 4 || path[:4] != "sdl:" {
		return 0, fmt.Errorf("sdlbackend: not an SDL instance path: %q", path)
	}
	n, err := strconv.ParseUint(path[4:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("sdlbackend: invalid instance path %q: %w", path, err)
	}
	return sdl.JoystickID(n), nil
}
