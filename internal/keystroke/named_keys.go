//go:build windows

package keystroke

// namedKeys resolves spec.md §3's non-single-character key names to
// virtual-key codes.
var namedKeys = map[string]uint16{
	"backspace": 0x08,
	"tab":       0x09,
	"enter":     0x0D,
	"pause":     0x13,
	"capslock":  0x14,
	"esc":       0x1B,
	"space":     0x20,
	"pageup":    0x21,
	"pagedown":  0x22,
	"end":       0x23,
	"home":      0x24,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"insert":    0x2D,
	"delete":    0x2E,

	"numpad0": 0x60, "numpad1": 0x61, "numpad2": 0x62, "numpad3": 0x63,
	"numpad4": 0x64, "numpad5": 0x65, "numpad6": 0x66, "numpad7": 0x67,
	"numpad8": 0x68, "numpad9": 0x69,
	"multiply": 0x6A, "add": 0x6B, "separator": 0x6C, "subtract": 0x6D,
	"decimal": 0x6E, "divide": 0x6F,

	"f1": 0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
	"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
	"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
	"f13": 0x7C, "f14": 0x7D, "f15": 0x7E, "f16": 0x7F,
	"f17": 0x80, "f18": 0x81, "f19": 0x82, "f20": 0x83,
	"f21": 0x84, "f22": 0x85, "f23": 0x86, "f24": 0x87,

	"numlock":    0x90,
	"scrolllock": 0x91,

	"lshift":   vkLShift,
	"rshift":   vkRShift,
	"lctrl":    vkLControl,
	"rctrl":    vkRControl,
	"lalt":     vkLMenu,
	"ralt":     vkRMenu,
	"lwin":     vkLWin,
	"rwin":     vkRWin,
	"apps":     0x5D,

	"semicolon":  0xBA,
	"equals":     0xBB,
	"comma":      0xBC,
	"minus":      0xBD,
	"period":     0xBE,
	"slash":      0xBF,
	"grave":      0xC0,
	"lbracket":   0xDB,
	"backslash":  0xDC,
	"rbracket":   0xDD,
	"quote":      0xDE,
}
