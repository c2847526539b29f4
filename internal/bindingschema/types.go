// Package bindingschema extracts, decodes, and parses the simulator's
// default action-binding schema (spec.md §4.9), and diffs two parsed
// schemas across a build-id transition.
package bindingschema

// ActivationMode is how a binding responds to the input event.
type ActivationMode int

const (
	ActivationPress ActivationMode = iota
	ActivationHold
	ActivationDoubleTap
	ActivationTripleTap
	ActivationDelayedPress
)

var activationModeNames = map[string]ActivationMode{
	"press":         ActivationPress,
	"hold":          ActivationHold,
	"double_tap":    ActivationDoubleTap,
	"delayed_press": ActivationDelayedPress,
	"press_delayed": ActivationDelayedPress,
	"triple_tap":    ActivationTripleTap,
}

func parseActivationMode(s string) ActivationMode {
	if mode, ok := activationModeNames[s]; ok {
		return mode
	}
	return ActivationPress
}

// InputKind classifies a default binding's physical input type, inferred
// from its token (§4.9 step 5: "Input type is inferred from action-name
// patterns and presence of axis-style tokens").
type InputKind int

const (
	InputButton InputKind = iota
	InputAxis
	InputHat
)

var axisTokens = map[string]bool{
	"x": true, "y": true, "z": true,
	"rotx": true, "roty": true, "rotz": true,
	"rx": true, "ry": true, "rz": true,
	"slider0": true, "slider1": true, "slider": true,
	"wheel": true, "throttle": true, "twist": true,
}

func inferInputKind(token string) InputKind {
	if axisTokens[token] {
		return InputAxis
	}
	if token == "hat" || token == "pov" || token == "hatup" || token == "hatdown" ||
		token == "hatleft" || token == "hatright" {
		return InputHat
	}
	return InputButton
}

// Device identifies which input device family a binding's prefix names.
type Device int

const (
	DeviceKeyboard Device = iota
	DeviceMouse
	DeviceJoystick
)

var devicePrefixes = map[string]Device{
	"kb": DeviceKeyboard,
	"mo": DeviceMouse,
	"js": DeviceJoystick,
}

// Binding is one default (or exported) input assignment for an action.
type Binding struct {
	Device         Device
	Instance       int
	Modifiers      []string
	Token          string
	Kind           InputKind
	Inverted       bool
	ActivationMode ActivationMode
}

// Action is one simulator action and its default bindings.
type Action struct {
	Name     string
	Bindings []Binding
}

// ActionMapEntry groups actions under one actionmap name.
type ActionMapEntry struct {
	Name    string
	Actions []Action
}

// Schema is the full parsed default-profile binding schema.
type Schema struct {
	ActionMaps []ActionMapEntry
}

// Action looks up an action by actionmap and action name.
func (s Schema) Action(actionMap, name string) (Action, bool) {
	for _, am := range s.ActionMaps {
		if am.Name != actionMap {
			continue
		}
		for _, a := range am.Actions {
			if a.Name == name {
				return a, true
			}
		}
	}
	return Action{}, false
}
