package bindingio

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/mazzeestudio/asteriq/internal/bindingschema"
)

const (
	actionMapsVersion   = "1"
	optionsVersionValue = "2"
	rebindVersionValue  = "2"
)

var devicePrefixNames = map[bindingschema.Device]string{
	bindingschema.DeviceKeyboard: "kb",
	bindingschema.DeviceMouse:    "mo",
	bindingschema.DeviceJoystick: "js",
}

var activationModeNames = map[bindingschema.ActivationMode]string{
	bindingschema.ActivationHold:         "hold",
	bindingschema.ActivationDoubleTap:    "double_tap",
	bindingschema.ActivationTripleTap:    "triple_tap",
	bindingschema.ActivationDelayedPress: "delayed_press",
}

type xmlDeviceRef struct {
	Instance int `xml:"instance,attr"`
}

type xmlOptions struct {
	Type     string `xml:"type,attr"`
	Instance int    `xml:"instance,attr"`
	Product  string `xml:"Product,attr"`
}

type xmlHeader struct {
	Keyboard *xmlDeviceRef  `xml:"keyboard"`
	Mouse    *xmlDeviceRef  `xml:"mouse"`
	Joystick []xmlDeviceRef `xml:"joystick"`
}

type xmlRebind struct {
	Input          string `xml:"input,attr"`
	Invert         string `xml:"invert,attr,omitempty"`
	ActivationMode string `xml:"activationMode,attr,omitempty"`
}

type xmlAction struct {
	Name    string      `xml:"name,attr"`
	Rebinds []xmlRebind `xml:"rebind"`
}

type xmlActionMap struct {
	Name    string      `xml:"name,attr"`
	Actions []xmlAction `xml:"action"`
}

type xmlActionMaps struct {
	XMLName        xml.Name       `xml:"ActionMaps"`
	Version        string         `xml:"version,attr"`
	OptionsVersion string         `xml:"optionsVersion,attr"`
	RebindVersion  string         `xml:"rebindVersion,attr"`
	ProfileName    string         `xml:"profileName,attr"`
	Header         xmlHeader      `xml:"CustomisationUIHeader"`
	Options        []xmlOptions   `xml:"options"`
	ActionMaps     []xmlActionMap `xml:"actionmap"`
}

// Export builds the simulator-ingestible ActionMaps XML for p. The
// returned bytes carry no XML declaration and are UTF-8 without a
// byte-order mark, both constraints the simulator enforces on load
// (spec.md §4.10).
func Export(p ExportProfile) ([]byte, error) {
	errs, _ := Validate(p, nil)
	if len(errs) > 0 {
		return nil, fmt.Errorf("bindingio: export validation failed: %s", strings.Join(errs, "; "))
	}

	doc := xmlActionMaps{
		Version:        actionMapsVersion,
		OptionsVersion: optionsVersionValue,
		RebindVersion:  rebindVersionValue,
		ProfileName:    p.ProfileName,
	}

	if p.Keyboard != nil {
		doc.Header.Keyboard = &xmlDeviceRef{Instance: p.Keyboard.Instance}
		doc.Options = append(doc.Options, xmlOptions{Type: "keyboard", Instance: p.Keyboard.Instance, Product: p.Keyboard.Product})
	}
	if p.Mouse != nil {
		doc.Header.Mouse = &xmlDeviceRef{Instance: p.Mouse.Instance}
		doc.Options = append(doc.Options, xmlOptions{Type: "mouse", Instance: p.Mouse.Instance, Product: p.Mouse.Product})
	}
	for _, js := range p.Joysticks {
		doc.Header.Joystick = append(doc.Header.Joystick, xmlDeviceRef{Instance: js.Instance})
		doc.Options = append(doc.Options, xmlOptions{Type: "joystick", Instance: js.Instance, Product: js.Product})
	}

	doc.ActionMaps = groupIntoActionMaps(p.Bindings)

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bindingio: marshal export: %w", err)
	}
	return out, nil
}

func groupIntoActionMaps(bindings []ExportBinding) []xmlActionMap {
	var order []string
	mapIndex := map[string]int{}
	var maps []xmlActionMap

	actionOrder := map[string][]string{}
	actionIndex := map[string]int{}

	for _, b := range bindings {
		mi, ok := mapIndex[b.ActionMap]
		if !ok {
			mi = len(maps)
			mapIndex[b.ActionMap] = mi
			maps = append(maps, xmlActionMap{Name: b.ActionMap})
			order = append(order, b.ActionMap)
		}

		actionKey := b.ActionMap + "/" + b.Action
		ai, ok := actionIndex[actionKey]
		if !ok {
			ai = len(maps[mi].Actions)
			actionIndex[actionKey] = ai
			maps[mi].Actions = append(maps[mi].Actions, xmlAction{Name: b.Action})
			actionOrder[b.ActionMap] = append(actionOrder[b.ActionMap], b.Action)
		}

		maps[mi].Actions[ai].Rebinds = append(maps[mi].Actions[ai].Rebinds, toRebind(b))
	}
	return maps
}

func toRebind(b ExportBinding) xmlRebind {
	input := fmt.Sprintf("%s%d_%s", devicePrefixNames[b.Device], b.Instance, encodeToken(b))

	rebind := xmlRebind{Input: input}
	if b.Kind == bindingschema.InputAxis && b.Inverted {
		rebind.Invert = "1"
	}
	if b.ActivationMode != bindingschema.ActivationPress {
		rebind.ActivationMode = activationModeNames[b.ActivationMode]
	}
	return rebind
}

func encodeToken(b ExportBinding) string {
	if len(b.Modifiers) == 0 {
		return b.Token
	}
	return strings.Join(b.Modifiers, "+") + "+" + b.Token
}
