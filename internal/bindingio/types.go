// Package bindingio builds and parses the simulator's exported rebinding
// XML (spec.md §4.10, §6.7), reusing bindingschema's device/activation-mode
// vocabulary since the two formats share the same tokenized-input shape.
package bindingio

import "github.com/mazzeestudio/asteriq/internal/bindingschema"

// DeviceInstance is one configured physical device entry for the
// CustomisationUIHeader block.
type DeviceInstance struct {
	Instance int
	Product  string // product identifier sufficient to bind the slot at load time
}

// ExportBinding is one rebind entry: an action's assignment to a device
// input.
type ExportBinding struct {
	ActionMap      string
	Action         string
	Device         bindingschema.Device
	Instance       int
	Modifiers      []string
	Token          string
	Kind           bindingschema.InputKind
	Inverted       bool
	ActivationMode bindingschema.ActivationMode
}

// ExportProfile is the input to Export: a profile name, the configured
// device instances, and the full binding list.
type ExportProfile struct {
	ProfileName string
	Keyboard    *DeviceInstance
	Mouse       *DeviceInstance
	Joysticks   []DeviceInstance
	Bindings    []ExportBinding
}

// ImportResult is the structured outcome of Import (spec.md §4.10).
type ImportResult struct {
	Success     bool
	ProfileName string
	Bindings    []ExportBinding
	Errors      []string
	Warnings    []string
}
