package mapping

import (
	"encoding/json"
	"fmt"
)

// Enums serialize as strings in the on-disk profile format (spec.md §6.1).

var inputKindNames = map[InputKind]string{KindAxis: "axis", KindButton: "button", KindHat: "hat"}
var inputKindValues = map[string]InputKind{"axis": KindAxis, "button": KindButton, "hat": KindHat}

func (k InputKind) String() string { return inputKindNames[k] }
func (k InputKind) MarshalJSON() ([]byte, error) {
	name, ok := inputKindNames[k]
	if !ok {
		return nil, fmt.Errorf("mapping: unknown InputKind %d", k)
	}
	return json.Marshal(name)
}
func (k *InputKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := inputKindValues[s]
	if !ok {
		return fmt.Errorf("mapping: unknown InputKind %q", s)
	}
	*k = v
	return nil
}

var outputKindNames = map[OutputKind]string{
	OutputVirtualAxis: "virtual_axis", OutputVirtualButton: "virtual_button",
	OutputVirtualPov: "virtual_pov", OutputKey: "key",
}
var outputKindValues = map[string]OutputKind{
	"virtual_axis": OutputVirtualAxis, "virtual_button": OutputVirtualButton,
	"virtual_pov": OutputVirtualPov, "key": OutputKey,
}

func (k OutputKind) String() string { return outputKindNames[k] }
func (k OutputKind) MarshalJSON() ([]byte, error) {
	name, ok := outputKindNames[k]
	if !ok {
		return nil, fmt.Errorf("mapping: unknown OutputKind %d", k)
	}
	return json.Marshal(name)
}
func (k *OutputKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := outputKindValues[s]
	if !ok {
		return fmt.Errorf("mapping: unknown OutputKind %q", s)
	}
	*k = v
	return nil
}

var mergeOpNames = map[MergeOp]string{MergeAverage: "average", MergeMin: "min", MergeMax: "max", MergeSum: "sum"}
var mergeOpValues = map[string]MergeOp{"average": MergeAverage, "min": MergeMin, "max": MergeMax, "sum": MergeSum}

func (m MergeOp) String() string { return mergeOpNames[m] }
func (m MergeOp) MarshalJSON() ([]byte, error) {
	name, ok := mergeOpNames[m]
	if !ok {
		return nil, fmt.Errorf("mapping: unknown MergeOp %d", m)
	}
	return json.Marshal(name)
}
func (m *MergeOp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := mergeOpValues[s]
	if !ok {
		return fmt.Errorf("mapping: unknown MergeOp %q", s)
	}
	*m = v
	return nil
}

var buttonModeNames = map[ButtonMode]string{Normal: "normal", Toggle: "toggle", Pulse: "pulse", HoldToActivate: "hold_to_activate"}
var buttonModeValues = map[string]ButtonMode{"normal": Normal, "toggle": Toggle, "pulse": Pulse, "hold_to_activate": HoldToActivate}

func (m ButtonMode) String() string { return buttonModeNames[m] }
func (m ButtonMode) MarshalJSON() ([]byte, error) {
	name, ok := buttonModeNames[m]
	if !ok {
		return nil, fmt.Errorf("mapping: unknown ButtonMode %d", m)
	}
	return json.Marshal(name)
}
func (m *ButtonMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := buttonModeValues[s]
	if !ok {
		return fmt.Errorf("mapping: unknown ButtonMode %q", s)
	}
	*m = v
	return nil
}
