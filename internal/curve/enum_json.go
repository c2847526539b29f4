package curve

import (
	"encoding/json"
	"fmt"
)

var kindNames = map[Kind]string{Linear: "linear", SCurve: "s_curve", Exponential: "exponential", Custom: "custom"}
var kindValues = map[string]Kind{"linear": Linear, "s_curve": SCurve, "exponential": Exponential, "custom": Custom}

func (k Kind) String() string { return kindNames[k] }

func (k Kind) MarshalJSON() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("curve: unknown Kind %d", k)
	}
	return json.Marshal(name)
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := kindValues[s]
	if !ok {
		return fmt.Errorf("curve: unknown Kind %q", s)
	}
	*k = v
	return nil
}

var deadzoneModeNames = map[DeadzoneMode]string{Centered: "centered", EndOnly: "end_only"}
var deadzoneModeValues = map[string]DeadzoneMode{"centered": Centered, "end_only": EndOnly}

func (m DeadzoneMode) String() string { return deadzoneModeNames[m] }

func (m DeadzoneMode) MarshalJSON() ([]byte, error) {
	name, ok := deadzoneModeNames[m]
	if !ok {
		return nil, fmt.Errorf("curve: unknown DeadzoneMode %d", m)
	}
	return json.Marshal(name)
}

func (m *DeadzoneMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := deadzoneModeValues[s]
	if !ok {
		return fmt.Errorf("curve: unknown DeadzoneMode %q", s)
	}
	*m = v
	return nil
}
