package mapping

import "fmt"

// Validate checks the structural invariants LoadProfile enforces before
// accepting a profile: every mapping has at least one input source, pulse
// and hold durations are positive, axis-to-button threshold is in [-1, 1]
// and hysteresis in [0, 0.5], button-to-axis pressed/released values are in
// [-1, 1], and every referenced layer is defined. It does not check merge
// operators, AxisCurve parameters (deadzone edges, saturation, curvature,
// control points), or output indices against slot capability.
func Validate(p Profile) error {
	for _, m := range p.AxisMappings {
		if err := validateBase(m.Base); err != nil {
			return fmt.Errorf("axis mapping %s: %w", m.ID, err)
		}
	}
	for _, m := range p.ButtonMappings {
		if err := validateBase(m.Base); err != nil {
			return fmt.Errorf("button mapping %s: %w", m.ID, err)
		}
		if m.Mode == Pulse && m.PulseMs <= 0 {
			return fmt.Errorf("button mapping %s: pulse mode requires pulse_ms > 0", m.ID)
		}
		if m.Mode == HoldToActivate && m.HoldMs <= 0 {
			return fmt.Errorf("button mapping %s: hold-to-activate requires hold_ms > 0", m.ID)
		}
	}
	for _, m := range p.HatMappings {
		if err := validateBase(m.Base); err != nil {
			return fmt.Errorf("hat mapping %s: %w", m.ID, err)
		}
	}
	for _, m := range p.AxisToButtonMappings {
		if err := validateBase(m.Base); err != nil {
			return fmt.Errorf("axis-to-button mapping %s: %w", m.ID, err)
		}
		if m.Threshold < -1 || m.Threshold > 1 {
			return fmt.Errorf("axis-to-button mapping %s: threshold out of [-1,1]", m.ID)
		}
		if m.Hysteresis < 0 || m.Hysteresis > 0.5 {
			return fmt.Errorf("axis-to-button mapping %s: hysteresis out of [0,0.5]", m.ID)
		}
	}
	for _, m := range p.ButtonToAxisMappings {
		if err := validateBase(m.Base); err != nil {
			return fmt.Errorf("button-to-axis mapping %s: %w", m.ID, err)
		}
		if m.PressedValue < -1 || m.PressedValue > 1 || m.ReleasedValue < -1 || m.ReleasedValue > 1 {
			return fmt.Errorf("button-to-axis mapping %s: pressed/released value out of [-1,1]", m.ID)
		}
	}

	layerIDs := make(map[string]bool, len(p.Layers))
	for _, l := range p.Layers {
		layerIDs[l.ID] = true
	}
	for _, lid := range allLayerRefs(p) {
		if lid != "" && !layerIDs[lid] {
			return fmt.Errorf("mapping references undefined layer %q", lid)
		}
	}

	return nil
}

func validateBase(b Base) error {
	if len(b.Inputs) == 0 {
		return fmt.Errorf("requires at least one input source")
	}
	return nil
}

func allLayerRefs(p Profile) []string {
	var ids []string
	for _, m := range p.AxisMappings {
		ids = append(ids, m.LayerID)
	}
	for _, m := range p.ButtonMappings {
		ids = append(ids, m.LayerID)
	}
	for _, m := range p.HatMappings {
		ids = append(ids, m.LayerID)
	}
	for _, m := range p.AxisToButtonMappings {
		ids = append(ids, m.LayerID)
	}
	for _, m := range p.ButtonToAxisMappings {
		ids = append(ids, m.LayerID)
	}
	return ids
}
