package bindingio

import "fmt"

// Validate checks p against spec.md §4.10's rules. A missing profile name
// is the only error (aborts Export); empty binding list, duplicate
// (action, device) pairs, and references to virtual slots absent from
// knownSlots are warnings. knownSlots may be nil to skip that check (e.g.
// during Import, where slot configuration isn't yet known).
func Validate(p ExportProfile, knownSlots map[int]bool) (errors, warnings []string) {
	if p.ProfileName == "" {
		errors = append(errors, "profile name is required")
	}
	if len(p.Bindings) == 0 {
		warnings = append(warnings, "binding list is empty")
	}

	seen := map[string]bool{}
	for _, b := range p.Bindings {
		key := fmt.Sprintf("%s/%s|%d|%d", b.ActionMap, b.Action, b.Device, b.Instance)
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate binding for action %q on device instance %d", b.Action, b.Instance))
			continue
		}
		seen[key] = true

		if knownSlots != nil && !knownSlots[b.Instance] {
			warnings = append(warnings, fmt.Sprintf("action %q references unmapped virtual slot %d", b.Action, b.Instance))
		}
	}

	return errors, warnings
}
