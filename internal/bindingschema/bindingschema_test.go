package bindingschema

import "testing"

const sampleXML = `<ActionMaps>
  <actionmap name="spaceship_general">
    <action name="v_pitch">
      <rebind input="js1_y"/>
    </action>
    <action name="v_strafe_forward" keyboard="w">
      <rebind input="js1_lctrl+x"/>
    </action>
    <action name="v_boost" activationMode="press">
      <rebind input="js1_1" activationMode="double_tap"/>
    </action>
  </actionmap>
</ActionMaps>`

func TestParseActionMaps(t *testing.T) {
	schema, err := Parse([]byte(sampleXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(schema.ActionMaps) != 1 {
		t.Fatalf("got %d actionmaps, want 1", len(schema.ActionMaps))
	}
	am := schema.ActionMaps[0]
	if am.Name != "spaceship_general" {
		t.Fatalf("got actionmap name %q", am.Name)
	}
	if len(am.Actions) != 3 {
		t.Fatalf("got %d actions, want 3", len(am.Actions))
	}

	pitch, ok := schema.Action("spaceship_general", "v_pitch")
	if !ok || len(pitch.Bindings) != 1 {
		t.Fatalf("v_pitch bindings: %+v", pitch)
	}
	if pitch.Bindings[0].Kind != InputAxis || pitch.Bindings[0].Device != DeviceJoystick {
		t.Fatalf("got %+v, want axis/joystick", pitch.Bindings[0])
	}

	strafe, ok := schema.Action("spaceship_general", "v_strafe_forward")
	if !ok || len(strafe.Bindings) != 2 {
		t.Fatalf("v_strafe_forward bindings: %+v", strafe)
	}
	var sawKeyboard, sawModified bool
	for _, b := range strafe.Bindings {
		if b.Device == DeviceKeyboard && b.Token == "w" {
			sawKeyboard = true
		}
		if b.Device == DeviceJoystick && b.Token == "x" && len(b.Modifiers) == 1 && b.Modifiers[0] == "lctrl" {
			sawModified = true
		}
	}
	if !sawKeyboard || !sawModified {
		t.Fatalf("got %+v", strafe.Bindings)
	}

	boost, ok := schema.Action("spaceship_general", "v_boost")
	if !ok || len(boost.Bindings) != 1 {
		t.Fatalf("v_boost bindings: %+v", boost)
	}
	if boost.Bindings[0].ActivationMode != ActivationDoubleTap {
		t.Fatalf("got activation mode %v, want DoubleTap", boost.Bindings[0].ActivationMode)
	}
}

func TestDiffAddedRemovedRenamed(t *testing.T) {
	oldSchema := Schema{ActionMaps: []ActionMapEntry{{
		Name: "map1",
		Actions: []Action{
			{Name: "v_old_name", Bindings: []Binding{{Device: DeviceJoystick, Token: "y"}}},
			{Name: "v_stable", Bindings: []Binding{{Device: DeviceJoystick, Token: "z"}}},
		},
	}}}
	newSchema := Schema{ActionMaps: []ActionMapEntry{{
		Name: "map1",
		Actions: []Action{
			{Name: "v_new_name", Bindings: []Binding{{Device: DeviceJoystick, Token: "y"}}},
			{Name: "v_stable", Bindings: []Binding{{Device: DeviceJoystick, Token: "z"}}},
			{Name: "v_brand_new", Bindings: []Binding{{Device: DeviceJoystick, Token: "rz"}}},
		},
	}}}

	report := Diff(oldSchema, newSchema)
	if len(report.Removed) != 1 || report.Removed[0] != "map1/v_old_name" {
		t.Fatalf("got removed %v", report.Removed)
	}
	foundBrandNew := false
	for _, a := range report.Added {
		if a == "map1/v_brand_new" {
			foundBrandNew = true
		}
	}
	if !foundBrandNew {
		t.Fatalf("got added %v, want to include map1/v_brand_new", report.Added)
	}
	if len(report.Renamed) != 1 || report.Renamed[0].OldName != "v_old_name" || report.Renamed[0].NewName != "v_new_name" {
		t.Fatalf("got renamed %v", report.Renamed)
	}
}

func TestParseTokenizedInput(t *testing.T) {
	b, ok := parseTokenizedInput("js2_lctrl+lshift+rz")
	if !ok {
		t.Fatalf("expected ok")
	}
	if b.Device != DeviceJoystick || b.Instance != 2 || b.Token != "rz" {
		t.Fatalf("got %+v", b)
	}
	if len(b.Modifiers) != 2 || b.Modifiers[0] != "lctrl" || b.Modifiers[1] != "lshift" {
		t.Fatalf("got modifiers %v", b.Modifiers)
	}
	if b.Kind != InputAxis {
		t.Fatalf("got kind %v, want axis", b.Kind)
	}
}

func TestParseTokenizedInputRejectsUnknownPrefix(t *testing.T) {
	if _, ok := parseTokenizedInput("xx1_y"); ok {
		t.Fatalf("expected unknown prefix to be rejected")
	}
}
