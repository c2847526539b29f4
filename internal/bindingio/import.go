package bindingio

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/mazzeestudio/asteriq/internal/bindingschema"
)

type importRebind struct {
	Input          string `xml:"input,attr"`
	Invert         string `xml:"invert,attr"`
	ActivationMode string `xml:"activationMode,attr"`
}

type importAction struct {
	Name    string         `xml:"name,attr"`
	Rebinds []importRebind `xml:"rebind"`
}

type importActionMap struct {
	Name    string         `xml:"name,attr"`
	Actions []importAction `xml:"action"`
}

type importDoc struct {
	XMLName     xml.Name          `xml:"ActionMaps"`
	ProfileName string            `xml:"profileName,attr"`
	ActionMaps  []importActionMap `xml:"actionmap"`
}

// Import parses an exported ActionMaps document (§4.10) into a structured
// result with a success flag, the decoded binding list, and diagnostics.
// It never returns a Go error: malformed XML is reported as an Errors
// entry with Success=false, matching "Import returns null" semantics via
// the Success flag instead of a thrown error.
func Import(data []byte) ImportResult {
	var doc importDoc
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return ImportResult{Success: false, Errors: []string{fmt.Sprintf("malformed ActionMaps document: %v", err)}}
	}

	var bindings []ExportBinding
	for _, am := range doc.ActionMaps {
		for _, a := range am.Actions {
			for _, rb := range a.Rebinds {
				b, ok := decodeImportToken(rb.Input)
				if !ok {
					continue
				}
				b.ActionMap = am.Name
				b.Action = a.Name
				if rb.ActivationMode != "" {
					b.ActivationMode = parseActivationModeForImport(rb.ActivationMode)
				}
				if rb.Invert == "1" {
					b.Inverted = true
				}
				bindings = append(bindings, b)
			}
		}
	}

	profile := ExportProfile{ProfileName: doc.ProfileName, Bindings: bindings}
	errs, warnings := Validate(profile, nil)

	return ImportResult{
		Success:     len(errs) == 0,
		ProfileName: doc.ProfileName,
		Bindings:    bindings,
		Errors:      errs,
		Warnings:    warnings,
	}
}

// decodeImportToken wraps bindingschema's tokenized-input decoder and
// additionally skips tokens whose tail (after the underscore) is empty or
// a single whitespace character, per spec.md §4.10's import rule.
func decodeImportToken(raw string) (ExportBinding, bool) {
	underscore := -1
	for i, c := range raw {
		if c == '_' {
			underscore = i
			break
		}
	}
	if underscore >= 0 {
		tail := raw[underscore+1:]
		if tail == "" || tail == " " {
			return ExportBinding{}, false
		}
	}

	b, ok := bindingschema.ParseTokenizedInput(raw)
	if !ok {
		return ExportBinding{}, false
	}
	return ExportBinding{
		Device:         b.Device,
		Instance:       b.Instance,
		Modifiers:      b.Modifiers,
		Token:          b.Token,
		Kind:           b.Kind,
		Inverted:       b.Inverted,
		ActivationMode: b.ActivationMode,
	}, true
}

var importActivationModes = map[string]bindingschema.ActivationMode{
	"press":         bindingschema.ActivationPress,
	"hold":          bindingschema.ActivationHold,
	"double_tap":    bindingschema.ActivationDoubleTap,
	"triple_tap":    bindingschema.ActivationTripleTap,
	"delayed_press": bindingschema.ActivationDelayedPress,
}

func parseActivationModeForImport(s string) bindingschema.ActivationMode {
	if m, ok := importActivationModes[s]; ok {
		return m
	}
	return bindingschema.ActivationPress
}
