//go:build windows

package keystroke

import (
	"reflect"
	"testing"
)

func TestCanonicalizeOrder(t *testing.T) {
	got := canonicalize([]string{"win", "shift", "ctrl"})
	want := []string{"ctrl", "shift", "win"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("canonicalize = %v, want %v", got, want)
	}
}

func TestVkForLettersAndNamed(t *testing.T) {
	if vk, ok := VkFor("a"); !ok || vk != 'A' {
		t.Fatalf("VkFor(a) = %v,%v want 'A',true", vk, ok)
	}
	if vk, ok := VkFor("enter"); !ok || vk != 0x0D {
		t.Fatalf("VkFor(enter) = %v,%v want 0x0D,true", vk, ok)
	}
	if _, ok := VkFor("not-a-key"); ok {
		t.Fatalf("VkFor(not-a-key) should not resolve")
	}
}

func TestExtendedKeyFlagOnRightModifiers(t *testing.T) {
	if !extendedKeys[vkRControl] {
		t.Fatalf("right control must be an extended key")
	}
	if extendedKeys[vkLControl] {
		t.Fatalf("left control must not be an extended key")
	}
}

// KeyDown/KeyUp must press modifiers-then-key and release key-then-modifiers
// in exactly reversed order (spec.md §4.6).
func TestKeyDownUpOrder(t *testing.T) {
	s := New()
	var events []uint16
	var ups []bool
	s.send = func(vk uint16, up bool) {
		events = append(events, vk)
		ups = append(ups, up)
	}

	s.KeyDown("a", []string{"ctrl", "shift"})
	wantDown := []uint16{vkControl, vkShift, 'A'}
	if !reflect.DeepEqual(events, wantDown) {
		t.Fatalf("press order = %v, want %v", events, wantDown)
	}

	events, ups = nil, nil
	s.KeyUp("a", []string{"ctrl", "shift"})
	wantUp := []uint16{'A', vkShift, vkControl}
	if !reflect.DeepEqual(events, wantUp) {
		t.Fatalf("release order = %v, want %v", events, wantUp)
	}
	for _, u := range ups {
		if !u {
			t.Fatalf("all KeyUp events must carry the up flag")
		}
	}
}

func TestReleaseAllReversesPressOrder(t *testing.T) {
	s := New()
	var events []uint16
	s.send = func(vk uint16, up bool) { events = append(events, vk) }

	s.KeyDown("a", nil)
	s.KeyDown("b", nil)
	s.KeyDown("c", nil)

	events = nil
	s.ReleaseAll()
	want := []uint16{'C', 'B', 'A'}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("ReleaseAll order = %v, want %v", events, want)
	}
}
