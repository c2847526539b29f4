package config

import "testing"

func TestDefaultsAppliedOnFirstRun(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := s.Get()
	if got.Theme != "dark" || !got.AutoLoad || got.FontSizeScale != 1.0 {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := Settings{
		LastUsedProfileID: "p-123",
		AutoLoad:          false,
		Theme:             "light",
		FontSizeScale:     1.25,
		CloseToTray:       true,
		TrayIconKind:      "minimal",
		Window:            WindowGeometry{X: 10, Y: 20, Width: 800, Height: 600},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	got := reloaded.Get()
	if got.LastUsedProfileID != want.LastUsedProfileID || got.Theme != want.Theme ||
		got.AutoLoad != want.AutoLoad || got.CloseToTray != want.CloseToTray ||
		got.Window != want.Window {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
