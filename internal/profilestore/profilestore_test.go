package profilestore

import (
	"path/filepath"
	"testing"

	"github.com/mazzeestudio/asteriq/internal/mapping"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestCreateSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := mapping.Profile{Name: "HOTAS Default", AxisMappings: []mapping.AxisMapping{{
		Base: mapping.Base{ID: "a1", Enabled: true,
			Inputs: []mapping.InputSource{{DeviceID: "d", Kind: mapping.KindAxis, Index: 0}},
			Output: mapping.OutputTarget{Kind: mapping.OutputVirtualAxis, Slot: 1, Axis: 0}},
	}}}

	created, err := s.Create(p)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("Create did not assign an id")
	}

	loaded, err := s.Load(created.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "HOTAS Default" {
		t.Fatalf("got name %q, want %q", loaded.Name, "HOTAS Default")
	}
	if len(loaded.AxisMappings) != 1 {
		t.Fatalf("got %d axis mappings, want 1", len(loaded.AxisMappings))
	}
}

func TestLoadMissingReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("does-not-exist"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSaveRejectsMappingWithNoInputs(t *testing.T) {
	s := newTestStore(t)
	p := mapping.Profile{ID: "bad", AxisMappings: []mapping.AxisMapping{{Base: mapping.Base{ID: "a1", Enabled: true}}}}
	if err := s.Save(p); err == nil {
		t.Fatalf("expected validation error for a mapping with no inputs")
	}
}

func TestListReturnsSummaries(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(mapping.Profile{Name: "One"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(mapping.Profile{Name: "Two"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	summaries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
}

func TestDeleteMissingReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("nope"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDuplicatePreservesTimestampsUnderNewID(t *testing.T) {
	s := newTestStore(t)
	original, err := s.Create(mapping.Profile{Name: "Original"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup, err := s.Duplicate(original.ID, "Copy")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == original.ID {
		t.Fatalf("Duplicate kept the original id")
	}
	if dup.Name != "Copy" {
		t.Fatalf("got name %q, want %q", dup.Name, "Copy")
	}
	if !dup.CreatedAt.Equal(original.CreatedAt) || !dup.ModifiedAt.Equal(original.ModifiedAt) {
		t.Fatalf("Duplicate did not preserve timestamps: got %+v, want %+v", dup, original)
	}

	reloaded, err := s.Load(dup.ID)
	if err != nil {
		t.Fatalf("Load duplicate: %v", err)
	}
	if reloaded.Name != "Copy" {
		t.Fatalf("reloaded duplicate has name %q, want %q", reloaded.Name, "Copy")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Create(mapping.Profile{Name: "Exported"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out := filepath.Join(t.TempDir(), "exported.json")
	if err := s.Export(created.ID, out); err != nil {
		t.Fatalf("Export: %v", err)
	}

	imported, err := s.Import(out, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.ID == created.ID {
		t.Fatalf("Import with generateNewID=true kept the original id")
	}
	if imported.Name != "Exported" {
		t.Fatalf("got name %q, want %q", imported.Name, "Exported")
	}

	reloaded, err := s.Load(imported.ID)
	if err != nil {
		t.Fatalf("Load imported: %v", err)
	}
	if reloaded.Name != "Exported" {
		t.Fatalf("reloaded import has name %q, want %q", reloaded.Name, "Exported")
	}
}

func TestLoadFromPathReadsArbitraryFile(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Create(mapping.Profile{Name: "Loose"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out := filepath.Join(t.TempDir(), "loose.json")
	if err := s.Export(created.ID, out); err != nil {
		t.Fatalf("Export: %v", err)
	}

	loaded, err := s.LoadFromPath(out)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Name != "Loose" {
		t.Fatalf("got name %q, want %q", loaded.Name, "Loose")
	}
}

func TestListDoesNotInflateMappingCountFromBodies(t *testing.T) {
	s := newTestStore(t)
	p := mapping.Profile{Name: "WithMappings", AxisMappings: []mapping.AxisMapping{{
		Base: mapping.Base{ID: "a1", Enabled: true,
			Inputs: []mapping.InputSource{{DeviceID: "d", Kind: mapping.KindAxis, Index: 0}},
			Output: mapping.OutputTarget{Kind: mapping.OutputVirtualAxis, Slot: 1, Axis: 0}},
	}}}
	if _, err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	summaries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].MappingCount != 1 {
		t.Fatalf("got MappingCount %d, want 1", summaries[0].MappingCount)
	}
	if summaries[0].FilePath == "" {
		t.Fatalf("expected a non-empty FilePath")
	}
}
