// Package profilestore implements the Profile Store (spec.md §6.1): JSON
// persistence for Mapping Profiles under Profiles/<uuid>.json, one file per
// profile, tolerant of unknown fields on load.
//
// Grounded on the teacher's JSON-everywhere convention
// (backend/internal/hub/message.go marshals every outbound WSMessage with
// plain encoding/json), applied here to profile files instead of websocket
// envelopes. Profile ids are github.com/google/uuid v4 strings -- declared
// in the pack's vincent99-velocipi go.mod but unused by any kept source, so
// named rather than grounded, per the out-of-pack-dependency rule.
package profilestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mazzeestudio/asteriq/internal/mapping"
)

// ErrNotFound is returned by Load/Delete when no profile with the given id
// exists.
var ErrNotFound = errors.New("profilestore: profile not found")

// Store is a JSON-file-backed profile repository rooted at dir.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("profilestore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create assigns a fresh uuid to p, stamps CreatedAt/ModifiedAt, and saves it.
func (s *Store) Create(p mapping.Profile) (mapping.Profile, error) {
	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt = now
	p.ModifiedAt = now
	return p, s.Save(p)
}

// Save validates p and writes it to Profiles/<id>.json, overwriting any
// existing file. ModifiedAt is refreshed on every save.
func (s *Store) Save(p mapping.Profile) error {
	if p.ID == "" {
		return errors.New("profilestore: profile has no id")
	}
	p.ModifiedAt = time.Now()
	return s.writeFile(p)
}

// writeFile validates p and atomically writes it to Profiles/<id>.json
// without touching its timestamps, so callers that must preserve an
// existing ModifiedAt (Duplicate) can bypass Save's stamping.
func (s *Store) writeFile(p mapping.Profile) error {
	if err := mapping.Validate(p); err != nil {
		return fmt.Errorf("profilestore: %w", err)
	}

	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profilestore: marshal %s: %w", p.ID, err)
	}

	tmp := s.path(p.ID) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("profilestore: write %s: %w", p.ID, err)
	}
	return os.Rename(tmp, s.path(p.ID))
}

// Load reads Profiles/<id>.json, tolerating unknown fields (spec.md §6.1).
func (s *Store) Load(id string) (mapping.Profile, error) {
	return s.loadFile(s.path(id), id)
}

// LoadFromPath reads and decodes a profile from an arbitrary file path,
// rather than one rooted at the store's directory (spec.md §4.8).
func (s *Store) LoadFromPath(path string) (mapping.Profile, error) {
	return s.loadFile(path, path)
}

func (s *Store) loadFile(path, label string) (mapping.Profile, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return mapping.Profile{}, ErrNotFound
	}
	if err != nil {
		return mapping.Profile{}, fmt.Errorf("profilestore: read %s: %w", label, err)
	}
	var p mapping.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return mapping.Profile{}, fmt.Errorf("profilestore: parse %s: %w", label, err)
	}
	return p, nil
}

// Delete removes Profiles/<id>.json.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// Duplicate loads id, assigns it a fresh uuid and newName, and saves the
// copy under the new id. Per spec.md §4.8 the duplicate preserves the
// original's CreatedAt/ModifiedAt rather than stamping ModifiedAt to now.
func (s *Store) Duplicate(id, newName string) (mapping.Profile, error) {
	p, err := s.Load(id)
	if err != nil {
		return mapping.Profile{}, err
	}
	p.ID = uuid.NewString()
	p.Name = newName
	if err := s.writeFile(p); err != nil {
		return mapping.Profile{}, err
	}
	return p, nil
}

// Export loads id and writes it, unchanged, to an arbitrary file path
// (spec.md §4.8) for hand-off outside the store's own directory.
func (s *Store) Export(id, path string) error {
	p, err := s.Load(id)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profilestore: marshal %s: %w", id, err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Import reads a profile from an arbitrary file path and saves it into the
// store. By default (generateNewID true) it is assigned a fresh uuid to
// prevent colliding with an existing profile of the same id (spec.md §4.8).
func (s *Store) Import(path string, generateNewID bool) (mapping.Profile, error) {
	p, err := s.LoadFromPath(path)
	if err != nil {
		return mapping.Profile{}, err
	}
	if generateNewID || p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.Save(p); err != nil {
		return mapping.Profile{}, err
	}
	return p, nil
}

// Summary is a lightweight listing entry, avoiding a full profile
// unmarshal per file when only metadata is needed for UI display.
type Summary struct {
	ID         string
	Name       string
	ModifiedAt time.Time
	FilePath   string
	// MappingCount is the total number of mappings across all five kinds,
	// read from the raw JSON array lengths without decoding mapping bodies.
	MappingCount int
}

// profileMeta mirrors only the metadata fields of mapping.Profile, leaving
// each mapping list as raw JSON so List can report counts without paying
// for a full unmarshal of every AxisCurve/control-point body (spec.md
// §4.8: "list returns only metadata ... without deserializing mapping
// bodies").
type profileMeta struct {
	ID         string
	Name       string
	ModifiedAt time.Time

	AxisMappings         []json.RawMessage
	ButtonMappings       []json.RawMessage
	HatMappings          []json.RawMessage
	AxisToButtonMappings []json.RawMessage
	ButtonToAxisMappings []json.RawMessage
}

// List enumerates every stored profile's metadata.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("profilestore: list %s: %w", s.dir, err)
	}

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			continue // skip unreadable/corrupt entries rather than failing the whole listing
		}
		var m profileMeta
		if err := json.Unmarshal(b, &m); err != nil {
			continue
		}
		out = append(out, Summary{
			ID:         m.ID,
			Name:       m.Name,
			ModifiedAt: m.ModifiedAt,
			FilePath:   path,
			MappingCount: len(m.AxisMappings) + len(m.ButtonMappings) + len(m.HatMappings) +
				len(m.AxisToButtonMappings) + len(m.ButtonToAxisMappings),
		})
	}
	return out, nil
}
