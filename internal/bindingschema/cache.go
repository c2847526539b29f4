package bindingschema

import (
	"fmt"
	"os"
	"path/filepath"
)

// Cache stores extracted default-profile XML at
// <cache_root>/sc_profiles/<environment>_<buildid>.xml (spec.md §6.3),
// short-circuiting archive extraction on a hit.
type Cache struct {
	dir string
}

// NewCache roots a Cache at <cacheRoot>/sc_profiles.
func NewCache(cacheRoot string) (*Cache, error) {
	dir := filepath.Join(cacheRoot, "sc_profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("bindingschema: create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the cache key for an installation: (environment, build id)
// when a build id was read from the manifest, otherwise the environment
// plus the archive's size and modification time (Unix seconds), written
// out as plain decimal fields rather than hashed.
func Key(inst Installation) (string, error) {
	if inst.BuildID != "" {
		return fmt.Sprintf("%s_%s", inst.Environment, inst.BuildID), nil
	}
	info, err := os.Stat(inst.ArchivePath)
	if err != nil {
		return "", fmt.Errorf("bindingschema: stat archive for cache key: %w", err)
	}
	return fmt.Sprintf("%s_sz%d_mt%d", inst.Environment, info.Size(), info.ModTime().Unix()), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".xml")
}

// Get returns the cached XML for key, or ok=false on a miss.
func (c *Cache) Get(key string) (data []byte, ok bool) {
	b, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return b, true
}

// Put stores xmlData under key, atomically (temp file + rename, matching
// the profile store's write pattern).
func (c *Cache) Put(key string, xmlData []byte) error {
	final := c.path(key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, xmlData, 0o644); err != nil {
		return fmt.Errorf("bindingschema: write cache entry: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("bindingschema: commit cache entry: %w", err)
	}
	return nil
}
