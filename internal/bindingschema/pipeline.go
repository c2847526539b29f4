package bindingschema

import (
	"fmt"
	"os"

	"github.com/mazzeestudio/asteriq/internal/archive"
)

// defaultProfileEntryName is the archive entry holding the default-profile
// binding XML (spec.md §4.9 step 3).
const defaultProfileEntryName = "Data/Libs/Config/defaultProfile.xml"

// Load runs the full extraction pipeline for inst: cache check, archive
// extraction, binary-XML conversion, and action parsing. A cache hit skips
// straight to parsing the cached XML.
func Load(inst Installation, cache *Cache) (Schema, error) {
	key, err := Key(inst)
	if err != nil {
		return Schema{}, err
	}

	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			return Parse(cached)
		}
	}

	archiveData, err := os.ReadFile(inst.ArchivePath)
	if err != nil {
		return Schema{}, fmt.Errorf("bindingschema: read archive: %w", err)
	}

	reader, err := archive.Open(archiveData)
	if err != nil {
		return Schema{}, fmt.Errorf("bindingschema: open archive: %w", err)
	}

	blob, err := reader.Extract(defaultProfileEntryName, archive.DefaultKey())
	if err != nil {
		return Schema{}, fmt.Errorf("bindingschema: extract default profile: %w", err)
	}

	xmlData, err := ToStandardXML(blob)
	if err != nil {
		return Schema{}, fmt.Errorf("bindingschema: decode binary xml: %w", err)
	}

	if cache != nil {
		_ = cache.Put(key, xmlData)
	}

	return Parse(xmlData)
}
