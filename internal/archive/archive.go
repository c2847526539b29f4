// Package archive decodes the simulator's binary archive (spec.md §6.6,
// §4.9 step 3): a ZIP variant with PKZip classic ("ZipCrypto") encryption
// under a public key, whose entries are stored, deflated, or
// Zstandard-compressed (methods 93/100).
//
// stdlib archive/zip's documented central-directory/local-file-header
// binary layout is reused as the reference for the structures hand-parsed
// here (archive/zip offers no hook for a non-standard decryption filter
// layered on top of a standard decompressor, so the container is walked
// directly); stdlib compress/flate handles method 8; method 93/100 use
// github.com/klauspost/compress/zstd, declared indirect in the teacher's
// root go.mod and otherwise unused anywhere in the pack. The ZipCrypto
// stream cipher itself has no implementation anywhere in the pack or the
// wider Go ecosystem under a stable import path, so it is implemented
// directly against the published algorithm.
package archive

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

const (
	methodStore    = 0
	methodDeflate  = 8
	methodZstd93   = 93
	methodZstd100  = 100

	localFileHeaderSig = 0x04034b50
	centralDirSig      = 0x02014b50
	endOfCentralDirSig = 0x06054b50

	flagEncrypted = 0x1
)

// ErrNotFound is returned when the requested entry is absent from the archive.
var ErrNotFound = fmt.Errorf("archive: entry not found")

type centralDirEntry struct {
	method       uint16
	flags        uint16
	crc32        uint32
	compSize     uint32
	localOffset  uint32
	name         string
}

// Reader indexes a classic-encrypted ZIP's central directory for repeated
// entry extraction.
type Reader struct {
	data    []byte
	entries map[string]centralDirEntry
}

// Open indexes the central directory of a ZIP archive held fully in memory
// (the archive is bounded, spec.md §5's suspension-point note allows a
// long but single extraction off the hot path).
func Open(data []byte) (*Reader, error) {
	offset, err := findEndOfCentralDir(data)
	if err != nil {
		return nil, err
	}

	totalEntries := binary.LittleEndian.Uint16(data[offset+10 : offset+12])
	cdOffset := binary.LittleEndian.Uint32(data[offset+16 : offset+20])

	entries := make(map[string]centralDirEntry, totalEntries)
	p := int(cdOffset)
	for i := 0; i < int(totalEntries); i++ {
		if p+46 > len(data) || binary.LittleEndian.Uint32(data[p:p+4]) != centralDirSig {
			return nil, fmt.Errorf("archive: malformed central directory entry %d", i)
		}
		flags := binary.LittleEndian.Uint16(data[p+8 : p+10])
		method := binary.LittleEndian.Uint16(data[p+10 : p+12])
		crc := binary.LittleEndian.Uint32(data[p+16 : p+20])
		compSize := binary.LittleEndian.Uint32(data[p+20 : p+24])
		nameLen := int(binary.LittleEndian.Uint16(data[p+28 : p+30]))
		extraLen := int(binary.LittleEndian.Uint16(data[p+30 : p+32]))
		commentLen := int(binary.LittleEndian.Uint16(data[p+32 : p+34]))
		localOffset := binary.LittleEndian.Uint32(data[p+42 : p+46])
		name := string(data[p+46 : p+46+nameLen])

		entries[name] = centralDirEntry{
			method: method, flags: flags, crc32: crc,
			compSize: compSize, localOffset: localOffset, name: name,
		}
		p += 46 + nameLen + extraLen + commentLen
	}

	return &Reader{data: data, entries: entries}, nil
}

func findEndOfCentralDir(data []byte) (int, error) {
	// The end-of-central-directory record is a fixed 22 bytes plus an
	// optional comment at the very end of the file; scan backward for its
	// signature, matching archive/zip's own approach.
	maxScan := len(data)
	if maxScan > 65557 {
		maxScan = 65557
	}
	start := len(data) - maxScan
	for i := len(data) - 22; i >= start; i-- {
		if binary.LittleEndian.Uint32(data[i:i+4]) == endOfCentralDirSig {
			return i, nil
		}
	}
	return 0, fmt.Errorf("archive: end of central directory not found")
}

// Extract decrypts (if needed) and decompresses the named entry using key
// as the ZipCrypto password bytes.
func (r *Reader) Extract(name string, key []byte) ([]byte, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, ErrNotFound
	}

	lp := int(e.localOffset)
	if lp+30 > len(r.data) || binary.LittleEndian.Uint32(r.data[lp:lp+4]) != localFileHeaderSig {
		return nil, fmt.Errorf("archive: malformed local file header for %q", name)
	}
	nameLen := int(binary.LittleEndian.Uint16(r.data[lp+26 : lp+28]))
	extraLen := int(binary.LittleEndian.Uint16(r.data[lp+28 : lp+30]))
	dataStart := lp + 30 + nameLen + extraLen

	raw := r.data[dataStart : dataStart+int(e.compSize)]

	if e.flags&flagEncrypted != 0 {
		var err error
		raw, err = decryptZipCrypto(raw, key, e.crc32)
		if err != nil {
			return nil, fmt.Errorf("archive: decrypt %q: %w", name, err)
		}
	}

	switch e.method {
	case methodStore:
		return raw, nil
	case methodDeflate:
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return io.ReadAll(fr)
	case methodZstd93, methodZstd100:
		zr, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("archive: zstd init for %q: %w", name, err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("archive: unsupported compression method %d for %q", e.method, name)
	}
}

// Names lists every entry path in the archive.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return names
}
