package bindingschema

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
)

// The three magics the simulator's binary XML container ships under
// (spec.md §6.6); CryXmlB is current, the other two are legacy variants
// with the same node/attribute/string-table shape.
const (
	magicCryXmlB     = "CryXmlB"
	magicCryXml      = "CryXml"
	magicCRY3SDK     = "CRY3SDK"
	binaryHeaderWord = 8 // magic is padded to an 8-byte-aligned word
)

func isBinaryXML(data []byte) bool {
	return bytes.HasPrefix(data, []byte(magicCryXmlB)) ||
		bytes.HasPrefix(data, []byte(magicCryXml)) ||
		bytes.HasPrefix(data, []byte(magicCRY3SDK))
}

// binHeader mirrors the node-table/attribute-table/string-table layout
// documented by the community for the engine's binary XML container: a
// fixed header of table offsets/counts followed by flat tables and a
// single NUL-terminated string pool.
type binHeader struct {
	xmlSize           uint32
	nodeTableOffset   uint32
	nodeTableCount    uint32
	attrTableOffset   uint32
	attrTableCount    uint32
	childTableOffset  uint32
	childTableCount   uint32
	stringTableOffset uint32
}

type binNode struct {
	nameOffset      uint32
	contentOffset   uint32
	attrCount       uint32
	firstAttrIndex  uint32
	childCount      uint32
	firstChildIndex uint32
}

type binAttr struct {
	keyOffset   uint32
	valueOffset uint32
}

// ToStandardXML decodes the simulator's binary XML container to a standard
// XML document; a plain (non-magic-prefixed) blob is returned unmodified
// except for BOM stripping.
func ToStandardXML(data []byte) ([]byte, error) {
	if !isBinaryXML(data) {
		return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
	}

	h, err := readBinHeader(data)
	if err != nil {
		return nil, fmt.Errorf("bindingschema: binary xml header: %w", err)
	}

	nodes, err := readNodes(data, h)
	if err != nil {
		return nil, err
	}
	attrs, err := readAttrs(data, h)
	if err != nil {
		return nil, err
	}
	children, err := readChildIndices(data, h)
	if err != nil {
		return nil, err
	}
	strTable := data[h.stringTableOffset:]

	if len(nodes) == 0 {
		return nil, fmt.Errorf("bindingschema: binary xml has no nodes")
	}

	var out bytes.Buffer
	enc := xml.NewEncoder(&out)
	if err := encodeNode(enc, 0, nodes, attrs, children, strTable); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func readBinHeader(data []byte) (binHeader, error) {
	const headerSize = binaryHeaderWord + 8*4
	if len(data) < headerSize {
		return binHeader{}, fmt.Errorf("truncated header")
	}
	p := binaryHeaderWord
	read := func() uint32 {
		v := binary.LittleEndian.Uint32(data[p : p+4])
		p += 4
		return v
	}
	h := binHeader{}
	h.xmlSize = read()
	h.nodeTableOffset = read()
	h.nodeTableCount = read()
	h.attrTableOffset = read()
	h.attrTableCount = read()
	h.childTableOffset = read()
	h.childTableCount = read()
	h.stringTableOffset = read()
	if int(h.stringTableOffset) > len(data) {
		return binHeader{}, fmt.Errorf("string table offset out of range")
	}
	return h, nil
}

func readNodes(data []byte, h binHeader) ([]binNode, error) {
	const nodeSize = 24
	out := make([]binNode, h.nodeTableCount)
	p := int(h.nodeTableOffset)
	for i := range out {
		if p+nodeSize > len(data) {
			return nil, fmt.Errorf("bindingschema: node table truncated")
		}
		out[i] = binNode{
			nameOffset:      binary.LittleEndian.Uint32(data[p : p+4]),
			contentOffset:   binary.LittleEndian.Uint32(data[p+4 : p+8]),
			attrCount:       binary.LittleEndian.Uint32(data[p+8 : p+12]),
			firstAttrIndex:  binary.LittleEndian.Uint32(data[p+12 : p+16]),
			childCount:      binary.LittleEndian.Uint32(data[p+16 : p+20]),
			firstChildIndex: binary.LittleEndian.Uint32(data[p+20 : p+24]),
		}
		p += nodeSize
	}
	return out, nil
}

func readAttrs(data []byte, h binHeader) ([]binAttr, error) {
	const attrSize = 8
	out := make([]binAttr, h.attrTableCount)
	p := int(h.attrTableOffset)
	for i := range out {
		if p+attrSize > len(data) {
			return nil, fmt.Errorf("bindingschema: attribute table truncated")
		}
		out[i] = binAttr{
			keyOffset:   binary.LittleEndian.Uint32(data[p : p+4]),
			valueOffset: binary.LittleEndian.Uint32(data[p+4 : p+8]),
		}
		p += attrSize
	}
	return out, nil
}

func readChildIndices(data []byte, h binHeader) ([]uint32, error) {
	out := make([]uint32, h.childTableCount)
	p := int(h.childTableOffset)
	for i := range out {
		if p+4 > len(data) {
			return nil, fmt.Errorf("bindingschema: child table truncated")
		}
		out[i] = binary.LittleEndian.Uint32(data[p : p+4])
		p += 4
	}
	return out, nil
}

func readCString(strTable []byte, offset uint32) string {
	if int(offset) >= len(strTable) {
		return ""
	}
	end := bytes.IndexByte(strTable[offset:], 0)
	if end < 0 {
		return string(strTable[offset:])
	}
	return string(strTable[offset : int(offset)+end])
}

func encodeNode(enc *xml.Encoder, idx uint32, nodes []binNode, attrs []binAttr, children []uint32, strTable []byte) error {
	if int(idx) >= len(nodes) {
		return fmt.Errorf("bindingschema: node index %d out of range", idx)
	}
	n := nodes[idx]
	name := xml.Name{Local: readCString(strTable, n.nameOffset)}

	start := xml.StartElement{Name: name}
	for a := uint32(0); a < n.attrCount; a++ {
		ai := n.firstAttrIndex + a
		if int(ai) >= len(attrs) {
			return fmt.Errorf("bindingschema: attribute index %d out of range", ai)
		}
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: readCString(strTable, attrs[ai].keyOffset)},
			Value: readCString(strTable, attrs[ai].valueOffset),
		})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if content := readCString(strTable, n.contentOffset); content != "" {
		if err := enc.EncodeToken(xml.CharData(content)); err != nil {
			return err
		}
	}

	for c := uint32(0); c < n.childCount; c++ {
		ci := n.firstChildIndex + c
		if int(ci) >= len(children) {
			return fmt.Errorf("bindingschema: child index %d out of range", ci)
		}
		if err := encodeNode(enc, children[ci], nodes, attrs, children, strTable); err != nil {
			return err
		}
	}

	return enc.EncodeToken(xml.EndElement{Name: name})
}
