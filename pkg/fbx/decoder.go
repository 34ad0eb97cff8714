// Package fbx decodes the source binary scene-description container: a
// tagged-node tree with typed, optionally deflate-compressed array
// properties. It is the leaf of the pipeline and knows
// nothing about animation, bones, or the destination format.
package fbx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// magic is the 20-byte ASCII header every source file begins with,
// followed by the 3 sentinel bytes validated in Decode (23 bytes in all).
const magic = "Kaydara FBX Binary  "

var magicSentinel = [3]byte{0x00, 0x1A, 0x00}

// version7500 is the version at and above which node headers switch from
// 32-bit to 64-bit offsets/counts.
const version7500 = 7500

// ErrBadMagic is returned when the header does not match the expected
// 20-byte magic plus 3 sentinel bytes.
var ErrBadMagic = errors.New("fbx: bad magic header")

// Decode parses data into the forest of top-level nodes. It fails
// eagerly and as a whole on any format error: bad magic,
// truncated record, unknown property tag, or corrupted deflate stream.
func Decode(data []byte) ([]Node, error) {
	r := &reader{data: data}

	if err := r.readMagic(); err != nil {
		return nil, err
	}

	version, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("fbx: reading version: %w", err)
	}
	r.wide = version >= version7500

	var nodes []Node
	for {
		node, consumed, err := r.readNode()
		if err != nil {
			return nil, err
		}
		if !consumed {
			break
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// reader tracks a read cursor over the raw container bytes and the node
// header width (32 vs 64 bit) selected by the file version.
type reader struct {
	data []byte
	pos  int
	wide bool
}

func (r *reader) readMagic() error {
	if len(r.data) < len(magic)+len(magicSentinel) {
		return ErrBadMagic
	}
	if string(r.data[:len(magic)]) != magic {
		return ErrBadMagic
	}
	off := len(magic)
	for i, b := range magicSentinel {
		if r.data[off+i] != b {
			return ErrBadMagic
		}
	}
	r.pos = off + len(magicSentinel)
	return nil
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) readInt16() (int16, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (r *reader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *reader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *reader) readFloat32() (float32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) readFloat64() (float64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// readHeaderWord reads either a 32 or 64-bit unsigned value depending on
// the file version, the width used by end_offset, num_properties, and
// property_list_length.
func (r *reader) readHeaderWord() (uint64, error) {
	if r.wide {
		return r.readUint64()
	}
	v, err := r.readUint32()
	return uint64(v), err
}

// readNode reads one top-level or nested node record. consumed is false
// when the record is the zero-end_offset sentinel marking the end of a
// sibling list; in that case no node is returned and the cursor is left
// positioned just past the sentinel's end_offset word.
func (r *reader) readNode() (Node, bool, error) {
	startPos := r.pos

	endOffset, err := r.readHeaderWord()
	if err != nil {
		return Node{}, false, fmt.Errorf("fbx: reading end_offset: %w", err)
	}
	if endOffset == 0 {
		return Node{}, false, nil
	}

	numProperties, err := r.readHeaderWord()
	if err != nil {
		return Node{}, false, fmt.Errorf("fbx: reading num_properties: %w", err)
	}

	if _, err := r.readHeaderWord(); err != nil { // property_list_length, unused by this decoder
		return Node{}, false, fmt.Errorf("fbx: reading property_list_length: %w", err)
	}

	nameLenB, err := r.readBytes(1)
	if err != nil {
		return Node{}, false, fmt.Errorf("fbx: reading name length: %w", err)
	}
	nameLen := int(nameLenB[0])

	nameBytes, err := r.readBytes(nameLen)
	if err != nil {
		return Node{}, false, fmt.Errorf("fbx: reading name: %w", err)
	}

	node := Node{Name: string(nameBytes)}

	for i := uint64(0); i < numProperties; i++ {
		prop, err := r.readProperty()
		if err != nil {
			return Node{}, false, fmt.Errorf("fbx: reading property %d of node %q: %w", i, node.Name, err)
		}
		node.Properties = append(node.Properties, prop)
	}

	for uint64(r.pos)+13 < endOffset {
		child, consumed, err := r.readNode()
		if err != nil {
			return Node{}, false, err
		}
		if !consumed {
			break
		}
		node.Children = append(node.Children, child)
	}

	if uint64(r.pos) > endOffset {
		return Node{}, false, fmt.Errorf("fbx: node %q at offset %d overran end_offset %d", node.Name, startPos, endOffset)
	}
	r.pos = int(endOffset)

	return node, true, nil
}

// readProperty reads one typed property by its one-byte tag. Unknown
// tags are fatal.
func (r *reader) readProperty() (Property, error) {
	tagB, err := r.readBytes(1)
	if err != nil {
		return Property{}, err
	}

	switch tagB[0] {
	case 'Y':
		v, err := r.readInt16()
		return Property{Type: PropertyInt16, i16: v}, err
	case 'C':
		b, err := r.readBytes(1)
		if err != nil {
			return Property{}, err
		}
		return Property{Type: PropertyBool, b: b[0] != 0}, nil
	case 'I':
		v, err := r.readInt32()
		return Property{Type: PropertyInt32, i32: v}, err
	case 'F':
		v, err := r.readFloat32()
		return Property{Type: PropertyFloat32, f32: v}, err
	case 'D':
		v, err := r.readFloat64()
		return Property{Type: PropertyFloat64, f64: v}, err
	case 'L':
		v, err := r.readInt64()
		return Property{Type: PropertyInt64, i64: v}, err
	case 'S':
		return r.readStringProperty()
	case 'R':
		return r.readRawProperty()
	case 'f':
		return r.readArrayFloat32Property()
	case 'd':
		return r.readArrayFloat64Property()
	case 'l':
		return r.readArrayInt64Property()
	case 'i':
		return r.readArrayInt32Property()
	case 'b':
		return r.readArrayBoolProperty()
	default:
		return Property{}, fmt.Errorf("fbx: unknown property tag %q (0x%02x)", tagB[0], tagB[0])
	}
}

func (r *reader) readStringProperty() (Property, error) {
	length, err := r.readUint32()
	if err != nil {
		return Property{}, err
	}
	raw, err := r.readBytes(int(length))
	if err != nil {
		return Property{}, err
	}
	return Property{Type: PropertyString, str: decodeStringValue(raw)}, nil
}

func (r *reader) readRawProperty() (Property, error) {
	length, err := r.readUint32()
	if err != nil {
		return Property{}, err
	}
	raw, err := r.readBytes(int(length))
	if err != nil {
		return Property{}, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return Property{Type: PropertyRaw, raw: out}, nil
}

// qualifiedNameSentinel is the two-byte marker inside a string property
// that denotes a qualified name: the two halves around it are swapped and
// joined with "::".
var qualifiedNameSentinel = []byte{0x00, 0x01}

func decodeStringValue(raw []byte) string {
	if idx := bytes.Index(raw, qualifiedNameSentinel); idx >= 0 {
		left := raw[:idx]
		right := raw[idx+len(qualifiedNameSentinel):]
		return string(right) + "::" + string(left)
	}
	return string(raw)
}

// arrayHeader is the common prefix of every array-typed property: element
// count, an encoding flag (0 raw, 1 deflate), and the byte length of the
// (possibly compressed) payload that follows.
type arrayHeader struct {
	count      uint32
	encoding   uint32
	byteLength uint32
}

func (r *reader) readArrayHeader() (arrayHeader, error) {
	count, err := r.readUint32()
	if err != nil {
		return arrayHeader{}, err
	}
	encoding, err := r.readUint32()
	if err != nil {
		return arrayHeader{}, err
	}
	byteLength, err := r.readUint32()
	if err != nil {
		return arrayHeader{}, err
	}
	return arrayHeader{count: count, encoding: encoding, byteLength: byteLength}, nil
}

// arrayPayload returns the decompressed (if needed) bytes for an array
// property, read sequentially and not retained beyond this call per
// not retained beyond this call. elemSize guards the payload against a
// count that overruns it; a short payload is a truncated record.
func (r *reader) arrayPayload(h arrayHeader, elemSize int) ([]byte, error) {
	compressed, err := r.readBytes(int(h.byteLength))
	if err != nil {
		return nil, err
	}

	var out []byte
	switch h.encoding {
	case 0:
		out = make([]byte, len(compressed))
		copy(out, compressed)
	case 1:
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("fbx: opening deflate stream: %w", err)
		}
		defer zr.Close()
		out, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("fbx: inflating array: %w", err)
		}
	default:
		return nil, fmt.Errorf("fbx: unknown array encoding %d", h.encoding)
	}

	if len(out) < int(h.count)*elemSize {
		return nil, fmt.Errorf("fbx: array payload holds %d bytes, need %d: %w", len(out), int(h.count)*elemSize, io.ErrUnexpectedEOF)
	}
	return out, nil
}

func (r *reader) readArrayFloat32Property() (Property, error) {
	h, err := r.readArrayHeader()
	if err != nil {
		return Property{}, err
	}
	payload, err := r.arrayPayload(h, 4)
	if err != nil {
		return Property{}, err
	}
	vals := make([]float32, h.count)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return Property{Type: PropertyArrayFloat32, arrF32: vals}, nil
}

func (r *reader) readArrayFloat64Property() (Property, error) {
	h, err := r.readArrayHeader()
	if err != nil {
		return Property{}, err
	}
	payload, err := r.arrayPayload(h, 8)
	if err != nil {
		return Property{}, err
	}
	vals := make([]float64, h.count)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return Property{Type: PropertyArrayFloat64, arrF64: vals}, nil
}

func (r *reader) readArrayInt32Property() (Property, error) {
	h, err := r.readArrayHeader()
	if err != nil {
		return Property{}, err
	}
	payload, err := r.arrayPayload(h, 4)
	if err != nil {
		return Property{}, err
	}
	vals := make([]int32, h.count)
	for i := range vals {
		vals[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return Property{Type: PropertyArrayInt32, arrI32: vals}, nil
}

func (r *reader) readArrayInt64Property() (Property, error) {
	h, err := r.readArrayHeader()
	if err != nil {
		return Property{}, err
	}
	payload, err := r.arrayPayload(h, 8)
	if err != nil {
		return Property{}, err
	}
	vals := make([]int64, h.count)
	for i := range vals {
		vals[i] = int64(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return Property{Type: PropertyArrayInt64, arrI64: vals}, nil
}

func (r *reader) readArrayBoolProperty() (Property, error) {
	h, err := r.readArrayHeader()
	if err != nil {
		return Property{}, err
	}
	payload, err := r.arrayPayload(h, 1)
	if err != nil {
		return Property{}, err
	}
	vals := make([]bool, h.count)
	for i := range vals {
		vals[i] = payload[i] != 0
	}
	return Property{Type: PropertyArrayBool, arrBool: vals}, nil
}
