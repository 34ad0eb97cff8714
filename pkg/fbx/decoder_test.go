package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- test fixture builder: a minimal encoder mirroring decoder.go's node
// layout, used only to construct synthetic source files for Decode tests.

type fixtureProp struct {
	encode func() []byte
}

func fxInt64(v int64) fixtureProp {
	return fixtureProp{func() []byte {
		b := make([]byte, 9)
		b[0] = 'L'
		binary.LittleEndian.PutUint64(b[1:], uint64(v))
		return b
	}}
}

func fxString(s string) fixtureProp {
	return fixtureProp{func() []byte {
		var buf bytes.Buffer
		buf.WriteByte('S')
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
		buf.Write(lenBuf[:])
		buf.WriteString(s)
		return buf.Bytes()
	}}
}

func fxArrInt64Raw(vals []int64) fixtureProp {
	return fixtureProp{func() []byte {
		payload := make([]byte, len(vals)*8)
		for i, v := range vals {
			binary.LittleEndian.PutUint64(payload[i*8:], uint64(v))
		}
		return arrayPropBytes('l', uint32(len(vals)), 0, payload)
	}}
}

func fxArrFloat32Raw(vals []float32) fixtureProp {
	return fixtureProp{func() []byte {
		payload := make([]byte, len(vals)*4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(v))
		}
		return arrayPropBytes('f', uint32(len(vals)), 0, payload)
	}}
}

func fxArrFloat32Deflate(vals []float32) fixtureProp {
	return fixtureProp{func() []byte {
		raw := make([]byte, len(vals)*4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
		}
		var compressed bytes.Buffer
		w := zlib.NewWriter(&compressed)
		_, _ = w.Write(raw)
		_ = w.Close()
		return arrayPropBytes('f', uint32(len(vals)), 1, compressed.Bytes())
	}}
}

func arrayPropBytes(tag byte, count, encoding uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(tag)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], count)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], encoding)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(payload)))
	buf.Write(tmp[:])
	buf.Write(payload)
	return buf.Bytes()
}

type fixtureNode struct {
	name     string
	props    []fixtureProp
	children []fixtureNode
}

// appendNode writes spec's node record into buf (already containing the
// file header, so len(buf) is the absolute file offset) and returns the
// updated buffer. It mirrors readNode's layout exactly, including the
// trailing null record every node (leaf or not) carries before its
// end_offset.
func appendNode(buf []byte, wide bool, spec fixtureNode) []byte {
	headerWordSize := 4
	if wide {
		headerWordSize = 8
	}

	endOffsetPos := len(buf)
	buf = appendHeaderWordPlaceholder(buf, wide)
	numPropsPos := len(buf)
	buf = appendHeaderWordPlaceholder(buf, wide)
	propListLenPos := len(buf)
	buf = appendHeaderWordPlaceholder(buf, wide)

	buf = append(buf, byte(len(spec.name)))
	buf = append(buf, []byte(spec.name)...)

	propsStart := len(buf)
	for _, p := range spec.props {
		buf = append(buf, p.encode()...)
	}
	propsLen := len(buf) - propsStart

	for _, c := range spec.children {
		buf = appendNode(buf, wide, c)
	}

	nullRecord := make([]byte, headerWordSize*3+1)
	buf = append(buf, nullRecord...)

	endOffset := uint64(len(buf))
	patchHeaderWord(buf, endOffsetPos, wide, endOffset)
	patchHeaderWord(buf, numPropsPos, wide, uint64(len(spec.props)))
	patchHeaderWord(buf, propListLenPos, wide, uint64(propsLen))

	return buf
}

func appendHeaderWordPlaceholder(buf []byte, wide bool) []byte {
	n := 4
	if wide {
		n = 8
	}
	return append(buf, make([]byte, n)...)
}

func patchHeaderWord(buf []byte, pos int, wide bool, v uint64) {
	if wide {
		binary.LittleEndian.PutUint64(buf[pos:], v)
		return
	}
	binary.LittleEndian.PutUint32(buf[pos:], uint32(v))
}

func buildFile(version uint32, nodes []fixtureNode) []byte {
	var buf []byte
	buf = append(buf, []byte(magic)...)
	buf = append(buf, magicSentinel[:]...)
	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], version)
	buf = append(buf, verBuf[:]...)

	wide := version >= version7500
	for _, n := range nodes {
		buf = appendNode(buf, wide, n)
	}
	// top-level sentinel: a single zero end_offset word.
	buf = appendHeaderWordPlaceholder(buf, wide)
	return buf
}

// --- tests

func TestDecodeBadMagic(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("not an fbx file at all"))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	data := buildFile(7400, []fixtureNode{{name: "Objects"}})
	_, err := Decode(data[:len(data)-20])
	assert.Error(t, err)
}

func TestDecodeUnknownPropertyTag(t *testing.T) {
	t.Parallel()

	bogus := fixtureNode{name: "Bad", props: []fixtureProp{{encode: func() []byte { return []byte{'Q'} }}}}
	data := buildFile(7400, []fixtureNode{bogus})
	_, err := Decode(data)
	assert.Error(t, err)
}

func TestDecodeRoundTripMinimal(t *testing.T) {
	t.Parallel()

	nodes := []fixtureNode{
		{
			name: "Objects",
			children: []fixtureNode{
				{name: "Model", props: []fixtureProp{fxInt64(3000), fxString("Model::Hips")}},
			},
		},
		{name: "Connections"},
	}
	data := buildFile(7400, nodes)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "Objects", decoded[0].Name)
	assert.Equal(t, "Connections", decoded[1].Name)

	models := decoded[0].Nodes("Model")
	require.Len(t, models, 1)
	idProp, ok := models[0].Prop(0, nil)
	require.True(t, ok)
	id, _ := idProp.Int64()
	assert.Equal(t, int64(3000), id)
}

func TestDecodeWideHeader(t *testing.T) {
	t.Parallel()

	nodes := []fixtureNode{
		{name: "Objects", children: []fixtureNode{
			{name: "Model", props: []fixtureProp{fxInt64(1)}},
		}},
	}
	data := buildFile(7700, nodes)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Len(t, decoded[0].Children, 1)
}

func TestDecodeArrayRawAndDeflate(t *testing.T) {
	t.Parallel()

	nodes := []fixtureNode{
		{
			name: "Curve",
			children: []fixtureNode{
				{name: "KeyTime", props: []fixtureProp{fxArrInt64Raw([]int64{0, 1000})}},
				{name: "KeyValueFloat", props: []fixtureProp{fxArrFloat32Deflate([]float32{0, 90})}},
			},
		},
	}
	data := buildFile(7400, nodes)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	keyTime, ok := decoded[0].Node("KeyTime")
	require.True(t, ok)
	p, ok := keyTime.Prop(0, nil)
	require.True(t, ok)
	times, isArr := p.ArrayInt64()
	require.True(t, isArr)
	assert.Equal(t, []int64{0, 1000}, times)

	keyValue, ok := decoded[0].Node("KeyValueFloat")
	require.True(t, ok)
	vp, ok := keyValue.Prop(0, nil)
	require.True(t, ok)
	values, isArr := vp.ArrayFloat32()
	require.True(t, isArr)
	assert.InDeltaSlice(t, []float64{0, 90}, toFloat64Slice(values), 1e-6)
}

func toFloat64Slice(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func TestDecodeArrayPayloadShorterThanCount(t *testing.T) {
	t.Parallel()

	// count claims 4 int64 elements but the payload holds only one.
	short := fixtureNode{name: "Curve", props: []fixtureProp{
		{encode: func() []byte { return arrayPropBytes('l', 4, 0, make([]byte, 8)) }},
	}}
	data := buildFile(7400, []fixtureNode{short})
	_, err := Decode(data)
	assert.Error(t, err)
}

func TestDecodeScalarProperties(t *testing.T) {
	t.Parallel()

	props := []fixtureProp{
		{encode: func() []byte { return []byte{'Y', 0x05, 0x00} }}, // int16 = 5
		{encode: func() []byte { return []byte{'C', 1} }},          // bool = true
		{encode: func() []byte {
			b := make([]byte, 5)
			b[0] = 'I'
			v := int32(-7)
			binary.LittleEndian.PutUint32(b[1:], uint32(v))
			return b
		}},
		{encode: func() []byte {
			b := make([]byte, 5)
			b[0] = 'F'
			binary.LittleEndian.PutUint32(b[1:], math.Float32bits(3.5))
			return b
		}},
		{encode: func() []byte {
			b := make([]byte, 9)
			b[0] = 'D'
			binary.LittleEndian.PutUint64(b[1:], math.Float64bits(2.25))
			return b
		}},
		fxInt64(123456789),
	}

	data := buildFile(7400, []fixtureNode{{name: "Vals", props: props}})
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	n := decoded[0]
	i16, ok := mustProp(t, n, 0).Int16()
	assert.True(t, ok)
	assert.Equal(t, int16(5), i16)

	b, ok := mustProp(t, n, 1).Bool()
	assert.True(t, ok)
	assert.True(t, b)

	i32, ok := mustProp(t, n, 2).Int32()
	assert.True(t, ok)
	assert.Equal(t, int32(-7), i32)

	f32, ok := mustProp(t, n, 3).Float32()
	assert.True(t, ok)
	assert.InDelta(t, 3.5, f32, 1e-6)

	f64, ok := mustProp(t, n, 4).Float64()
	assert.True(t, ok)
	assert.InDelta(t, 2.25, f64, 1e-12)

	i64, ok := mustProp(t, n, 5).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(123456789), i64)
}

func mustProp(t *testing.T, n Node, idx int) Property {
	t.Helper()
	p, ok := n.Prop(idx, nil)
	require.True(t, ok)
	return p
}

func TestDecodeQualifiedNameSwap(t *testing.T) {
	t.Parallel()

	raw := string([]byte{'B'}) + "\x00\x01" + "A"
	data := buildFile(7400, []fixtureNode{{name: "N", props: []fixtureProp{fxString(raw)}}})

	decoded, err := Decode(data)
	require.NoError(t, err)
	p := mustProp(t, decoded[0], 0)
	s, ok := p.String()
	require.True(t, ok)
	assert.Equal(t, "A::B", s)
}

func TestDecodeMultipleTopLevelNodes(t *testing.T) {
	t.Parallel()

	nodes := []fixtureNode{
		{name: "Objects", children: []fixtureNode{
			{name: "Model", props: []fixtureProp{fxInt64(1), fxString("Hips")}},
			{name: "Model", props: []fixtureProp{fxInt64(2), fxString("Spine")}},
		}},
		{name: "Connections"},
	}
	data := buildFile(7400, nodes)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, decoded, 2)
}
