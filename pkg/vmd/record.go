package vmd

import (
	"encoding/binary"
	"math"
)

const (
	headerMagic   = "Vocaloid Motion Data 0002"
	headerSize    = 30
	modelNameSize = 20

	boneNameFieldSize   = 15
	boneFrameRecordSize = 111
	interpolationBytes  = 64
	interpolationValue  = byte(20)

	ikBoneNameFieldSize = 20
)

// ikDisableBoneNames are the six IK chains disabled in every emitted
// property keyframe, so raw per-bone rotations play back as authored
// instead of being driven by the destination engine's own IK solver.
var ikDisableBoneNames = []string{
	"右足ＩＫ",
	"左足ＩＫ",
	"右つま先ＩＫ",
	"左つま先ＩＫ",
	"右腕ＩＫ",
	"左腕ＩＫ",
}

// boneFrameRecord is one 111-byte bone-frame record.
type boneFrameRecord struct {
	BoneName               string
	Frame                  uint32
	PosX, PosY, PosZ       float32
	RotX, RotY, RotZ, RotW float32
}

// encode writes the record's fixed 111-byte layout. Non-finite floats
// are substituted: zero for position, identity for rotation.
func (r boneFrameRecord) encode() []byte {
	buf := make([]byte, boneFrameRecordSize)
	copy(buf[0:boneNameFieldSize], fixedField(r.BoneName, boneNameFieldSize))

	binary.LittleEndian.PutUint32(buf[15:19], r.Frame)

	px, py, pz := sanitizePosition(r.PosX, r.PosY, r.PosZ)
	putFloat32(buf[19:23], px)
	putFloat32(buf[23:27], py)
	putFloat32(buf[27:31], pz)

	rx, ry, rz, rw := sanitizeRotation(r.RotX, r.RotY, r.RotZ, r.RotW)
	putFloat32(buf[31:35], rx)
	putFloat32(buf[35:39], ry)
	putFloat32(buf[39:43], rz)
	putFloat32(buf[43:47], rw)

	for i := 47; i < boneFrameRecordSize; i++ {
		buf[i] = interpolationValue
	}
	return buf
}

func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func sanitizePosition(x, y, z float32) (float32, float32, float32) {
	return finiteOr(x, 0), finiteOr(y, 0), finiteOr(z, 0)
}

func sanitizeRotation(x, y, z, w float32) (float32, float32, float32, float32) {
	if !isFinite32(x) || !isFinite32(y) || !isFinite32(z) || !isFinite32(w) {
		return 0, 0, 0, 1
	}
	return x, y, z, w
}

func finiteOr(v, fallback float32) float32 {
	if isFinite32(v) {
		return v
	}
	return fallback
}

func isFinite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// propertyKeyframeSize is the encoded byte length of the single property
// keyframe every destination file carries: frame(4) + visible(1) +
// IK-entry count(4) + 6 * (20-byte name + 1-byte flag).
var propertyKeyframeSize = 4 + 1 + 4 + len(ikDisableBoneNames)*(ikBoneNameFieldSize+1)

// encodePropertyKeyframe writes the one fixed property keyframe that
// disables the destination engine's standard IK chains.
func encodePropertyKeyframe() []byte {
	buf := make([]byte, propertyKeyframeSize)
	offset := 0

	binary.LittleEndian.PutUint32(buf[offset:offset+4], 0)
	offset += 4

	buf[offset] = 1
	offset++

	binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(len(ikDisableBoneNames)))
	offset += 4

	for _, name := range ikDisableBoneNames {
		copy(buf[offset:offset+ikBoneNameFieldSize], fixedField(name, ikBoneNameFieldSize))
		offset += ikBoneNameFieldSize
		buf[offset] = 0
		offset++
	}

	return buf
}
