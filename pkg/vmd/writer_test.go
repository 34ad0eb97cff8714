package vmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanterneq/mixamo-vmd/pkg/anim"
	"github.com/lanterneq/mixamo-vmd/pkg/retarget"
)

func singleBoneClip() *retarget.RetargetedClip {
	return &retarget.RetargetedClip{
		Name:     "Take 001",
		Duration: 1,
		RotationTracks: []retarget.RetargetedRotationTrack{
			{DestBoneName: "センター", SourceBoneName: "mixamorig:Hips", Keys: []retarget.RetargetedRotationKey{
				{Time: 0, Quat: anim.IdentityQuat},
			}},
		},
		PositionTracks: []retarget.RetargetedPositionTrack{
			{DestBoneName: "センター", SourceBoneName: "mixamorig:Hips", Keys: []retarget.RetargetedPositionKey{
				{Time: 0, X: 0, Y: -0.3, Z: 0},
			}},
		},
	}
}

// TestWriteExactByteSize pins the blob-size arithmetic: header(30) +
// model name(20) + bone count(4) + 1 record(111) + four zero counts(16) +
// property count(4) + one property keyframe(135).
func TestWriteExactByteSize(t *testing.T) {
	t.Parallel()

	out := Write(singleBoneClip(), "TestModel", DefaultFPS)
	want := headerSize + modelNameSize + 4 + 1*boneFrameRecordSize + 4*4 + 4 + propertyKeyframeSize
	assert.Equal(t, want, len(out))
	assert.Equal(t, 320, want)
}

func TestWriteHeaderAndModelName(t *testing.T) {
	t.Parallel()

	out := Write(singleBoneClip(), "TestModel", DefaultFPS)
	assert.Equal(t, headerMagic, string(out[0:len(headerMagic)]))

	modelName := out[headerSize : headerSize+modelNameSize]
	assert.Equal(t, []byte("TestModel"), modelName[:len("TestModel")])
	for _, b := range modelName[len("TestModel"):] {
		assert.Equal(t, byte(0), b)
	}
}

func TestWriteBoneCountAndFrameCounts(t *testing.T) {
	t.Parallel()

	out := Write(singleBoneClip(), "TestModel", DefaultFPS)
	boneCountOffset := headerSize + modelNameSize
	boneCount := leUint32(out[boneCountOffset : boneCountOffset+4])
	assert.Equal(t, uint32(1), boneCount)

	zeroCountsOffset := boneCountOffset + 4 + boneFrameRecordSize
	for i := 0; i < 4; i++ {
		c := leUint32(out[zeroCountsOffset+i*4 : zeroCountsOffset+i*4+4])
		assert.Equal(t, uint32(0), c, "morph/camera/light/self-shadow counts must all be zero")
	}

	propCountOffset := zeroCountsOffset + 16
	propCount := leUint32(out[propCountOffset : propCountOffset+4])
	assert.Equal(t, uint32(1), propCount)
}

// TestWritePropertyKeyframeDisablesIK: the single property keyframe
// carries all six destination IK-chain names.
func TestWritePropertyKeyframeDisablesIK(t *testing.T) {
	t.Parallel()

	out := Write(singleBoneClip(), "TestModel", DefaultFPS)
	tailStart := len(out) - propertyKeyframeSize
	tail := out[tailStart:]

	count := leUint32(tail[5:9])
	require.Equal(t, uint32(6), count)

	offset := 9
	for _, name := range ikDisableBoneNames {
		field := tail[offset : offset+ikBoneNameFieldSize]
		assert.Equal(t, fixedField(name, ikBoneNameFieldSize), field)
		offset += ikBoneNameFieldSize + 1
	}
}

func TestWriteDefaultsToDefaultFPSWhenNonPositive(t *testing.T) {
	t.Parallel()

	out := Write(singleBoneClip(), "TestModel", 0)
	assert.Equal(t, 320, len(out))
}

func TestBuildBoneFrameRecordsMergesRotationAndPositionTimes(t *testing.T) {
	t.Parallel()

	clip := &retarget.RetargetedClip{
		RotationTracks: []retarget.RetargetedRotationTrack{
			{DestBoneName: "Bone", Keys: []retarget.RetargetedRotationKey{
				{Time: 0, Quat: anim.IdentityQuat},
				{Time: 1, Quat: anim.IdentityQuat},
			}},
		},
		PositionTracks: []retarget.RetargetedPositionTrack{
			{DestBoneName: "Bone", Keys: []retarget.RetargetedPositionKey{
				{Time: 0.5, X: 1, Y: 2, Z: 3},
			}},
		},
	}

	records := buildBoneFrameRecords(clip, 30)
	require.Len(t, records, 3)
	assert.Equal(t, uint32(0), records[0].Frame)
	assert.Equal(t, uint32(15), records[1].Frame)
	assert.Equal(t, uint32(30), records[2].Frame)
	assert.InDelta(t, 1.0, records[1].PosX, 1e-6)
}

func TestSampleRotationClampsAtEnds(t *testing.T) {
	t.Parallel()

	keys := []retarget.RetargetedRotationKey{
		{Time: 1, Quat: anim.FromAxisAngle(0, 0, 1, 0.5)},
		{Time: 2, Quat: anim.FromAxisAngle(0, 0, 1, 1.0)},
	}
	assert.Equal(t, keys[0].Quat, sampleRotation(keys, 0))
	assert.Equal(t, keys[1].Quat, sampleRotation(keys, 5))
	assert.Equal(t, anim.IdentityQuat, sampleRotation(nil, 0))
}

func TestSamplePositionLinearInterpolation(t *testing.T) {
	t.Parallel()

	keys := []retarget.RetargetedPositionKey{
		{Time: 0, X: 0, Y: 0, Z: 0},
		{Time: 2, X: 10, Y: 0, Z: 0},
	}
	x, y, z := samplePosition(keys, 1)
	assert.InDelta(t, 5.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)
	assert.InDelta(t, 0.0, z, 1e-9)
}
