package vmd

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/lanterneq/mixamo-vmd/pkg/anim"
	"github.com/lanterneq/mixamo-vmd/pkg/retarget"
)

// DefaultFPS is the output frame rate used when the caller does not
// override it.
const DefaultFPS = 30

// Write encodes a retargeted clip into the destination binary keyframe
// container at the given output frame rate. modelName is
// truncated/padded into the 20-byte header field. The writer is
// infallible given well-formed track arrays; it never returns an error.
func Write(clip *retarget.RetargetedClip, modelName string, fps int) []byte {
	if fps <= 0 {
		fps = DefaultFPS
	}

	records := buildBoneFrameRecords(clip, fps)

	buf := make([]byte, 0, headerSize+modelNameSize+4+len(records)*boneFrameRecordSize+4*4+4+propertyKeyframeSize)

	header := make([]byte, headerSize)
	copy(header, headerMagic)
	buf = append(buf, header...)
	buf = append(buf, fixedField(modelName, modelNameSize)...)

	buf = appendUint32(buf, uint32(len(records)))
	for _, r := range records {
		buf = append(buf, r.encode()...)
	}

	// Morph, camera, light, and self-shadow keyframe counts: always zero.
	for i := 0; i < 4; i++ {
		buf = appendUint32(buf, 0)
	}

	buf = appendUint32(buf, 1)
	buf = append(buf, encodePropertyKeyframe()...)

	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// buildBoneFrameRecords assigns a frame index to every merged track
// time: the union of rotation and position times per bone,
// `round(t * fps)`, interpolating rotation with slerp and position
// linearly at non-native times, defaulting to identity rotation or zero
// position when a bone carries only the other track. Records are sorted
// by frame index, ties broken by lexicographic destination bone name on
// the pre-encoded name.
func buildBoneFrameRecords(clip *retarget.RetargetedClip, fps int) []boneFrameRecord {
	type boneTimeline struct {
		destName string
		rot      []retarget.RetargetedRotationKey
		pos      []retarget.RetargetedPositionKey
	}

	timelines := make(map[string]*boneTimeline)
	order := make([]string, 0)

	get := func(name string) *boneTimeline {
		tl, ok := timelines[name]
		if !ok {
			tl = &boneTimeline{destName: name}
			timelines[name] = tl
			order = append(order, name)
		}
		return tl
	}

	for _, t := range clip.RotationTracks {
		tl := get(t.DestBoneName)
		tl.rot = t.Keys
	}
	for _, t := range clip.PositionTracks {
		tl := get(t.DestBoneName)
		tl.pos = t.Keys
	}

	var records []boneFrameRecord
	for _, name := range order {
		tl := timelines[name]
		times := mergeFrameTimes(tl.rot, tl.pos)
		for _, t := range times {
			q := sampleRotation(tl.rot, t)
			x, y, z := samplePosition(tl.pos, t)
			records = append(records, boneFrameRecord{
				BoneName: name,
				Frame:    uint32(math.Round(t * float64(fps))),
				PosX:     float32(x), PosY: float32(y), PosZ: float32(z),
				RotX: float32(q.X), RotY: float32(q.Y), RotZ: float32(q.Z), RotW: float32(q.W),
			})
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Frame != records[j].Frame {
			return records[i].Frame < records[j].Frame
		}
		return records[i].BoneName < records[j].BoneName
	})

	return records
}

func mergeFrameTimes(rot []retarget.RetargetedRotationKey, pos []retarget.RetargetedPositionKey) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	add := func(t float64) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, k := range rot {
		add(k.Time)
	}
	for _, k := range pos {
		add(k.Time)
	}
	sort.Float64s(out)
	return out
}

func sampleRotation(keys []retarget.RetargetedRotationKey, t float64) anim.Quat {
	n := len(keys)
	if n == 0 {
		return anim.IdentityQuat
	}
	if t <= keys[0].Time {
		return keys[0].Quat
	}
	if t >= keys[n-1].Time {
		return keys[n-1].Quat
	}
	for i := 1; i < n; i++ {
		if t <= keys[i].Time {
			t0, t1 := keys[i-1].Time, keys[i].Time
			if t1 == t0 {
				return keys[i].Quat
			}
			frac := (t - t0) / (t1 - t0)
			return anim.Slerp(keys[i-1].Quat, keys[i].Quat, frac)
		}
	}
	return keys[n-1].Quat
}

func samplePosition(keys []retarget.RetargetedPositionKey, t float64) (x, y, z float64) {
	n := len(keys)
	if n == 0 {
		return 0, 0, 0
	}
	if t <= keys[0].Time {
		k := keys[0]
		return k.X, k.Y, k.Z
	}
	if t >= keys[n-1].Time {
		k := keys[n-1]
		return k.X, k.Y, k.Z
	}
	for i := 1; i < n; i++ {
		if t <= keys[i].Time {
			t0, t1 := keys[i-1].Time, keys[i].Time
			if t1 == t0 {
				k := keys[i]
				return k.X, k.Y, k.Z
			}
			frac := (t - t0) / (t1 - t0)
			a, b := keys[i-1], keys[i]
			return a.X + (b.X-a.X)*frac, a.Y + (b.Y-a.Y)*frac, a.Z + (b.Z-a.Z)*frac
		}
	}
	k := keys[n-1]
	return k.X, k.Y, k.Z
}
