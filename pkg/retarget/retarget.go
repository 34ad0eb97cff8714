package retarget

import (
	"github.com/google/uuid"

	"github.com/lanterneq/mixamo-vmd/pkg/anim"
)

// positionScale, positionYOffset are the fixed hips-translation retarget
// constants between source units and destination units.
const (
	positionScale   = 1.0 / 12.5
	positionYOffset = -8.3
)

// RetargetedRotationKey is one (time, destination-space quaternion) sample.
type RetargetedRotationKey struct {
	Time float64
	Quat anim.Quat
}

// RetargetedRotationTrack is a bone's rotation track after retargeting,
// expressed in the destination rig's local space and coordinate system.
type RetargetedRotationTrack struct {
	DestBoneName   string
	SourceBoneName string
	Keys           []RetargetedRotationKey
}

// RetargetedPositionKey is one (time, (x, y, z)) sample in destination
// units.
type RetargetedPositionKey struct {
	Time    float64
	X, Y, Z float64
}

// RetargetedPositionTrack is a bone's position track after retargeting.
type RetargetedPositionTrack struct {
	DestBoneName   string
	SourceBoneName string
	Keys           []RetargetedPositionKey
}

// RetargetedClip is the retargeter's output: one clip's worth of
// destination-space tracks, ready for pkg/vmd.
type RetargetedClip struct {
	ID       uuid.UUID
	Name     string
	Duration float64

	RotationTracks []RetargetedRotationTrack
	PositionTracks []RetargetedPositionTrack
}

// Retarget converts a decoded clip's source-space tracks into
// destination-space tracks: per-bone similarity transform, name
// remapping, translation rescale, and the final coordinate flip.
func Retarget(clip *anim.Clip) *RetargetedClip {
	out := &RetargetedClip{
		ID:       clip.ID,
		Name:     clip.Name,
		Duration: clip.Duration,
	}

	for _, track := range clip.RotationTracks {
		out.RotationTracks = append(out.RotationTracks, retargetRotationTrack(track))
	}
	for _, track := range clip.PositionTracks {
		out.PositionTracks = append(out.PositionTracks, retargetPositionTrack(track))
	}

	return out
}

func retargetRotationTrack(track anim.RotationTrack) RetargetedRotationTrack {
	stripped := stripMixamoPrefix(track.BoneName)
	destName, _ := MapBoneName(track.BoneName)
	pair, hasPair := lookupTransformPair(stripped)

	keys := make([]RetargetedRotationKey, len(track.Keys))
	for i, k := range track.Keys {
		q := k.Quat
		if hasPair {
			q = pair.QL.Mul(q).Mul(pair.QR)
		}
		keys[i] = RetargetedRotationKey{Time: k.Time, Quat: flipCoordinates(q)}
	}

	return RetargetedRotationTrack{
		DestBoneName:   destName,
		SourceBoneName: track.BoneName,
		Keys:           keys,
	}
}

// retargetPositionTrack rotates each key by the bone's left-side pair
// quaternion q_l (identity when the bone has no pair), then applies the
// 1/12.5 scale, the Y offset, and the Z flip.
func retargetPositionTrack(track anim.PositionTrack) RetargetedPositionTrack {
	stripped := stripMixamoPrefix(track.BoneName)
	destName, _ := MapBoneName(track.BoneName)
	pair, hasPair := lookupTransformPair(stripped)

	ql := anim.IdentityQuat
	if hasPair {
		ql = pair.QL
	}

	keys := make([]RetargetedPositionKey, len(track.Keys))
	for i, k := range track.Keys {
		rx, ry, rz := ql.RotateVec(k.X, k.Y, k.Z)
		x := rx * positionScale
		y := ry*positionScale + positionYOffset
		z := -(rz * positionScale)
		keys[i] = RetargetedPositionKey{Time: k.Time, X: x, Y: y, Z: z}
	}

	return RetargetedPositionTrack{
		DestBoneName:   destName,
		SourceBoneName: track.BoneName,
		Keys:           keys,
	}
}

// flipCoordinates applies the final (x, y, z, w) -> (x, y, -z, -w)
// coordinate-system flip common to every retargeted rotation.
func flipCoordinates(q anim.Quat) anim.Quat {
	return anim.Quat{X: q.X, Y: q.Y, Z: -q.Z, W: -q.W}
}
