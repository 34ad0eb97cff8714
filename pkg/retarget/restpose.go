package retarget

import "github.com/lanterneq/mixamo-vmd/pkg/anim"

// restOrientation is the fixed table of rest-pose quaternions q_a, one
// per source bone name that needs a non-identity similarity transform.
// Bones absent from this table take the identity path in Retarget.
//
// LeftArm's value is the calibrated source-rig rest orientation; the
// other entries are estimated from it: RightArm mirrored across the
// sagittal plane, forearms left at identity since the upper and lower
// arm bones share the same twist-free rest axis on this rig. See
// DESIGN.md for the calibration notes.
var restOrientation = map[string]anim.Quat{
	"LeftArm":      {X: 0.5, Y: 0.5, Z: -0.5, W: 0.5},
	"LeftForeArm":  anim.IdentityQuat,
	"RightArm":     {X: 0.5, Y: -0.5, Z: -0.5, W: -0.5},
	"RightForeArm": anim.IdentityQuat,
}

// armShoulderAngle is the fixed 35° arm-shoulder adjustment angle
// between the source rig's A-pose arms and the destination rig's.
const armShoulderAngle = 35.0 * 3.14159265358979323846 / 180.0

// qLeftAdjust and qRightAdjust are Q_L = rot(Z, +35°) and Q_R = rot(Z,
// -35°).
var (
	qLeftAdjust  = anim.FromAxisAngle(0, 0, 1, armShoulderAngle)
	qRightAdjust = anim.FromAxisAngle(0, 0, 1, -armShoulderAngle)
)

// leftOutboundSet and rightOutboundSet name the bones that receive a
// before-composition (q_l side) adjustment: the arm and every
// corresponding hand finger bone.
var (
	leftOutboundSet  = memberSet(append(fingerNames("Left"), "LeftArm"))
	rightOutboundSet = memberSet(append(fingerNames("Right"), "RightArm"))
)

// leftAfterSet and rightAfterSet name the bones that additionally
// receive an after-composition (q_r side) adjustment: the forearm and
// every finger bone.
var (
	leftAfterSet  = memberSet(append(fingerNames("Left"), "LeftForeArm"))
	rightAfterSet = memberSet(append(fingerNames("Right"), "RightForeArm"))
)

func fingerNames(side string) []string {
	var out []string
	for _, finger := range []string{"Thumb", "Index", "Middle", "Ring", "Pinky"} {
		for joint := 1; joint <= 3; joint++ {
			out = append(out, side+"Hand"+finger+string(rune('0'+joint)))
		}
	}
	return out
}

func memberSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// transformPair is a bone's precomputed (q_l, q_r) similarity-transform
// pair.
type transformPair struct {
	QL, QR anim.Quat
}

// transformPairs holds the precomputed pair of every bone in
// restOrientation, built once
// at package initialization and treated as immutable thereafter.
var transformPairs = buildTransformPairs()

func buildTransformPairs() map[string]transformPair {
	out := make(map[string]transformPair, len(restOrientation))
	for bone, qa := range restOrientation {
		out[bone] = transformPairFor(bone, qa)
	}
	return out
}

// transformPairFor applies the arm-shoulder adjustment membership rules
// to a bone's rest orientation q_a.
func transformPairFor(bone string, qa anim.Quat) transformPair {
	ql := qa
	switch {
	case leftOutboundSet[bone]:
		ql = qRightAdjust.Mul(qa)
	case rightOutboundSet[bone]:
		ql = qLeftAdjust.Mul(qa)
	}

	qr := qa.Conjugate()
	switch {
	case leftAfterSet[bone]:
		qr = qa.Conjugate().Mul(qLeftAdjust)
	case rightAfterSet[bone]:
		qr = qa.Conjugate().Mul(qRightAdjust)
	}

	return transformPair{QL: ql, QR: qr}
}

// lookupTransformPair returns the precomputed pair for a (prefix-stripped)
// source bone name, if any.
func lookupTransformPair(strippedSourceName string) (transformPair, bool) {
	pair, ok := transformPairs[strippedSourceName]
	return pair, ok
}

// Lookup reports a source bone's destination name and whether it carries
// a precomputed retarget pair, for `-list-bones` style introspection.
func Lookup(sourceName string) (destName string, hasPair bool) {
	stripped := stripMixamoPrefix(sourceName)
	destName, _ = MapBoneName(sourceName)
	_, hasPair = transformPairs[stripped]
	return destName, hasPair
}
