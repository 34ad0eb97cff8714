// Package retarget converts a source rig's local-space quaternion/position
// tracks onto the destination MMD-standard rig: per-bone name remapping,
// per-bone similarity transforms, and a coordinate-system flip.
package retarget

import "strings"

// boneNameMap is the fixed English-Mixamo → Japanese-MMD bone name
// table. Names absent from this table pass through unchanged.
var boneNameMap = map[string]string{
	"Hips":   "センター",
	"Spine":  "上半身",
	"Spine1": "上半身2",
	"Spine2": "上半身3",
	"Neck":   "首",
	"Head":   "頭",

	"LeftShoulder": "左肩",
	"LeftArm":      "左腕",
	"LeftForeArm":  "左ひじ",
	"LeftHand":     "左手首",

	"RightShoulder": "右肩",
	"RightArm":      "右腕",
	"RightForeArm":  "右ひじ",
	"RightHand":     "右手首",

	"LeftUpLeg":   "左足",
	"LeftLeg":     "左ひざ",
	"LeftFoot":    "左足首",
	"LeftToeBase": "左つま先",

	"RightUpLeg":   "右足",
	"RightLeg":     "右ひざ",
	"RightFoot":    "右足首",
	"RightToeBase": "右つま先",

	"LeftHandThumb1":  "左親指１",
	"LeftHandThumb2":  "左親指２",
	"LeftHandThumb3":  "左親指３",
	"LeftHandIndex1":  "左人指１",
	"LeftHandIndex2":  "左人指２",
	"LeftHandIndex3":  "左人指３",
	"LeftHandMiddle1": "左中指１",
	"LeftHandMiddle2": "左中指２",
	"LeftHandMiddle3": "左中指３",
	"LeftHandRing1":   "左薬指１",
	"LeftHandRing2":   "左薬指２",
	"LeftHandRing3":   "左薬指３",
	"LeftHandPinky1":  "左小指１",
	"LeftHandPinky2":  "左小指２",
	"LeftHandPinky3":  "左小指３",

	"RightHandThumb1":  "右親指１",
	"RightHandThumb2":  "右親指２",
	"RightHandThumb3":  "右親指３",
	"RightHandIndex1":  "右人指１",
	"RightHandIndex2":  "右人指２",
	"RightHandIndex3":  "右人指３",
	"RightHandMiddle1": "右中指１",
	"RightHandMiddle2": "右中指２",
	"RightHandMiddle3": "右中指３",
	"RightHandRing1":   "右薬指１",
	"RightHandRing2":   "右薬指２",
	"RightHandRing3":   "右薬指３",
	"RightHandPinky1":  "右小指１",
	"RightHandPinky2":  "右小指２",
	"RightHandPinky3":  "右小指３",
}

// stripMixamoPrefix removes a case-insensitive "mixamorig:" prefix.
func stripMixamoPrefix(name string) string {
	const prefix = "mixamorig:"
	if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		return name[len(prefix):]
	}
	return name
}

// MapBoneName resolves a source bone name (with any "mixamorig:" prefix
// stripped first) to its destination name. ok is false when the bone
// passes through unmapped.
func MapBoneName(sourceName string) (destName string, ok bool) {
	stripped := stripMixamoPrefix(sourceName)
	dest, found := boneNameMap[stripped]
	if !found {
		return stripped, false
	}
	return dest, true
}

// KnownBones returns every source bone name with a destination mapping,
// in no particular order.
func KnownBones() []string {
	out := make([]string, 0, len(boneNameMap))
	for name := range boneNameMap {
		out = append(out, name)
	}
	return out
}
