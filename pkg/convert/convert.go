// Package convert exposes the pipeline's three-call programmatic
// surface: load, retarget, write VMD.
package convert

import (
	"github.com/lanterneq/mixamo-vmd/pkg/anim"
	"github.com/lanterneq/mixamo-vmd/pkg/fbx"
	"github.com/lanterneq/mixamo-vmd/pkg/infrastructure/logger"
	"github.com/lanterneq/mixamo-vmd/pkg/retarget"
	"github.com/lanterneq/mixamo-vmd/pkg/vmd"
)

// Load decodes a source binary scene container and extracts its
// animation clips. Format errors are fatal and returned;
// missing-structure conditions inside an otherwise well-formed file are
// logged and skipped.
func Load(data []byte, log logger.Logger) ([]*anim.Clip, error) {
	nodes, err := fbx.Decode(data)
	if err != nil {
		return nil, err
	}
	return anim.Extract(nodes, log), nil
}

// Retarget converts every source-rig clip onto the destination rig.
// Duration is resolved on each clip before retargeting.
func Retarget(clips []*anim.Clip) []*retarget.RetargetedClip {
	out := make([]*retarget.RetargetedClip, len(clips))
	for i, c := range clips {
		c.ResolveDuration()
		out[i] = retarget.Retarget(c)
	}
	return out
}

// WriteVMD encodes one retargeted clip into the destination binary
// container at the given output frame rate.
func WriteVMD(clip *retarget.RetargetedClip, modelName string, fps int) []byte {
	return vmd.Write(clip, modelName, fps)
}
