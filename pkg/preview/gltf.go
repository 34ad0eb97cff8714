// Package preview writes a retargeted skeleton and its animation as a
// glTF document for debug inspection: no mesh data exists in this
// pipeline, but the retargeted bone hierarchy and its
// quaternion/position tracks can be loaded into any glTF viewer before
// handing the `.vmd` file to the destination rendering engine.
package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/lanterneq/mixamo-vmd/pkg/anim"
	"github.com/lanterneq/mixamo-vmd/pkg/retarget"
)

// Format selects the glTF output container: a JSON+buffers tree or one
// packed binary file.
type Format int

const (
	// FormatGlTF writes the separate-files .gltf form.
	FormatGlTF Format = iota
	// FormatGlb writes the single packed .glb form.
	FormatGlb
)

// Write builds a glTF document for clip's retargeted skeleton and
// animation and saves it to fileName. sourceClip supplies the bone parent
// map (by source bone name); clip supplies the retargeted tracks (by
// destination bone name).
func Write(sourceClip *anim.Clip, clip *retarget.RetargetedClip, fileName string, format Format) error {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "mixamo-vmd"
	doc.Scenes = append(doc.Scenes, &gltf.Scene{Name: "Scene"})
	doc.Scene = gltf.Index(0)

	nodeIdx, roots := addSkeletonNodes(doc, sourceClip, clip)
	doc.Scenes[0].Nodes = roots

	addAnimation(doc, clip, nodeIdx)

	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return fmt.Errorf("preview: create output directory: %w", err)
	}

	if format == FormatGlb {
		if err := gltf.SaveBinary(doc, fileName); err != nil {
			return fmt.Errorf("preview: write glb: %w", err)
		}
		return nil
	}

	if err := gltf.Save(doc, fileName); err != nil {
		return fmt.Errorf("preview: write gltf: %w", err)
	}
	return nil
}

// addSkeletonNodes creates one glTF node per bone that carries a
// retargeted track, wires parent/child relationships from sourceClip's
// ParentOf map (translated through the bone-name map), and returns the
// destination-name -> node-index table plus the scene's root node
// indices.
func addSkeletonNodes(doc *gltf.Document, sourceClip *anim.Clip, clip *retarget.RetargetedClip) (map[string]uint32, []uint32) {
	destOf := make(map[string]string) // source bone name -> dest bone name
	names := boneNames(clip)

	nodeIdx := make(map[string]uint32, len(names))
	for _, destName := range names {
		idx := uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: destName})
		nodeIdx[destName] = idx
	}

	for _, t := range clip.RotationTracks {
		destOf[t.SourceBoneName] = t.DestBoneName
	}
	for _, t := range clip.PositionTracks {
		destOf[t.SourceBoneName] = t.DestBoneName
	}

	// destOf is keyed by each track's raw source bone name, but
	// ParentOf's keys had any "mixamorig:" prefix stripped when the
	// extractor built it; index destOf the same way so the two agree.
	strippedDestOf := make(map[string]string, len(destOf))
	for source, dest := range destOf {
		strippedDestOf[stripMixamoPrefix(source)] = dest
	}

	hasParent := make(map[string]bool, len(names))
	if sourceClip != nil {
		for childSource, parentSource := range sourceClip.ParentOf {
			childDest, ok1 := strippedDestOf[childSource]
			parentDest, ok2 := strippedDestOf[parentSource]
			if !ok1 || !ok2 {
				continue
			}
			parentNode := doc.Nodes[nodeIdx[parentDest]]
			parentNode.Children = append(parentNode.Children, nodeIdx[childDest])
			hasParent[childDest] = true
		}
	}

	var roots []uint32
	for _, name := range names {
		if !hasParent[name] {
			roots = append(roots, nodeIdx[name])
		}
	}
	return nodeIdx, roots
}

// stripMixamoPrefix removes a case-insensitive "mixamorig:" prefix,
// matching pkg/anim's and pkg/retarget's own copy of this rule.
func stripMixamoPrefix(name string) string {
	const prefix = "mixamorig:"
	if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		return name[len(prefix):]
	}
	return name
}

func boneNames(clip *retarget.RetargetedClip) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range clip.RotationTracks {
		if !seen[t.DestBoneName] {
			seen[t.DestBoneName] = true
			names = append(names, t.DestBoneName)
		}
	}
	for _, t := range clip.PositionTracks {
		if !seen[t.DestBoneName] {
			seen[t.DestBoneName] = true
			names = append(names, t.DestBoneName)
		}
	}
	sort.Strings(names)
	return names
}

// addAnimation adds one glTF animation with a rotation and/or
// translation sampler per bone track, one accessor-backed sampler per
// TRS channel.
func addAnimation(doc *gltf.Document, clip *retarget.RetargetedClip, nodeIdx map[string]uint32) {
	gltfAnim := &gltf.Animation{Name: clip.Name}

	for _, t := range clip.RotationTracks {
		idx, ok := nodeIdx[t.DestBoneName]
		if !ok || len(t.Keys) == 0 {
			continue
		}
		times := make([]float32, len(t.Keys))
		values := make([]float32, 0, len(t.Keys)*4)
		for i, k := range t.Keys {
			times[i] = float32(k.Time)
			values = append(values, float32(k.Quat.X), float32(k.Quat.Y), float32(k.Quat.Z), float32(k.Quat.W))
		}
		addChannel(doc, gltfAnim, idx, gltf.TRSRotation, times, values, gltf.AccessorVec4)
	}

	for _, t := range clip.PositionTracks {
		idx, ok := nodeIdx[t.DestBoneName]
		if !ok || len(t.Keys) == 0 {
			continue
		}
		times := make([]float32, len(t.Keys))
		values := make([]float32, 0, len(t.Keys)*3)
		for i, k := range t.Keys {
			times[i] = float32(k.Time)
			values = append(values, float32(k.X), float32(k.Y), float32(k.Z))
		}
		addChannel(doc, gltfAnim, idx, gltf.TRSTranslation, times, values, gltf.AccessorVec3)
	}

	if len(gltfAnim.Channels) > 0 {
		doc.Animations = append(doc.Animations, gltfAnim)
	}
}

func addChannel(doc *gltf.Document, a *gltf.Animation, nodeIdx uint32, path gltf.TRSProperty, times, values []float32, valueType gltf.AccessorType) {
	inputAccessor := modeler.WriteAccessor(doc, gltf.TargetNone, times)
	outputAccessor := modeler.WriteAccessor(doc, gltf.TargetNone, values)
	doc.Accessors[outputAccessor].Type = valueType

	samplerIdx := uint32(len(a.Samplers))
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         inputAccessor,
		Output:        outputAccessor,
		Interpolation: gltf.InterpolationLinear,
	})
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(samplerIdx),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(nodeIdx),
			Path: path,
		},
	})
}
