package anim

import (
	"strings"

	"github.com/lanterneq/mixamo-vmd/pkg/fbx"
	"github.com/lanterneq/mixamo-vmd/pkg/infrastructure/logger"
)

// tickSeconds is the exact duration of one source time tick.
const tickSeconds = 1.0 / 46186158000.0

// connection is one `C` record under Connections. Only object-to-object
// ("OO") connections are processed.
type connection struct {
	kind string
	src  int64
	dst  int64
	rel  string
}

// Extract walks the decoded node forest: Objects and Connections resolve
// AnimationStack → AnimationLayer → AnimationCurveNode → AnimationCurve
// into per-bone rotation/position tracks. Missing structure is non-fatal:
// the affected track or clip is skipped. A warning is logged for a missing
// Objects or Connections group, a stack with no layer, and a curve node
// missing an axis curve; a curve node with no connected Model is skipped
// without a warning, and a source file with no animation stack at all
// yields no clips.
func Extract(nodes []fbx.Node, log logger.Logger) []*Clip {
	root := fbx.Root(nodes)

	objects, ok := root.Node("Objects")
	if !ok {
		log.LogWarning("fbx: no Objects group; no clips extracted")
		return nil
	}

	connectionsNode, ok := root.Node("Connections")
	if !ok {
		log.LogWarning("fbx: no Connections group; no clips extracted")
		return nil
	}

	conns := parseConnections(connectionsNode)
	byID := indexByID(objects)
	models := modelsByID(objects)

	var clips []*Clip
	for _, stackNode := range objects.Nodes("AnimationStack") {
		stackID, ok := firstInt64(stackNode)
		if !ok {
			continue
		}

		name := "Animation"
		if n, ok := stackNode.Prop(1, nil); ok {
			if s, isStr := n.String(); isStr {
				name = stripQualifier(s)
			}
		}

		clip := extractStack(stackID, name, conns, byID, models, log)
		if clip == nil {
			continue
		}
		clip.DeclaredDuration = readDeclaredDuration(stackNode)
		clips = append(clips, clip)
	}

	return clips
}

func extractStack(stackID int64, name string, conns []connection, byID map[int64]fbx.Node, models map[int64]fbx.Node, log logger.Logger) *Clip {
	layerIDs := destinationsOf(conns, stackID)
	if len(layerIDs) == 0 {
		log.LogWarning("fbx: AnimationStack has no connected AnimationLayer; skipping clip")
		return nil
	}

	clip := NewClip(name)

	for _, layerID := range layerIDs {
		curveNodeIDs := destinationsOf(conns, layerID)
		for _, curveNodeID := range curveNodeIDs {
			curveNode, ok := byID[curveNodeID]
			if !ok {
				continue
			}
			extractCurveNode(clip, curveNode, curveNodeID, conns, byID, models, log)
		}
	}

	buildParentMap(clip, conns, models)
	clip.ResolveDuration()
	return clip
}

// extractCurveNode resolves a curve node's target Model via the single
// non-empty-relationship connection sourced from it and, depending on the
// curve node's attribute ("R" or "T"), builds and attaches a rotation or
// position track.
func extractCurveNode(clip *Clip, curveNode fbx.Node, curveNodeID int64, conns []connection, byID map[int64]fbx.Node, models map[int64]fbx.Node, log logger.Logger) {
	modelID, ok := modelConnectionOf(conns, curveNodeID)
	if !ok {
		return
	}
	model, ok := models[modelID]
	if !ok {
		return
	}

	boneName := modelName(model)

	attr := ""
	if p, ok := curveNode.Prop(1, nil); ok {
		if s, isStr := p.String(); isStr {
			attr = s
		}
	}

	switch attr {
	case "R":
		rest := readRestPose(model)
		track, ok := buildRotationTrackFromCurveNode(boneName, curveNode, curveNodeID, conns, byID, rest, log)
		if ok {
			clip.RotationTracks = append(clip.RotationTracks, track)
		}
	case "T":
		track, ok := buildPositionTrackFromCurveNode(boneName, curveNodeID, conns, byID, log)
		if ok {
			clip.PositionTracks = append(clip.PositionTracks, track)
		}
	default:
		// Scale and any other attribute are ignored.
	}
}

func buildRotationTrackFromCurveNode(boneName string, curveNode fbx.Node, curveNodeID int64, conns []connection, byID map[int64]fbx.Node, rest *RestPose, log logger.Logger) (RotationTrack, bool) {
	x, xok := axisCurveFor(curveNodeID, "X", conns, byID)
	y, yok := axisCurveFor(curveNodeID, "Y", conns, byID)
	z, zok := axisCurveFor(curveNodeID, "Z", conns, byID)
	if !xok || !yok || !zok {
		log.LogWarning("fbx: bone " + boneName + " missing an axis curve; no rotation track")
		return RotationTrack{}, false
	}
	return buildRotationTrack(boneName, x, y, z, rest), true
}

func buildPositionTrackFromCurveNode(boneName string, curveNodeID int64, conns []connection, byID map[int64]fbx.Node, log logger.Logger) (PositionTrack, bool) {
	x, xok := axisCurveFor(curveNodeID, "X", conns, byID)
	y, yok := axisCurveFor(curveNodeID, "Y", conns, byID)
	z, zok := axisCurveFor(curveNodeID, "Z", conns, byID)
	if !xok || !yok || !zok {
		log.LogWarning("fbx: bone " + boneName + " missing an axis curve; no position track")
		return PositionTrack{}, false
	}
	return buildPositionTrack(boneName, x, y, z), true
}

// axisCurveFor finds the AnimationCurve connected into curveNodeID whose
// relationship names the given axis letter and decodes its
// KeyTime/KeyValueFloat arrays into seconds/degrees-or-units.
func axisCurveFor(curveNodeID int64, axis string, conns []connection, byID map[int64]fbx.Node) (axisCurve, bool) {
	for _, c := range conns {
		if c.kind != "OO" || c.dst != curveNodeID {
			continue
		}
		if c.rel != axis && !strings.HasSuffix(c.rel, "|"+axis) {
			continue
		}
		curve, ok := byID[c.src]
		if !ok {
			continue
		}
		return decodeCurve(curve)
	}
	return axisCurve{}, false
}

func decodeCurve(curve fbx.Node) (axisCurve, bool) {
	var times []int64
	if keyTimeNode, ok := curve.Node("KeyTime"); ok {
		if p, ok := keyTimeNode.Prop(0, nil); ok {
			if arr, isArr := p.ArrayInt64(); isArr {
				times = arr
			}
		}
	} else if p, ok := curve.Prop(4, nil); ok {
		if arr, isArr := p.ArrayInt64(); isArr {
			times = arr
		}
	}

	var values []float32
	if keyValueNode, ok := curve.Node("KeyValueFloat"); ok {
		if p, ok := keyValueNode.Prop(0, nil); ok {
			if arr, isArr := p.ArrayFloat32(); isArr {
				values = arr
			}
		}
	} else if p, ok := curve.Prop(5, nil); ok {
		if arr, isArr := p.ArrayFloat32(); isArr {
			values = arr
		}
	}

	if len(times) == 0 || len(times) != len(values) {
		return axisCurve{}, false
	}

	out := axisCurve{times: make([]float64, len(times)), values: make([]float64, len(values))}
	for i := range times {
		out.times[i] = float64(times[i]) * tickSeconds
		out.values[i] = float64(values[i])
	}
	return out, true
}

// readDeclaredDuration reads the AnimationStack's own LocalStart/LocalStop
// pair (ticks) off its Properties70 subtree, retained for diagnostics
// only; the computed Duration never depends on it. Absent either
// property, it returns 0.
func readDeclaredDuration(stackNode fbx.Node) float64 {
	props70, ok := stackNode.Node("Properties70")
	if !ok {
		return 0
	}
	start, okStart := readPropertyTick(props70, "LocalStart")
	stop, okStop := readPropertyTick(props70, "LocalStop")
	if !okStart || !okStop {
		return 0
	}
	return float64(stop-start) * tickSeconds
}

func readPropertyTick(props70 fbx.Node, name string) (int64, bool) {
	p, ok := props70.Node("P", fbx.MatchString(0, name))
	if !ok {
		return 0, false
	}
	return propInt64(p, 4)
}

// readRestPose reads PreRotation/PostRotation/Lcl Rotation (degrees, here
// converted to radians) and Lcl Translation off a Model's Properties70
// subtree, falling back to direct child nodes for legacy files.
func readRestPose(model fbx.Node) *RestPose {
	rest := &RestPose{}
	if x, y, z, ok := readVec3Property(model, "PreRotation"); ok {
		rest.PreRotation = EulerZXY{X: degToRad(x), Y: degToRad(y), Z: degToRad(z)}
	}
	if x, y, z, ok := readVec3Property(model, "PostRotation"); ok {
		rest.PostRotation = EulerZXY{X: degToRad(x), Y: degToRad(y), Z: degToRad(z)}
	}
	if x, y, z, ok := readVec3Property(model, "Lcl Rotation"); ok {
		rest.Rotation = EulerZXY{X: degToRad(x), Y: degToRad(y), Z: degToRad(z)}
	}
	if x, y, z, ok := readVec3Property(model, "Lcl Translation"); ok {
		rest.Translation = [3]float64{x, y, z}
	}
	return rest
}

// readVec3Property reads a named Properties70 attribute's three numeric
// values starting at property index 4, or falls back to a
// same-named direct child node for legacy files.
func readVec3Property(model fbx.Node, name string) (x, y, z float64, ok bool) {
	if props70, found := model.Node("Properties70"); found {
		if p, found := props70.Node("P", fbx.MatchString(0, name)); found {
			if x, ok1 := propFloat(p, 4); ok1 {
				if y, ok2 := propFloat(p, 5); ok2 {
					if z, ok3 := propFloat(p, 6); ok3 {
						return x, y, z, true
					}
				}
			}
		}
	}

	if legacy, found := model.Node(name); found {
		if arr, ok1 := legacy.Prop(0, nil); ok1 {
			if vals, isArr := arr.ArrayFloat64(); isArr && len(vals) >= 3 {
				return vals[0], vals[1], vals[2], true
			}
			if vals32, isArr := arr.ArrayFloat32(); isArr && len(vals32) >= 3 {
				return float64(vals32[0]), float64(vals32[1]), float64(vals32[2]), true
			}
		}
		if x, ok1 := propFloat(legacy, 0); ok1 {
			if y, ok2 := propFloat(legacy, 1); ok2 {
				if z, ok3 := propFloat(legacy, 2); ok3 {
					return x, y, z, true
				}
			}
		}
	}

	return 0, 0, 0, false
}

func propFloat(n fbx.Node, index int) (float64, bool) {
	p, ok := n.Prop(index, nil)
	if !ok {
		return 0, false
	}
	return p.AsFloat64()
}

// parseConnections decodes every `C` record under Connections into a
// connection struct, preserving declaration order.
func parseConnections(connectionsGroup fbx.Node) []connection {
	var out []connection
	for _, c := range connectionsGroup.Nodes("C") {
		kindProp, ok := c.Prop(0, nil)
		if !ok {
			continue
		}
		kind, isStr := kindProp.String()
		if !isStr || kind != "OO" {
			continue
		}

		src, ok := propInt64(c, 1)
		if !ok {
			continue
		}
		dst, ok := propInt64(c, 2)
		if !ok {
			continue
		}

		rel := ""
		if p, ok := c.Prop(3, nil); ok {
			if s, isStr := p.String(); isStr {
				rel = s
			}
		}

		out = append(out, connection{kind: kind, src: src, dst: dst, rel: rel})
	}
	return out
}

func propInt64(n fbx.Node, index int) (int64, bool) {
	p, ok := n.Prop(index, nil)
	if !ok {
		return 0, false
	}
	switch p.Type {
	case fbx.PropertyInt64:
		v, _ := p.Int64()
		return v, true
	case fbx.PropertyInt32:
		v, _ := p.Int32()
		return int64(v), true
	case fbx.PropertyInt16:
		v, _ := p.Int16()
		return int64(v), true
	default:
		return 0, false
	}
}

// destinationsOf returns every OO connection source whose destination is
// id, in declaration order.
func destinationsOf(conns []connection, id int64) []int64 {
	var out []int64
	for _, c := range conns {
		if c.kind == "OO" && c.dst == id {
			out = append(out, c.src)
		}
	}
	return out
}

// modelConnectionOf finds the single OO connection sourced from
// curveNodeID that carries a non-empty relationship and
// returns its destination.
func modelConnectionOf(conns []connection, curveNodeID int64) (int64, bool) {
	for _, c := range conns {
		if c.kind == "OO" && c.src == curveNodeID && c.rel != "" {
			return c.dst, true
		}
	}
	return 0, false
}

// indexByID builds an ID -> node map over every direct child of Objects,
// in a single pass; the connection DAG is resolved by index lookup, not
// by pointer chasing during parse.
func indexByID(objects fbx.Node) map[int64]fbx.Node {
	out := make(map[int64]fbx.Node)
	for _, child := range objects.Children {
		if id, ok := firstInt64(child); ok {
			out[id] = child
		}
	}
	return out
}

// modelsByID indexes only the Model children of Objects.
func modelsByID(objects fbx.Node) map[int64]fbx.Node {
	out := make(map[int64]fbx.Node)
	for _, m := range objects.Nodes("Model") {
		if id, ok := firstInt64(m); ok {
			out[id] = m
		}
	}
	return out
}

func firstInt64(n fbx.Node) (int64, bool) {
	return propInt64(n, 0)
}

func modelName(model fbx.Node) string {
	if p, ok := model.Prop(1, nil); ok {
		if s, isStr := p.String(); isStr {
			return stripQualifier(s)
		}
	}
	return ""
}

// stripQualifier drops a "Model::" (or any "Prefix::") qualifier left over
// from the source string's swap-and-join decoding, returning
// the bone's bare name.
func stripQualifier(s string) string {
	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		return s[idx+2:]
	}
	return s
}

// stripMixamoPrefix removes a case-insensitive "mixamorig:" prefix, used
// both when building the parent map and by the
// retargeter's bone-name map.
func stripMixamoPrefix(name string) string {
	const prefix = "mixamorig:"
	if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		return name[len(prefix):]
	}
	return name
}

// buildParentMap scans every Model-to-Model OO connection to populate
// clip.ParentOf for the bones that ended up with tracks; the parent itself
// need not carry a track.
func buildParentMap(clip *Clip, conns []connection, models map[int64]fbx.Node) {
	tracked := make(map[string]bool)
	for _, t := range clip.RotationTracks {
		tracked[stripMixamoPrefix(t.BoneName)] = true
	}
	for _, t := range clip.PositionTracks {
		tracked[stripMixamoPrefix(t.BoneName)] = true
	}

	for _, c := range conns {
		if c.kind != "OO" {
			continue
		}
		childModel, ok := models[c.src]
		if !ok {
			continue
		}
		parentModel, ok := models[c.dst]
		if !ok {
			continue
		}

		childName := stripMixamoPrefix(modelName(childModel))
		parentName := stripMixamoPrefix(modelName(parentModel))
		if !tracked[childName] {
			continue
		}
		clip.ParentOf[childName] = parentName
	}
}
