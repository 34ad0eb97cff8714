package fbx

// Root wraps the top-level node forest Decode returns as a single
// synthetic unnamed node, so query-helper callers can use the same
// Node/Nodes/Prop operations at the top level as anywhere else in the
// tree.
func Root(nodes []Node) Node {
	return Node{Children: nodes}
}
