package fbx

// Node is a single record in the source container's tagged-node tree:
// a short ASCII name, an ordered list of typed properties, and an ordered
// list of child nodes. Connections are resolved by ID lookup over an
// index built in a single pass, never by chasing pointers during parse,
// so Node itself stays a plain tree.
type Node struct {
	Name       string
	Properties []Property
	Children   []Node
}

// Prop returns the property at index, requiring it to be a scalar or
// homogeneous array of expectedType when expectedType is non-nil. It
// returns ("absent", false) on an out-of-range index or a type mismatch.
// Empty arrays pass the type check regardless of the array's nominal
// element type, since there is nothing to mismatch.
func (n Node) Prop(index int, expectedType *PropertyType) (Property, bool) {
	if index < 0 || index >= len(n.Properties) {
		return Property{}, false
	}

	p := n.Properties[index]
	if expectedType == nil {
		return p, true
	}

	if p.Type == *expectedType {
		return p, true
	}

	if p.isArray() && isArrayType(*expectedType) && arrayLen(p) == 0 {
		return p, true
	}

	return Property{}, false
}

func isArrayType(t PropertyType) bool {
	switch t {
	case PropertyArrayInt32, PropertyArrayInt64, PropertyArrayFloat32, PropertyArrayFloat64, PropertyArrayBool:
		return true
	default:
		return false
	}
}

func arrayLen(p Property) int {
	switch p.Type {
	case PropertyArrayInt32:
		return len(p.arrI32)
	case PropertyArrayInt64:
		return len(p.arrI64)
	case PropertyArrayFloat32:
		return len(p.arrF32)
	case PropertyArrayFloat64:
		return len(p.arrF64)
	case PropertyArrayBool:
		return len(p.arrBool)
	default:
		return 0
	}
}

// Node locates the first child whose name equals tag (if tag is non-empty)
// and whose properties satisfy every predicate in match (property index ->
// expected equality check). A nil match matches unconditionally.
func (n Node) Node(tag string, match ...PropMatch) (Node, bool) {
	for _, child := range n.Children {
		if tag != "" && child.Name != tag {
			continue
		}
		if matchesAll(child, match) {
			return child, true
		}
	}
	return Node{}, false
}

// Nodes returns every child matching tag/match, in declaration order.
func (n Node) Nodes(tag string, match ...PropMatch) []Node {
	var out []Node
	for _, child := range n.Children {
		if tag != "" && child.Name != tag {
			continue
		}
		if matchesAll(child, match) {
			out = append(out, child)
		}
	}
	return out
}

// PropMatch is a predicate over one property index, used by Node/Nodes to
// select children by property value.
type PropMatch struct {
	Index    int
	Int64Eq  *int64
	StringEq *string
}

// MatchInt64 builds a PropMatch requiring property[index] to equal v when
// widened to int64 (covers Int16/Int32/Int64 properties).
func MatchInt64(index int, v int64) PropMatch {
	return PropMatch{Index: index, Int64Eq: &v}
}

// MatchString builds a PropMatch requiring property[index] to equal v as a
// string property.
func MatchString(index int, v string) PropMatch {
	return PropMatch{Index: index, StringEq: &v}
}

func matchesAll(n Node, match []PropMatch) bool {
	for _, m := range match {
		if !matches(n, m) {
			return false
		}
	}
	return true
}

func matches(n Node, m PropMatch) bool {
	if m.Index < 0 || m.Index >= len(n.Properties) {
		return false
	}
	p := n.Properties[m.Index]

	if m.Int64Eq != nil {
		var got int64
		switch p.Type {
		case PropertyInt16:
			got = int64(p.i16)
		case PropertyInt32:
			got = int64(p.i32)
		case PropertyInt64:
			got = p.i64
		default:
			return false
		}
		return got == *m.Int64Eq
	}

	if m.StringEq != nil {
		if p.Type != PropertyString {
			return false
		}
		return p.str == *m.StringEq
	}

	return true
}
