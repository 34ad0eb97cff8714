package fbx

// PropertyType identifies which variant of Property is populated.
type PropertyType int

const (
	// PropertyInt16 holds a signed 16-bit integer (tag 'Y').
	PropertyInt16 PropertyType = iota
	// PropertyBool holds a boolean stored as a single byte (tag 'C').
	PropertyBool
	// PropertyInt32 holds a signed 32-bit integer (tag 'I').
	PropertyInt32
	// PropertyFloat32 holds a 32-bit float (tag 'F').
	PropertyFloat32
	// PropertyFloat64 holds a 64-bit float (tag 'D').
	PropertyFloat64
	// PropertyInt64 holds a signed 64-bit integer (tag 'L').
	PropertyInt64
	// PropertyString holds a length-prefixed byte string (tag 'S').
	PropertyString
	// PropertyRaw holds a raw length-prefixed byte blob (tag 'R').
	PropertyRaw
	// PropertyArrayInt32 holds an array of int32 (tag 'i').
	PropertyArrayInt32
	// PropertyArrayInt64 holds an array of int64 (tag 'l').
	PropertyArrayInt64
	// PropertyArrayFloat32 holds an array of float32 (tag 'f').
	PropertyArrayFloat32
	// PropertyArrayFloat64 holds an array of float64 (tag 'd').
	PropertyArrayFloat64
	// PropertyArrayBool holds an array of bool (tag 'b').
	PropertyArrayBool
)

// Property is a tagged union over the scalar and array property variants a
// source node can carry, modeled as a sum type rather than a dynamic map
// so callers must branch on Type before touching a payload field.
type Property struct {
	Type PropertyType

	i16 int16
	b   bool
	i32 int32
	f32 float32
	f64 float64
	i64 int64
	str string
	raw []byte

	arrI32  []int32
	arrI64  []int64
	arrF32  []float32
	arrF64  []float64
	arrBool []bool
}

// Int16 returns the value and whether Type == PropertyInt16.
func (p Property) Int16() (int16, bool) {
	return p.i16, p.Type == PropertyInt16
}

// Bool returns the value and whether Type == PropertyBool.
func (p Property) Bool() (bool, bool) {
	return p.b, p.Type == PropertyBool
}

// Int32 returns the value and whether Type == PropertyInt32.
func (p Property) Int32() (int32, bool) {
	return p.i32, p.Type == PropertyInt32
}

// Float32 returns the value and whether Type == PropertyFloat32.
func (p Property) Float32() (float32, bool) {
	return p.f32, p.Type == PropertyFloat32
}

// Float64 returns the value and whether Type == PropertyFloat64.
func (p Property) Float64() (float64, bool) {
	return p.f64, p.Type == PropertyFloat64
}

// Int64 returns the value and whether Type == PropertyInt64.
func (p Property) Int64() (int64, bool) {
	return p.i64, p.Type == PropertyInt64
}

// String returns the value and whether Type == PropertyString.
func (p Property) String() (string, bool) {
	return p.str, p.Type == PropertyString
}

// Raw returns the value and whether Type == PropertyRaw.
func (p Property) Raw() ([]byte, bool) {
	return p.raw, p.Type == PropertyRaw
}

// ArrayInt32 returns the value and whether Type == PropertyArrayInt32.
func (p Property) ArrayInt32() ([]int32, bool) {
	return p.arrI32, p.Type == PropertyArrayInt32
}

// ArrayInt64 returns the value and whether Type == PropertyArrayInt64.
func (p Property) ArrayInt64() ([]int64, bool) {
	return p.arrI64, p.Type == PropertyArrayInt64
}

// ArrayFloat32 returns the value and whether Type == PropertyArrayFloat32.
func (p Property) ArrayFloat32() ([]float32, bool) {
	return p.arrF32, p.Type == PropertyArrayFloat32
}

// ArrayFloat64 returns the value and whether Type == PropertyArrayFloat64.
func (p Property) ArrayFloat64() ([]float64, bool) {
	return p.arrF64, p.Type == PropertyArrayFloat64
}

// ArrayBool returns the value and whether Type == PropertyArrayBool.
func (p Property) ArrayBool() ([]bool, bool) {
	return p.arrBool, p.Type == PropertyArrayBool
}

// AsFloat64 widens any scalar numeric property to float64. ok is false for
// non-numeric property types.
func (p Property) AsFloat64() (float64, bool) {
	switch p.Type {
	case PropertyInt16:
		return float64(p.i16), true
	case PropertyInt32:
		return float64(p.i32), true
	case PropertyInt64:
		return float64(p.i64), true
	case PropertyFloat32:
		return float64(p.f32), true
	case PropertyFloat64:
		return p.f64, true
	default:
		return 0, false
	}
}

// NewInt16Property builds a PropertyInt16 value.
func NewInt16Property(v int16) Property { return Property{Type: PropertyInt16, i16: v} }

// NewBoolProperty builds a PropertyBool value.
func NewBoolProperty(v bool) Property { return Property{Type: PropertyBool, b: v} }

// NewInt32Property builds a PropertyInt32 value.
func NewInt32Property(v int32) Property { return Property{Type: PropertyInt32, i32: v} }

// NewFloat32Property builds a PropertyFloat32 value.
func NewFloat32Property(v float32) Property { return Property{Type: PropertyFloat32, f32: v} }

// NewFloat64Property builds a PropertyFloat64 value.
func NewFloat64Property(v float64) Property { return Property{Type: PropertyFloat64, f64: v} }

// NewInt64Property builds a PropertyInt64 value.
func NewInt64Property(v int64) Property { return Property{Type: PropertyInt64, i64: v} }

// NewStringProperty builds a PropertyString value.
func NewStringProperty(v string) Property { return Property{Type: PropertyString, str: v} }

// NewRawProperty builds a PropertyRaw value.
func NewRawProperty(v []byte) Property { return Property{Type: PropertyRaw, raw: v} }

// NewArrayInt32Property builds a PropertyArrayInt32 value.
func NewArrayInt32Property(v []int32) Property { return Property{Type: PropertyArrayInt32, arrI32: v} }

// NewArrayInt64Property builds a PropertyArrayInt64 value.
func NewArrayInt64Property(v []int64) Property { return Property{Type: PropertyArrayInt64, arrI64: v} }

// NewArrayFloat32Property builds a PropertyArrayFloat32 value.
func NewArrayFloat32Property(v []float32) Property {
	return Property{Type: PropertyArrayFloat32, arrF32: v}
}

// NewArrayFloat64Property builds a PropertyArrayFloat64 value.
func NewArrayFloat64Property(v []float64) Property {
	return Property{Type: PropertyArrayFloat64, arrF64: v}
}

// NewArrayBoolProperty builds a PropertyArrayBool value.
func NewArrayBoolProperty(v []bool) Property { return Property{Type: PropertyArrayBool, arrBool: v} }

// isArray reports whether this property type is one of the array variants.
func (p Property) isArray() bool {
	switch p.Type {
	case PropertyArrayInt32, PropertyArrayInt64, PropertyArrayFloat32, PropertyArrayFloat64, PropertyArrayBool:
		return true
	default:
		return false
	}
}
