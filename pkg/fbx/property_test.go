package fbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyAccessors(t *testing.T) {
	t.Parallel()

	p := NewInt64Property(42)
	v, ok := p.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = p.Int32()
	assert.False(t, ok)

	s := NewStringProperty("hello")
	str, ok := s.String()
	assert.True(t, ok)
	assert.Equal(t, "hello", str)
}

func TestPropertyAsFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prop Property
		want float64
		ok   bool
	}{
		{"int16", NewInt16Property(3), 3, true},
		{"int32", NewInt32Property(7), 7, true},
		{"int64", NewInt64Property(9), 9, true},
		{"float32", NewFloat32Property(1.5), 1.5, true},
		{"float64", NewFloat64Property(2.25), 2.25, true},
		{"string", NewStringProperty("x"), 0, false},
		{"bool", NewBoolProperty(true), 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.prop.AsFloat64()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestPropertyIsArray(t *testing.T) {
	t.Parallel()

	assert.True(t, NewArrayFloat32Property(nil).isArray())
	assert.True(t, NewArrayInt64Property([]int64{1, 2}).isArray())
	assert.False(t, NewInt32Property(1).isArray())
	assert.False(t, NewStringProperty("a").isArray())
}
