package retarget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapBoneNameWithAndWithoutPrefix(t *testing.T) {
	t.Parallel()

	dest, ok := MapBoneName("mixamorig:Hips")
	assert.True(t, ok)
	assert.Equal(t, "センター", dest)

	dest, ok = MapBoneName("Hips")
	assert.True(t, ok)
	assert.Equal(t, "センター", dest)
}

func TestMapBoneNameUnmappedPassesThrough(t *testing.T) {
	t.Parallel()

	dest, ok := MapBoneName("mixamorig:SomeCustomProp")
	assert.False(t, ok)
	assert.Equal(t, "SomeCustomProp", dest)
}

func TestKnownBonesIncludesMappedNames(t *testing.T) {
	t.Parallel()

	known := KnownBones()
	assert.Contains(t, known, "Hips")
	assert.Contains(t, known, "LeftArm")
	assert.NotContains(t, known, "SomeCustomProp")
}

func TestStripMixamoPrefixCaseInsensitive(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hips", stripMixamoPrefix("mixamorig:Hips"))
	assert.Equal(t, "Hips", stripMixamoPrefix("MIXAMORIG:Hips"))
	assert.Equal(t, "Hips", stripMixamoPrefix("Hips"))
}
