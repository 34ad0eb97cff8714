package anim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEulerZXYToQuatIdentity(t *testing.T) {
	t.Parallel()

	q := EulerZXY{}.ToQuat()
	assert.InDelta(t, 1.0, math.Abs(q.W), 1e-9)
	assert.InDelta(t, 0.0, q.X, 1e-9)
	assert.InDelta(t, 0.0, q.Y, 1e-9)
	assert.InDelta(t, 0.0, q.Z, 1e-9)
}

// TestGimbalLockRoundTrip: quaternion (sqrt2/2, 0, 0, sqrt2/2) (90
// degrees about X) sits on the gimbal-lock branch and must round-trip
// through Euler extraction and back to the same quaternion (up to sign).
func TestGimbalLockRoundTrip(t *testing.T) {
	t.Parallel()

	s := math.Sqrt2 / 2
	q := Quat{X: s, Y: 0, Z: 0, W: s}

	e := QuatToEulerZXY(q)
	assert.InDelta(t, math.Pi/2, e.X, 1e-6)
	assert.InDelta(t, 0.0, e.Y, 1e-6)
	assert.InDelta(t, 0.0, e.Z, 1e-6)

	back := e.ToQuat()
	assert.True(t, quatEquivalent(q, back), "round-tripped quaternion should equal the original up to sign")
}

func TestEulerQuatRoundTripGeneral(t *testing.T) {
	t.Parallel()

	cases := []EulerZXY{
		{X: 0.2, Y: 0.4, Z: -0.3},
		{X: -1.0, Y: 0.5, Z: 0.1},
		{X: 0, Y: 0, Z: 0},
		{X: 1.2, Y: -0.7, Z: 0.9},
	}

	for _, e := range cases {
		q := e.ToQuat()
		back := QuatToEulerZXY(q)
		q2 := back.ToQuat()
		assert.True(t, quatEquivalent(q, q2), "Euler->quat->Euler->quat should reproduce the same rotation")
	}
}

func TestDegToRadRadToDeg(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, math.Pi, degToRad(180), 1e-12)
	assert.InDelta(t, 180.0, radToDeg(math.Pi), 1e-9)
}

// quatEquivalent reports whether a and b represent the same rotation,
// tolerating the double-cover sign ambiguity.
func quatEquivalent(a, b Quat) bool {
	const eps = 1e-6
	same := math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps && math.Abs(a.W-b.W) < eps
	negated := math.Abs(a.X+b.X) < eps && math.Abs(a.Y+b.Y) < eps && math.Abs(a.Z+b.Z) < eps && math.Abs(a.W+b.W) < eps
	return same || negated
}
