// Package anim walks the decoded FBX node forest's connection graph and
// extracts per-bone rotation/translation tracks, including
// the quaternion math (Euler↔quaternion, slerp, unrolling) the rotation
// assembler needs.
package anim

import "math"

// Quat is a unit quaternion (x, y, z, w), kept in float64 throughout the
// extractor for accumulation precision; only the output writers (VMD and
// the glTF preview) narrow to float32.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{W: 1}

// Norm returns the Euclidean length of q.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized returns q scaled to unit length. The zero quaternion is
// returned unchanged to avoid dividing by zero.
func (q Quat) Normalized() Quat {
	n := q.Norm()
	if n == 0 {
		return q
	}
	return Quat{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Negated returns the component-wise negation of q, the same rotation on
// the double cover, used to unroll a track.
func (q Quat) Negated() Quat {
	return Quat{-q.X, -q.Y, -q.Z, -q.W}
}

// Conjugate returns q's conjugate, which equals its inverse when q is
// unit-length.
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Dot returns the 4-component dot product of q and o.
func (q Quat) Dot(o Quat) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Mul returns q * o (apply o first, then q; o's rotation happens in
// q's parent frame), the standard Hamilton product.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// FromAxisAngle builds a unit quaternion rotating by angleRad radians
// about the given unit axis: (sin(θ/2)·axis, cos(θ/2)).
func FromAxisAngle(axisX, axisY, axisZ, angleRad float64) Quat {
	half := angleRad / 2
	s := math.Sin(half)
	return Quat{X: axisX * s, Y: axisY * s, Z: axisZ * s, W: math.Cos(half)}
}

// RotateVec rotates a 3-vector by q using the sandwich-product shortcut
// v' = v + 2w(axis×v) + 2(axis×(axis×v)).
func (q Quat) RotateVec(vx, vy, vz float64) (rx, ry, rz float64) {
	ux, uy, uz := q.X, q.Y, q.Z

	// t = 2 * cross(u, v)
	tx := 2 * (uy*vz - uz*vy)
	ty := 2 * (uz*vx - ux*vz)
	tz := 2 * (ux*vy - uy*vx)

	// v' = v + w*t + cross(u, t)
	rx = vx + q.W*tx + (uy*tz - uz*ty)
	ry = vy + q.W*ty + (uz*tx - ux*tz)
	rz = vz + q.W*tz + (ux*ty - uy*tx)
	return
}
