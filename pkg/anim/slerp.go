package anim

import "math"

// slerpThreshold is the |dot| above which Slerp falls back to a
// normalized linear blend to avoid the numerical instability of dividing
// by a near-zero sinθ.
const slerpThreshold = 0.9995

// Slerp performs spherical linear interpolation between two unit
// quaternions at parameter t in [0,1], taking the shortest arc.
func Slerp(a, b Quat, t float64) Quat {
	dot := a.Dot(b)

	if dot < 0 {
		b = b.Negated()
		dot = -dot
	}

	if dot > slerpThreshold {
		lerped := Quat{
			X: a.X + (b.X-a.X)*t,
			Y: a.Y + (b.Y-a.Y)*t,
			Z: a.Z + (b.Z-a.Z)*t,
			W: a.W + (b.W-a.W)*t,
		}
		return lerped.Normalized()
	}

	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	w0 := math.Sin((1-t)*theta) / sinTheta
	w1 := math.Sin(t*theta) / sinTheta

	return Quat{
		X: w0*a.X + w1*b.X,
		Y: w0*a.Y + w1*b.Y,
		Z: w0*a.Z + w1*b.Z,
		W: w0*a.W + w1*b.W,
	}
}
