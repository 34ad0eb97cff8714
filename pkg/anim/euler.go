package anim

import "math"

// EulerZXY holds a Euler-angle rotation in radians, always in ZXY
// rotation order regardless of what the source file's own declared order
// might be; the retarget tables are calibrated against ZXY.
type EulerZXY struct {
	X, Y, Z float64
}

// ToQuat converts e to a unit quaternion via q = q_z * q_x * q_y, where
// each axis factor is (sin(θ/2)·axis, cos(θ/2)).
func (e EulerZXY) ToQuat() Quat {
	qx := FromAxisAngle(1, 0, 0, e.X)
	qy := FromAxisAngle(0, 1, 0, e.Y)
	qz := FromAxisAngle(0, 0, 1, e.Z)
	return qz.Mul(qx).Mul(qy)
}

// QuatToEulerZXY extracts the ZXY Euler angles (radians) a unit
// quaternion represents, branching on the gimbal-lock condition.
func QuatToEulerZXY(q Quat) EulerZXY {
	sinRX := 2 * (q.Y*q.Z + q.W*q.X)

	const gimbalThreshold = 0.9999
	if math.Abs(sinRX) >= gimbalThreshold {
		rx := math.Copysign(math.Pi/2, sinRX)
		rz := 0.0
		ry := math.Atan2(2*(q.X*q.Y+q.W*q.Z), 1-2*(q.Y*q.Y+q.Z*q.Z))
		return EulerZXY{X: rx, Y: ry, Z: rz}
	}

	rx := math.Asin(sinRX)
	ry := math.Atan2(-2*(q.X*q.Z-q.W*q.Y), 1-2*(q.X*q.X+q.Y*q.Y))
	rz := math.Atan2(-2*(q.X*q.Y-q.W*q.Z), 1-2*(q.X*q.X+q.Z*q.Z))
	return EulerZXY{X: rx, Y: ry, Z: rz}
}

// degToRad and radToDeg convert between the source file's degree-valued
// rotation properties and the radians the quaternion math works in.
func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }
