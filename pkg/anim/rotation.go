package anim

import "math"

// axisCurve is a single scalar animation curve: parallel times (seconds)
// and values, in source units (degrees for rotation, raw units for
// position). Times are assumed strictly increasing, as read off the
// source AnimationCurve.
type axisCurve struct {
	times  []float64
	values []float64
}

// valueAt linearly interpolates the curve at t, clamping to the first or
// last sample outside the curve's own time range.
func (c axisCurve) valueAt(t float64) float64 {
	n := len(c.times)
	if n == 0 {
		return 0
	}
	if t <= c.times[0] {
		return c.values[0]
	}
	if t >= c.times[n-1] {
		return c.values[n-1]
	}

	// c.times has few enough keys in practice (tens to low hundreds) that
	// a linear scan is simpler and fast enough than a binary search.
	for i := 1; i < n; i++ {
		if t <= c.times[i] {
			t0, t1 := c.times[i-1], c.times[i]
			v0, v1 := c.values[i-1], c.values[i]
			if t1 == t0 {
				return v1
			}
			frac := (t - t0) / (t1 - t0)
			return v0 + (v1-v0)*frac
		}
	}
	return c.values[n-1]
}

// microsecond is the rounding grain used when merging per-axis timelines;
// rounding to 1 µs prevents spurious duplicate keys from tick-to-seconds
// conversion noise.
const microsecond = 1e-6

func roundToMicrosecond(t float64) float64 {
	return math.Round(t/microsecond) * microsecond
}

// mergeAxisTimes returns the sorted, deduplicated union of every axis
// curve's sample times, each rounded to the nearest microsecond.
func mergeAxisTimes(curves ...axisCurve) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, c := range curves {
		for _, t := range c.times {
			rt := roundToMicrosecond(t)
			if _, ok := seen[rt]; ok {
				continue
			}
			seen[rt] = struct{}{}
			out = append(out, rt)
		}
	}

	// insertion sort is adequate for the handful of merged keys a bone
	// track carries; avoids pulling in sort for a tiny, already
	// near-sorted slice.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// buildRotationTrack merges the three per-axis Euler curves (degrees) onto
// a common timeline, subdivides any adjacent pair whose degree delta on
// any axis is >= 180 into ceil(delta/180) equal steps (each inserted key
// is the degree curves sampled at that time, not a slerp of the
// endpoints), converts to quaternions in ZXY order, and unrolls the
// result.
func buildRotationTrack(boneName string, x, y, z axisCurve, rest *RestPose) RotationTrack {
	mergedTimes := mergeAxisTimes(x, y, z)
	if len(mergedTimes) == 0 {
		return RotationTrack{BoneName: boneName, RestPose: rest}
	}

	degX := make([]float64, len(mergedTimes))
	degY := make([]float64, len(mergedTimes))
	degZ := make([]float64, len(mergedTimes))
	for i, t := range mergedTimes {
		degX[i] = x.valueAt(t)
		degY[i] = y.valueAt(t)
		degZ[i] = z.valueAt(t)
	}

	radEuler := make([]EulerZXY, len(mergedTimes))
	for i := range mergedTimes {
		radEuler[i] = EulerZXY{X: degToRad(degX[i]), Y: degToRad(degY[i]), Z: degToRad(degZ[i])}
	}

	var keys []RotationKey
	firstQuat := radEuler[0].ToQuat()
	keys = append(keys, RotationKey{Time: mergedTimes[0], Quat: firstQuat})

	for i := 0; i < len(mergedTimes)-1; i++ {
		dx := math.Abs(degX[i+1] - degX[i])
		dy := math.Abs(degY[i+1] - degY[i])
		dz := math.Abs(degZ[i+1] - degZ[i])
		maxAbsDelta := math.Max(dx, math.Max(dy, dz))

		qEnd := radEuler[i+1].ToQuat()

		if maxAbsDelta >= 180 {
			segments := int(math.Ceil(maxAbsDelta / 180))
			for s := 1; s < segments; s++ {
				frac := float64(s) / float64(segments)
				tMid := mergedTimes[i] + (mergedTimes[i+1]-mergedTimes[i])*frac
				// A 360 degree sweep makes the endpoint quaternions
				// antipodal, where shortest-arc slerp collapses to a no-op;
				// midpoints must come from the degree curves themselves.
				eMid := EulerZXY{X: degToRad(x.valueAt(tMid)), Y: degToRad(y.valueAt(tMid)), Z: degToRad(z.valueAt(tMid))}
				keys = append(keys, RotationKey{Time: tMid, Quat: eMid.ToQuat()})
			}
		}

		keys = append(keys, RotationKey{Time: mergedTimes[i+1], Quat: qEnd})
	}

	unrollRotationKeys(keys)

	return RotationTrack{BoneName: boneName, Keys: keys, RestPose: rest}
}

// unrollRotationKeys negates any quaternion whose dot product with its
// predecessor is negative, keeping interpolation along the shorter arc.
func unrollRotationKeys(keys []RotationKey) {
	for i := 1; i < len(keys); i++ {
		if keys[i-1].Quat.Dot(keys[i].Quat) < 0 {
			keys[i].Quat = keys[i].Quat.Negated()
		}
	}
}

// buildPositionTrack merges the three per-axis position curves onto a
// common timeline with plain linear interpolation; no subdivision is
// performed for translations.
func buildPositionTrack(boneName string, x, y, z axisCurve) PositionTrack {
	mergedTimes := mergeAxisTimes(x, y, z)
	keys := make([]PositionKey, len(mergedTimes))
	for i, t := range mergedTimes {
		keys[i] = PositionKey{
			Time: t,
			X:    x.valueAt(t),
			Y:    y.valueAt(t),
			Z:    z.valueAt(t),
		}
	}
	return PositionTrack{BoneName: boneName, Keys: keys}
}
