package anim

import "github.com/google/uuid"

// RestPose holds the rest-pose rotation attributes read from a bone
// model's Properties70 subtree: PreRotation and PostRotation
// bracket the animated Lcl Rotation, and Lcl Translation is the bone's
// rest-pose offset.
type RestPose struct {
	PreRotation  EulerZXY
	Rotation     EulerZXY
	PostRotation EulerZXY
	Translation  [3]float64
}

// RotationKey is one (time, unit quaternion) sample of a RotationTrack.
type RotationKey struct {
	Time float64
	Quat Quat
}

// RotationTrack is a bone's ordered, unrolled quaternion track.
// Invariants: Keys are strictly increasing in Time, every Quat is
// unit-length, and consecutive Quats have a non-negative dot product.
type RotationTrack struct {
	BoneName string
	Keys     []RotationKey
	RestPose *RestPose
}

// PositionKey is one (time, (x, y, z)) sample of a PositionTrack.
type PositionKey struct {
	Time    float64
	X, Y, Z float64
}

// PositionTrack is a bone's ordered translation track, in raw source
// units.
type PositionTrack struct {
	BoneName string
	Keys     []PositionKey
}

// Clip is one extracted animation: its name, recomputed and declared
// durations, its rotation/position tracks, and a parent map used by the
// glTF preview to build the bone hierarchy. ID disambiguates multiple clips produced in
// one process, since Name defaults to "Animation" and can
// collide across files.
type Clip struct {
	ID   uuid.UUID
	Name string

	// Duration is always recomputed from track extents; a
	// negative value on a freshly-built Clip means "not yet computed".
	Duration float64

	// DeclaredDuration is the source file's own stated duration, retained
	// for diagnostics only and never acted upon.
	DeclaredDuration float64

	RotationTracks []RotationTrack
	PositionTracks []PositionTrack

	// ParentOf maps a bone name to its parent bone name, built by scanning
	// Model-to-Model connections.
	ParentOf map[string]string
}

// NewClip creates a Clip with a fresh identity and an unset duration.
func NewClip(name string) *Clip {
	return &Clip{
		ID:               uuid.New(),
		Name:             name,
		Duration:         -1,
		DeclaredDuration: -1,
		ParentOf:         make(map[string]string),
	}
}

// MaxTime returns the largest key time across every rotation and position
// track, used to resolve a non-positive Duration.
func (c *Clip) MaxTime() float64 {
	max := 0.0
	for _, t := range c.RotationTracks {
		if n := len(t.Keys); n > 0 && t.Keys[n-1].Time > max {
			max = t.Keys[n-1].Time
		}
	}
	for _, t := range c.PositionTracks {
		if n := len(t.Keys); n > 0 && t.Keys[n-1].Time > max {
			max = t.Keys[n-1].Time
		}
	}
	return max
}

// ResolveDuration sets Duration to MaxTime() when it is non-positive.
func (c *Clip) ResolveDuration() {
	if c.Duration <= 0 {
		c.Duration = c.MaxTime()
	}
}
