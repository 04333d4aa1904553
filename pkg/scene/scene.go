package scene

import (
	"math/rand"

	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/geometry"
	"github.com/ear-go/ear/pkg/keyframe"
	"github.com/ear-go/ear/pkg/listener"
	"github.com/ear-go/ear/pkg/material"
	"github.com/ear-go/ear/pkg/source"
)

// Scene aggregates a fully decoded scene graph: the combined geometry
// mesh, the material table triangles index into, every sound source and
// listener, and the shared keyframe table.
type Scene struct {
	Mesh      *geometry.Mesh
	Materials []*material.Material
	Sources   []*source.Source
	Listeners []*listener.Listener
	Keyframes keyframe.Keyframes
}

// Bounce intersects ray against the combined mesh and, on a hit, asks the
// struck material to decide reflect-or-refract, samples an outgoing
// direction accordingly, and returns the new ray, the (possibly flipped)
// surface normal, the segment length traveled, the struck material, and
// the bounce type. ok is false when the ray escapes the scene.
func (s *Scene) Bounce(band int, ray core.Ray, random *rand.Rand) (newRay core.Ray, normal core.Vec3, segmentLen float64, mat *material.Material, bounceType material.BounceType, ok bool) {
	hit, hitOK := s.Mesh.RayIntersect(ray, 1e300)
	if !hitOK {
		return core.Ray{}, core.Vec3{}, 0, nil, 0, false
	}

	mat = s.Materials[hit.MaterialIndex]
	bounceType = mat.Bounce(band, random)
	n := hit.Normal

	var dir core.Vec3
	switch bounceType {
	case material.Refract:
		n = n.Negate()
		dir = core.SampleHemisphereBiased(n, ray.Direction.Normalize(), mat.Specularity[band], random)
	default: // Reflect
		refl := core.Reflect(ray.Direction.Normalize(), n)
		dir = core.SampleHemisphereBiased(n, refl, mat.Specularity[band], random)
	}

	segmentLen = hit.Point.Subtract(ray.Origin).Length()
	newRay = core.NewRay(hit.Point, dir)
	return newRay, n, segmentLen, mat, bounceType, true
}

// Connect builds the segment from p to x and checks it for occlusion
// against the combined mesh. ok is false if any triangle occludes the
// segment at t in (1e-5, 1).
func (s *Scene) Connect(p, x core.Vec3) (seg core.Segment, ok bool) {
	seg = core.NewSegment(p, x)
	if s.Mesh.LineIntersect(seg) {
		return core.Segment{}, false
	}
	return seg, true
}
