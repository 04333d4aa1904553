// Package geometry implements the triangulated surfaces sound rays bounce
// off of: two-sided triangles, combined into a single scene mesh that
// supports ray/segment intersection, uniform-area sampling and volume.
package geometry

import (
	"math"
	"math/rand"

	"github.com/ear-go/ear/pkg/core"
)

// Triangle is a two-sided triangle: a ray or segment intersects it
// regardless of which side it approaches from. MaterialIndex is a stable
// index into the owning Mesh's material table rather than a pointer, so
// meshes can be combined and cloned by value without aliasing materials.
type Triangle struct {
	A, B, C       core.Vec3
	Normal        core.Vec3 // unit normal, direction fixed at construction
	Area          float64
	MaterialIndex int
}

// NewTriangle builds a Triangle, caching its unit normal and area.
func NewTriangle(a, b, c core.Vec3, materialIndex int) Triangle {
	edge0 := b.Subtract(a)
	edge1 := c.Subtract(a)
	cross := edge0.Cross(edge1)
	return Triangle{
		A: a, B: b, C: c,
		Normal:        cross.Normalize(),
		Area:          cross.Length() / 2,
		MaterialIndex: materialIndex,
	}
}

// Intersect performs a double-sided Moeller-Trumbore test. It reports a hit
// only when the parametric distance t falls in (tMin, tMax); the caller
// passes tMax as the closest hit found so far to implement the mesh's
// linear-scan tie-break on smallest t.
func (tri Triangle) Intersect(ray core.Ray, tMin, tMax float64) (t float64, ok bool) {
	const epsilon = 1e-8

	edge1 := tri.B.Subtract(tri.A)
	edge2 := tri.C.Subtract(tri.A)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -epsilon && det < epsilon {
		return 0, false // ray parallel to triangle plane
	}

	invDet := 1.0 / det
	s := ray.Origin.Subtract(tri.A)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := invDet * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	tHit := invDet * edge2.Dot(q)
	if tHit <= tMin || tHit >= tMax {
		return 0, false
	}
	return tHit, true
}

// IntersectSegment tests a bounded segment (parametric t in (tMin, tMax),
// typically (1e-5, 1) for occlusion queries) using the same double-sided
// test, scaling the ray direction by the segment's span so t stays in the
// segment's own parametric space.
func (tri Triangle) IntersectSegment(seg core.Segment, tMin, tMax float64) bool {
	ray := core.NewRay(seg.Origin, seg.Dir)
	_, ok := tri.Intersect(ray, tMin, tMax)
	return ok
}

// SamplePoint draws a uniformly distributed point on the triangle's surface
// using the standard sqrt-based barycentric construction.
func (tri Triangle) SamplePoint(random *rand.Rand) core.Vec3 {
	r1 := random.Float64()
	r2 := random.Float64()
	sr1 := math.Sqrt(r1)
	// P = (1-sqrt(r1))*A + sqrt(r1)*(1-r2)*B + sqrt(r1)*r2*C
	a := tri.A.Multiply(1 - sr1)
	b := tri.B.Multiply(sr1 * (1 - r2))
	c := tri.C.Multiply(sr1 * r2)
	return a.Add(b).Add(c)
}

// SignedVolume returns this triangle's contribution to the enclosing
// mesh's volume via the divergence-theorem tetrahedron decomposition.
func (tri Triangle) SignedVolume() float64 {
	p1, p2, p3 := tri.A, tri.B, tri.C
	v321 := p3.X * p2.Y * p1.Z
	v231 := p2.X * p3.Y * p1.Z
	v312 := p3.X * p1.Y * p2.Z
	v132 := p1.X * p3.Y * p2.Z
	v213 := p2.X * p1.Y * p3.Z
	v123 := p1.X * p2.Y * p3.Z
	return (1.0 / 6.0) * (-v321 + v231 + v312 - v132 - v213 + v123)
}

// BoundingBox returns the AABB tightly enclosing this triangle's vertices.
func (tri Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(tri.A, tri.B, tri.C)
}
