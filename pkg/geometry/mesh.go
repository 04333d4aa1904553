package geometry

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ear-go/ear/pkg/core"
)

// Hit describes a ray/mesh intersection: the point, the outward-facing
// normal (flipped if necessary, since every triangle is two-sided), and
// the index of the struck triangle's material.
type Hit struct {
	Point         core.Vec3
	Normal        core.Vec3
	MaterialIndex int
	Distance      float64
}

// Mesh is an ordered collection of triangles sharing a bounding box and
// aggregate area statistics. Scene holds one combined Mesh that every
// per-input mesh is merged into via Combine; all intersection queries run
// against that single combined mesh.
type Mesh struct {
	Triangles         []Triangle
	bounds            core.AABB
	boundsValid       bool
	TotalArea         float64
	TotalWeightedArea float64 // Σ area * (1 - absorption_mid), mid band
}

// AbsorptionLookup resolves a material index to that material's mid-band
// absorption coefficient. Mesh stores only triangles and indices; the
// owning Scene supplies the lookup so Mesh itself stays independent of
// the material package's types.
type AbsorptionLookup func(materialIndex int) (absorptionMid float64)

// NewMesh builds a Mesh from triangles, computing its bounding box and
// area aggregates. absorption resolves each triangle's material index to
// its mid-band absorption coefficient for TotalWeightedArea.
func NewMesh(triangles []Triangle, absorption AbsorptionLookup) *Mesh {
	m := &Mesh{Triangles: triangles}
	m.recompute(absorption)
	return m
}

func (m *Mesh) recompute(absorption AbsorptionLookup) {
	m.TotalArea = 0
	m.TotalWeightedArea = 0
	m.boundsValid = false
	for _, tri := range m.Triangles {
		m.TotalArea += tri.Area
		if absorption != nil {
			m.TotalWeightedArea += tri.Area * (1 - absorption(tri.MaterialIndex))
		}
		box := tri.BoundingBox()
		if !m.boundsValid {
			m.bounds = box
			m.boundsValid = true
		} else {
			m.bounds = m.bounds.Union(box)
		}
	}
}

// BoundingBox returns the mesh's axis-aligned bounding box.
func (m *Mesh) BoundingBox() core.AABB {
	return m.bounds
}

// AverageAbsorption is total_weighted_area / total_area, the area-weighted
// mean mid-band absorption coefficient used by the Eyring T60 formula.
// Returns 0 for an empty mesh.
func (m *Mesh) AverageAbsorption() float64 {
	if m.TotalArea <= 0 {
		return 0
	}
	return 1 - m.TotalWeightedArea/m.TotalArea
}

// RayIntersect performs the linear-scan double-sided intersection test
// against every triangle, keeping the smallest-t hit in (1e-3, tMax). If
// the winning triangle's cached normal faces the same way as the ray
// (positive dot product), the returned normal is negated so it always
// points back towards the ray's origin side.
func (m *Mesh) RayIntersect(ray core.Ray, tMax float64) (Hit, bool) {
	const tMin = 1e-3

	best := tMax
	found := false
	var hit Hit

	for _, tri := range m.Triangles {
		t, ok := tri.Intersect(ray, tMin, best)
		if !ok {
			continue
		}
		best = t
		found = true
		normal := tri.Normal
		if normal.Dot(ray.Direction) > 0 {
			normal = normal.Negate()
		}
		hit = Hit{
			Point:         ray.At(t),
			Normal:        normal,
			MaterialIndex: tri.MaterialIndex,
			Distance:      t,
		}
	}
	return hit, found
}

// LineIntersect reports whether any triangle occludes the bounded segment,
// accepting hits with t in (1e-5, 1). Used for next-event-estimation
// visibility queries between a path vertex and a listener.
func (m *Mesh) LineIntersect(seg core.Segment) bool {
	const tMin, tMax = 1e-5, 1
	ray := core.NewRay(seg.Origin, seg.Dir)
	for _, tri := range m.Triangles {
		if _, ok := tri.Intersect(ray, tMin, tMax); ok {
			return true
		}
	}
	return false
}

// SamplePoint draws a uniformly distributed point and its outward normal
// on the mesh's surface, weighted by each triangle's area. Returns false
// for an empty mesh.
func (m *Mesh) SamplePoint(random *rand.Rand) (point, normal core.Vec3, ok bool) {
	if m.TotalArea <= 0 || len(m.Triangles) == 0 {
		return core.Vec3{}, core.Vec3{}, false
	}
	x := random.Float64() * m.TotalArea
	for _, tri := range m.Triangles {
		x -= tri.Area
		if x < 0 {
			return tri.SamplePoint(random), tri.Normal, true
		}
	}
	// Floating-point rounding can leave a residual past the last
	// triangle's area; fall back to it rather than returning none.
	last := m.Triangles[len(m.Triangles)-1]
	return last.SamplePoint(random), last.Normal, true
}

// Volume sums each triangle's signed-volume contribution, giving the
// enclosed volume of the mesh via the divergence theorem. Meaningless for
// an open (non-watertight) mesh, but harmless to compute regardless.
func (m *Mesh) Volume() float64 {
	v := 0.0
	for _, tri := range m.Triangles {
		v += tri.SignedVolume()
	}
	return math.Abs(v)
}

// Combine merges other's triangles into this mesh and recomputes the
// bounding box and area aggregates. Combine does not check material
// indices (ValidateMaterials does); it tolerates coincident zero-area
// triangles.
func (m *Mesh) Combine(other *Mesh, absorption AbsorptionLookup) {
	m.Triangles = append(m.Triangles, other.Triangles...)
	m.recompute(absorption)
}

// ErrMissingMaterial reports a mesh triangle whose material index has no
// corresponding entry in the scene's material table.
type ErrMissingMaterial struct {
	MaterialIndex int
}

func (e *ErrMissingMaterial) Error() string {
	return fmt.Sprintf("geometry: triangle references missing material index %d", e.MaterialIndex)
}

// ValidateMaterials checks that every triangle's MaterialIndex is within
// [0, materialCount), returning *ErrMissingMaterial on the first violation.
func (m *Mesh) ValidateMaterials(materialCount int) error {
	for _, tri := range m.Triangles {
		if tri.MaterialIndex < 0 || tri.MaterialIndex >= materialCount {
			return &ErrMissingMaterial{MaterialIndex: tri.MaterialIndex}
		}
	}
	return nil
}
