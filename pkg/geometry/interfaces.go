package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
)

// Kind names a parametric shape
type Kind string

const (
	KindCylinder   Kind = "cylinder"
	KindOctahedron Kind = "octahedron"
	KindSphere     Kind = "sphere"
)

// Geometry is an immutable shape description in its own local space. Only
// front faces are reported by Hit, so rays starting inside a closed shape
// pass through it.
type Geometry interface {
	Kind() Kind
	Hit(ray core.Ray, tMin, tMax float64) (Hit, bool)
	BoundingBox() core.AABB
	Parameters() map[string]float64
}

// Hit contains information about a ray-geometry intersection
type Hit struct {
	T       float64    // Parameter t along the ray
	Point   mgl64.Vec3 // Point of intersection
	Normal  mgl64.Vec3 // Outward unit normal
	Tangent mgl64.Vec3 // Unit tangent along increasing U
	UV      mgl64.Vec2
}

// frontFacing reports whether a ray travelling along direction sees the
// outward side of a surface with the given normal
func frontFacing(direction, outwardNormal mgl64.Vec3) bool {
	return direction.Dot(outwardNormal) < 0
}
