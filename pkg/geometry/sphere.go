package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
)

// Sphere is a sphere centered on the origin
type Sphere struct {
	Radius         float64
	WidthSegments  int
	HeightSegments int
}

// NewSphere creates a sphere description
func NewSphere(radius float64, widthSegments, heightSegments int) *Sphere {
	if widthSegments <= 0 {
		widthSegments = 32
	}
	if heightSegments <= 0 {
		heightSegments = 16
	}
	return &Sphere{
		Radius:         radius,
		WidthSegments:  widthSegments,
		HeightSegments: heightSegments,
	}
}

// Kind implements Geometry
func (s *Sphere) Kind() Kind { return KindSphere }

// Parameters implements Geometry
func (s *Sphere) Parameters() map[string]float64 {
	return map[string]float64{
		"radius":         s.Radius,
		"widthSegments":  float64(s.WidthSegments),
		"heightSegments": float64(s.HeightSegments),
	}
}

// BoundingBox implements Geometry
func (s *Sphere) BoundingBox() core.AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return core.NewAABB(r.Mul(-1), r)
}

// Hit implements Geometry
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	oc := ray.Origin

	// at² + 2·halfB·t + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Only the entry point can face the ray
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		return Hit{}, false
	}

	point := ray.At(root)
	normal := point.Mul(1.0 / s.Radius)
	if !frontFacing(ray.Direction, normal) {
		return Hit{}, false
	}

	return Hit{
		T:       root,
		Point:   point,
		Normal:  normal,
		Tangent: sphericalTangent(normal),
		UV:      sphereUV(normal),
	}, true
}

// sphereUV maps a unit direction to the sphere's UV layout: U runs around the
// Y axis starting at -X, V is 1 at the north pole.
func sphereUV(n mgl64.Vec3) mgl64.Vec2 {
	phi := math.Atan2(n.Z(), -n.X())
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(math.Max(-1, math.Min(1, n.Y())))
	return mgl64.Vec2{phi / (2 * math.Pi), 1 - theta/math.Pi}
}

// sphericalTangent returns the direction of increasing U at unit direction n
func sphericalTangent(n mgl64.Vec3) mgl64.Vec3 {
	t := mgl64.Vec3{n.Z(), 0, -n.X()}
	if t.Len() < 1e-9 {
		return mgl64.Vec3{1, 0, 0}
	}
	return t.Normalize()
}
