package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
)

// Octahedron is a regular octahedron inscribed in a sphere of Radius. Detail
// subdivides each face and pushes the new vertices onto the sphere.
type Octahedron struct {
	Radius float64
	Detail int

	triangles []triangle
}

type triangle struct {
	v0, v1, v2 mgl64.Vec3
	normal     mgl64.Vec3
}

var (
	octahedronVertices = []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	}
	octahedronFaces = [][3]int{
		{0, 2, 4}, {0, 4, 3}, {0, 3, 5}, {0, 5, 2},
		{1, 2, 5}, {1, 5, 3}, {1, 3, 4}, {1, 4, 2},
	}
)

// NewOctahedron builds the faceted shape
func NewOctahedron(radius float64, detail int) *Octahedron {
	if detail < 0 {
		detail = 0
	}
	o := &Octahedron{Radius: radius, Detail: detail}

	for _, face := range octahedronFaces {
		a := octahedronVertices[face[0]]
		b := octahedronVertices[face[1]]
		c := octahedronVertices[face[2]]
		o.subdivide(a, b, c, detail)
	}

	return o
}

// subdivide splits the face a,b,c into (detail+1)² triangles projected onto
// the circumscribed sphere
func (o *Octahedron) subdivide(a, b, c mgl64.Vec3, detail int) {
	cols := detail + 1
	grid := make([][]mgl64.Vec3, cols+1)

	for i := 0; i <= cols; i++ {
		f := float64(i) / float64(cols)
		aj := lerp(a, c, f)
		bj := lerp(b, c, f)
		rows := cols - i

		grid[i] = make([]mgl64.Vec3, rows+1)
		for j := 0; j <= rows; j++ {
			if j == 0 && i == cols {
				grid[i][j] = aj
			} else {
				grid[i][j] = lerp(aj, bj, float64(j)/float64(rows))
			}
		}
	}

	for i := 0; i < cols; i++ {
		for j := 0; j < 2*(cols-i)-1; j++ {
			k := j / 2
			if j%2 == 0 {
				o.addTriangle(grid[i][k+1], grid[i+1][k], grid[i][k])
			} else {
				o.addTriangle(grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
			}
		}
	}
}

func (o *Octahedron) addTriangle(a, b, c mgl64.Vec3) {
	v0 := a.Normalize().Mul(o.Radius)
	v1 := b.Normalize().Mul(o.Radius)
	v2 := c.Normalize().Mul(o.Radius)

	normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	// Keep winding outward regardless of subdivision order
	if normal.Dot(v0.Add(v1).Add(v2)) < 0 {
		v1, v2 = v2, v1
		normal = normal.Mul(-1)
	}

	o.triangles = append(o.triangles, triangle{v0: v0, v1: v1, v2: v2, normal: normal})
}

func lerp(a, b mgl64.Vec3, f float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(f))
}

// FaceCount returns the number of triangles
func (o *Octahedron) FaceCount() int {
	return len(o.triangles)
}

// Kind implements Geometry
func (o *Octahedron) Kind() Kind { return KindOctahedron }

// Parameters implements Geometry
func (o *Octahedron) Parameters() map[string]float64 {
	return map[string]float64{
		"radius": o.Radius,
		"detail": float64(o.Detail),
	}
}

// BoundingBox implements Geometry
func (o *Octahedron) BoundingBox() core.AABB {
	r := mgl64.Vec3{o.Radius, o.Radius, o.Radius}
	return core.NewAABB(r.Mul(-1), r)
}

// Hit implements Geometry. Faces are flat shaded; UVs follow the spherical
// projection of the hit point.
func (o *Octahedron) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	if !o.BoundingBox().Hit(ray, tMin, tMax) {
		return Hit{}, false
	}

	var best Hit
	found := false
	for i := range o.triangles {
		tri := &o.triangles[i]
		if !frontFacing(ray.Direction, tri.normal) {
			continue
		}
		t, ok := tri.intersect(ray, tMin, tMax)
		if !ok {
			continue
		}

		tMax = t
		point := ray.At(t)
		dir := point.Normalize()
		best = Hit{
			T:       t,
			Point:   point,
			Normal:  tri.normal,
			Tangent: tangentOnPlane(sphericalTangent(dir), tri.normal),
			UV:      polyhedronUV(dir),
		}
		found = true
	}

	return best, found
}

// intersect is the Möller-Trumbore ray/triangle test
func (tri *triangle) intersect(ray core.Ray, tMin, tMax float64) (float64, bool) {
	const epsilon = 1e-10

	edge1 := tri.v1.Sub(tri.v0)
	edge2 := tri.v2.Sub(tri.v0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		// Ray lies in the triangle's plane
		return 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Sub(tri.v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, false
	}
	return t, true
}

// polyhedronUV uses azimuth and inclination of a unit direction
func polyhedronUV(n mgl64.Vec3) mgl64.Vec2 {
	azimuth := math.Atan2(n.Z(), -n.X())
	inclination := math.Atan2(-n.Y(), math.Sqrt(n.X()*n.X()+n.Z()*n.Z()))
	return mgl64.Vec2{
		azimuth/2/math.Pi + 0.5,
		inclination/math.Pi + 0.5,
	}
}

// tangentOnPlane projects t onto the plane with the given normal
func tangentOnPlane(t, normal mgl64.Vec3) mgl64.Vec3 {
	projected := t.Sub(normal.Mul(t.Dot(normal)))
	if projected.Len() < 1e-9 {
		projected = normal.Cross(mgl64.Vec3{0, 1, 0})
		if projected.Len() < 1e-9 {
			projected = mgl64.Vec3{1, 0, 0}
		}
	}
	return projected.Normalize()
}
