package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
)

// DefaultRadialSegments is the tessellation hint used when none is given
const DefaultRadialSegments = 32

// Cylinder is a capped cylinder (or cone frustum) centered on the origin with
// its axis along Y. RadialSegments is kept as a parameter of the description;
// intersection uses the exact surface.
type Cylinder struct {
	RadiusTop      float64
	RadiusBottom   float64
	Height         float64
	RadialSegments int
	OpenEnded      bool
}

// NewCylinder creates a capped cylinder
func NewCylinder(radiusTop, radiusBottom, height float64, radialSegments int) *Cylinder {
	if radialSegments <= 0 {
		radialSegments = DefaultRadialSegments
	}
	return &Cylinder{
		RadiusTop:      radiusTop,
		RadiusBottom:   radiusBottom,
		Height:         height,
		RadialSegments: radialSegments,
	}
}

// Kind implements Geometry
func (c *Cylinder) Kind() Kind { return KindCylinder }

// Parameters implements Geometry
func (c *Cylinder) Parameters() map[string]float64 {
	return map[string]float64{
		"radiusTop":      c.RadiusTop,
		"radiusBottom":   c.RadiusBottom,
		"height":         c.Height,
		"radialSegments": float64(c.RadialSegments),
	}
}

// BoundingBox implements Geometry
func (c *Cylinder) BoundingBox() core.AABB {
	r := math.Max(c.RadiusTop, c.RadiusBottom)
	h := c.Height / 2
	return core.NewAABB(mgl64.Vec3{-r, -h, -r}, mgl64.Vec3{r, h, r})
}

// radiusAt returns the radius of the side wall at height y
func (c *Cylinder) radiusAt(y float64) float64 {
	return (c.RadiusTop+c.RadiusBottom)/2 + c.slope()*y
}

func (c *Cylinder) slope() float64 {
	if c.Height == 0 {
		return 0
	}
	return (c.RadiusTop - c.RadiusBottom) / c.Height
}

// Hit implements Geometry
func (c *Cylinder) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	best, found := c.hitSide(ray, tMin, tMax)
	if found {
		tMax = best.T
	}

	if !c.OpenEnded {
		if capHit, ok := c.hitCap(ray, tMin, tMax, true); ok {
			best, found, tMax = capHit, true, capHit.T
		}
		if capHit, ok := c.hitCap(ray, tMin, tMax, false); ok {
			best, found = capHit, true
		}
	}

	return best, found
}

func (c *Cylinder) hitSide(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	o, d := ray.Origin, ray.Direction
	k := c.slope()
	r0 := (c.RadiusTop + c.RadiusBottom) / 2
	rOrigin := r0 + k*o.Y()

	// (ox+t·dx)² + (oz+t·dz)² = (r0 + k·(oy+t·dy))²
	a := d.X()*d.X() + d.Z()*d.Z() - k*k*d.Y()*d.Y()
	b := 2 * (o.X()*d.X() + o.Z()*d.Z() - k*d.Y()*rOrigin)
	cc := o.X()*o.X() + o.Z()*o.Z() - rOrigin*rOrigin

	const epsilon = 1e-12
	if math.Abs(a) < epsilon {
		// Ray parallel to the wall
		return Hit{}, false
	}

	discriminant := b*b - 4*a*cc
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(discriminant)
	roots := [2]float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)}
	if roots[0] > roots[1] {
		roots[0], roots[1] = roots[1], roots[0]
	}

	halfHeight := c.Height / 2
	for _, t := range roots {
		if t < tMin || t > tMax {
			continue
		}
		point := ray.At(t)
		if point.Y() < -halfHeight || point.Y() > halfHeight {
			continue
		}
		radius := c.radiusAt(point.Y())
		if radius < 0 {
			continue
		}

		normal := mgl64.Vec3{point.X(), -k * radius, point.Z()}.Normalize()
		if !frontFacing(d, normal) {
			continue
		}

		theta := math.Atan2(point.X(), point.Z())
		if theta < 0 {
			theta += 2 * math.Pi
		}
		v := 0.5
		if c.Height > 0 {
			v = (point.Y() + halfHeight) / c.Height
		}

		return Hit{
			T:       t,
			Point:   point,
			Normal:  normal,
			Tangent: mgl64.Vec3{math.Cos(theta), 0, -math.Sin(theta)},
			UV:      mgl64.Vec2{theta / (2 * math.Pi), v},
		}, true
	}

	return Hit{}, false
}

func (c *Cylinder) hitCap(ray core.Ray, tMin, tMax float64, top bool) (Hit, bool) {
	sign := 1.0
	radius := c.RadiusTop
	if !top {
		sign = -1.0
		radius = c.RadiusBottom
	}
	if radius <= 0 {
		return Hit{}, false
	}

	normal := mgl64.Vec3{0, sign, 0}
	if !frontFacing(ray.Direction, normal) {
		return Hit{}, false
	}

	t := (sign*c.Height/2 - ray.Origin.Y()) / ray.Direction.Y()
	if t < tMin || t > tMax {
		return Hit{}, false
	}

	point := ray.At(t)
	if point.X()*point.X()+point.Z()*point.Z() > radius*radius {
		return Hit{}, false
	}

	return Hit{
		T:       t,
		Point:   point,
		Normal:  normal,
		Tangent: mgl64.Vec3{0, 0, 1},
		UV: mgl64.Vec2{
			point.Z()/(2*radius) + 0.5,
			sign*point.X()/(2*radius) + 0.5,
		},
	}, true
}
