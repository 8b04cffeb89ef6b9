package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3 // Minimum corner
	Max mgl64.Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max mgl64.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...mgl64.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]
	for _, point := range points[1:] {
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], point[axis])
			max[axis] = math.Max(max[axis], point[axis])
		}
	}

	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin[axis]
		direction := ray.Direction[axis]

		// Parallel to the slab: only the origin decides
		if math.Abs(direction) < 1e-8 {
			if origin < aabb.Min[axis] || origin > aabb.Max[axis] {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (aabb.Min[axis] - origin) * invDirection
		t2 := (aabb.Max[axis] - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}

// Translate returns the box moved by offset
func (aabb AABB) Translate(offset mgl64.Vec3) AABB {
	return AABB{Min: aabb.Min.Add(offset), Max: aabb.Max.Add(offset)}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	var min, max mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		min[axis] = math.Min(aabb.Min[axis], other.Min[axis])
		max[axis] = math.Max(aabb.Max[axis], other.Max[axis])
	}
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() mgl64.Vec3 {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() mgl64.Vec3 {
	return aabb.Max.Sub(aabb.Min)
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X() <= aabb.Max.X() &&
		aabb.Min.Y() <= aabb.Max.Y() &&
		aabb.Min.Z() <= aabb.Max.Z()
}
