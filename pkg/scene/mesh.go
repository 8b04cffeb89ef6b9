package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/geometry"
	"github.com/df07/go-stilllife/pkg/material"
)

// Mesh pairs a geometry with a material at a world position. Geometry and
// material may be shared between meshes.
type Mesh struct {
	ID       uuid.UUID
	Name     string
	Geometry geometry.Geometry
	Material *material.Standard
	Position mgl64.Vec3
}

// NewMesh creates a mesh at the origin with a fresh ID
func NewMesh(name string, geo geometry.Geometry, mat *material.Standard) *Mesh {
	return &Mesh{
		ID:       uuid.New(),
		Name:     name,
		Geometry: geo,
		Material: mat,
	}
}

// Hit is a mesh intersection in world space
type Hit struct {
	geometry.Hit
	Mesh *Mesh
}

func (m *Mesh) ObjectType() string { return "Mesh" }

// BoundingBox returns the world-space bounds of the mesh
func (m *Mesh) BoundingBox() core.AABB {
	return m.Geometry.BoundingBox().Translate(m.Position)
}

// Hit intersects a world-space ray with the mesh
func (m *Mesh) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	local := ray.Translate(m.Position.Mul(-1))
	if !m.Geometry.BoundingBox().Hit(local, tMin, tMax) {
		return Hit{}, false
	}
	hit, ok := m.Geometry.Hit(local, tMin, tMax)
	if !ok {
		return Hit{}, false
	}
	hit.Point = hit.Point.Add(m.Position)
	return Hit{Hit: hit, Mesh: m}, true
}
