package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/geometry"
	"github.com/df07/go-stilllife/pkg/material"
)

// Mesh names of the still life
const (
	CylinderOne   = "cylinderOne"
	CylinderTwo   = "cylinderTwo"
	CylinderThree = "cylinderThree"
	CylinderFour  = "cylinderFour"
	Crystal       = "crystal"
	Sphere        = "sphere"
)

// Camera parameters
const (
	CameraFOV  = 75.0
	CameraNear = 0.1
	CameraFar  = 100.0
)

// CameraStart is where the camera is placed before any orbiting
var CameraStart = mgl64.Vec3{-1, 2, -2}

// StillLife is the assembled scene together with direct handles to its parts
type StillLife struct {
	Scene     *Scene
	Camera    *camera.Perspective
	Ambient   *AmbientLight
	Point     *PointLight
	Materials *material.Set

	// BaseGeometry is the cylinder geometry shared by name with cylinderOne
	BaseGeometry *geometry.Cylinder
}

type placement struct {
	name     string
	geometry geometry.Geometry
	material *material.Standard
	y        float64
}

// NewStillLife builds the fixed arrangement of four stacked discs, a crystal
// and a sphere, lit by an ambient and a point light and viewed by a
// perspective camera aimed at the crystal.
func NewStillLife(materials *material.Set, aspect float64) (*StillLife, error) {
	base := geometry.NewCylinder(1, 1, 0.3, geometry.DefaultRadialSegments)

	placements := []placement{
		{CylinderOne, base, materials.Wood, 0},
		{CylinderTwo, geometry.NewCylinder(1.2, 1.2, 0.3, 32), materials.Wood, -0.3},
		{CylinderThree, geometry.NewCylinder(1.05, 1.05, 0.07, 32), materials.Wood, 0.12},
		{CylinderFour, geometry.NewCylinder(0.9, 0.9, 0.07, 32), materials.Metal, 0.15},
		{Crystal, geometry.NewOctahedron(0.4, 0), materials.Wood, 1},
		{Sphere, geometry.NewSphere(0.4, 32, 32), materials.Metal, 0},
	}

	s := New()
	var crystal *Mesh
	for _, p := range placements {
		m := NewMesh(p.name, p.geometry, p.material)
		m.Position = mgl64.Vec3{0, p.y, 0}
		if err := s.Add(m); err != nil {
			return nil, err
		}
		if p.name == Crystal {
			crystal = m
		}
	}

	ambient := NewAmbientLight(0xffffff, 1)
	point := NewPointLight(0xffffff, 0.5)
	point.Position = mgl64.Vec3{2, 3, 4}
	if err := s.Add(ambient, point); err != nil {
		return nil, err
	}

	cam := camera.NewPerspective(CameraFOV, aspect, CameraNear, CameraFar)
	cam.Position = CameraStart
	cam.LookAt(crystal.Position)
	if err := s.Add(cam); err != nil {
		return nil, err
	}

	return &StillLife{
		Scene:        s,
		Camera:       cam,
		Ambient:      ambient,
		Point:        point,
		Materials:    materials,
		BaseGeometry: base,
	}, nil
}

// MeshInfo summarizes a mesh for logs and the web API
type MeshInfo struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Kind       geometry.Kind      `json:"kind"`
	Material   string             `json:"material"`
	Position   [3]float64         `json:"position"`
	Parameters map[string]float64 `json:"parameters"`
}

// Describe lists the meshes in insertion order
func (s *Scene) Describe() []MeshInfo {
	infos := make([]MeshInfo, 0, len(s.Meshes))
	for _, m := range s.Meshes {
		info := MeshInfo{
			ID:         m.ID.String(),
			Name:       m.Name,
			Kind:       m.Geometry.Kind(),
			Position:   [3]float64(m.Position),
			Parameters: m.Geometry.Parameters(),
		}
		if m.Material != nil {
			info.Material = m.Material.Name
		}
		infos = append(infos, info)
	}
	return infos
}

// String formats a mesh summary on one line
func (i MeshInfo) String() string {
	keys := make([]string, 0, len(i.Parameters))
	for k := range i.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := ""
	for _, k := range keys {
		params += fmt.Sprintf(" %s=%g", k, i.Parameters[k])
	}
	return fmt.Sprintf("%-14s %-10s %-5s y=%g%s", i.Name, i.Kind, i.Material, i.Position[1], params)
}
