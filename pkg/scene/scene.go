package scene

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/core"
)

// Object is anything that can be attached to a scene. ObjectType names the
// kind of node, e.g. "Mesh" or "PointLight".
type Object interface {
	ObjectType() string
}

// Scene is a flat, append-only scene graph. Every object is a direct child of
// the root and nothing is ever removed.
type Scene struct {
	children []Object

	Meshes        []*Mesh
	AmbientLights []*AmbientLight
	PointLights   []*PointLight
	Cameras       []*camera.Perspective
}

// New creates an empty scene
func New() *Scene {
	return &Scene{}
}

// Add attaches objects to the root. Supported objects are *Mesh,
// *AmbientLight, *PointLight and *camera.Perspective; other Object
// implementations are rejected and nothing after them is added.
func (s *Scene) Add(objects ...Object) error {
	for _, obj := range objects {
		switch o := obj.(type) {
		case *Mesh:
			s.Meshes = append(s.Meshes, o)
		case *AmbientLight:
			s.AmbientLights = append(s.AmbientLights, o)
		case *PointLight:
			s.PointLights = append(s.PointLights, o)
		case *camera.Perspective:
			s.Cameras = append(s.Cameras, o)
		default:
			return fmt.Errorf("unsupported scene object %s (%T)", obj.ObjectType(), obj)
		}
		s.children = append(s.children, obj)
	}
	return nil
}

// Children returns the root's children in insertion order
func (s *Scene) Children() []Object {
	return slices.Clone(s.children)
}

// MeshByName returns the first mesh with the given name
func (s *Scene) MeshByName(name string) (*Mesh, bool) {
	for _, m := range s.Meshes {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Intersect returns the closest mesh hit along ray within [tMin, tMax]
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	var closest Hit
	found := false
	for _, m := range s.Meshes {
		if hit, ok := m.Hit(ray, tMin, tMax); ok {
			closest = hit
			tMax = hit.T
			found = true
		}
	}
	return closest, found
}

// Ambient returns the summed ambient radiance (color times intensity)
func (s *Scene) Ambient() mgl64.Vec3 {
	var total mgl64.Vec3
	for _, l := range s.AmbientLights {
		total = total.Add(l.Color.Mul(l.Intensity))
	}
	return total
}

// AmbientLight lights every surface equally
type AmbientLight struct {
	Color     mgl64.Vec3
	Intensity float64
}

func (l *AmbientLight) ObjectType() string { return "AmbientLight" }

// NewAmbientLight creates an ambient light from a hex color
func NewAmbientLight(hex uint32, intensity float64) *AmbientLight {
	return &AmbientLight{Color: core.ColorFromHex(hex), Intensity: intensity}
}

// PointLight emits in all directions from Position. With Distance 0 the light
// has no cutoff and does not fall off.
type PointLight struct {
	Color     mgl64.Vec3
	Intensity float64
	Position  mgl64.Vec3
	Distance  float64
	Decay     float64
}

func (l *PointLight) ObjectType() string { return "PointLight" }

// NewPointLight creates a point light from a hex color with no cutoff distance
func NewPointLight(hex uint32, intensity float64) *PointLight {
	return &PointLight{
		Color:     core.ColorFromHex(hex),
		Intensity: intensity,
		Decay:     1,
	}
}

// Illuminate returns the unit direction from point to the light and the
// radiance arriving at point
func (l *PointLight) Illuminate(point mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	toLight := l.Position.Sub(point)
	distance := toLight.Len()
	if distance == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	radiance := l.Color.Mul(l.Intensity)
	if l.Distance > 0 && l.Decay > 0 {
		falloff := math.Pow(math.Max(0, 1-distance/l.Distance), l.Decay)
		radiance = radiance.Mul(falloff)
	}
	return toLight.Mul(1 / distance), radiance
}
