package material

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/texture"
)

// Set holds the two shared still-life materials
type Set struct {
	Wood  *Standard
	Metal *Standard
}

// NewSet builds both materials from the texture set
func NewSet(textures *texture.Set) *Set {
	return &Set{
		Wood:  NewWood(textures.Wood),
		Metal: NewMetal(textures.Metal),
	}
}

// NewWood binds the wood family. The height map is loaded with the family but
// left unbound, so DisplacementScale has no visible effect.
func NewWood(family texture.Family) *Standard {
	m := NewStandard("wood")
	m.Metalness = 0.6
	m.Map = family.Color
	m.AOMap = family.AmbientOcclusion
	m.AOMapIntensity = 1
	m.DisplacementScale = 0.2
	m.RoughnessMap = family.Roughness
	m.NormalMap = family.Normal
	if m.Map != nil {
		m.Map.Repeat = mgl64.Vec2{1, 1}
	}
	return m
}

// NewMetal binds the metal family including its metalness map
func NewMetal(family texture.Family) *Standard {
	m := NewStandard("metal")
	m.Metalness = 0.6
	m.Map = family.Color
	m.AOMap = family.AmbientOcclusion
	m.AOMapIntensity = 0.5
	m.DisplacementScale = 0.05
	m.RoughnessMap = family.Roughness
	m.MetalnessMap = family.Metalness
	m.NormalMap = family.Normal
	return m
}
