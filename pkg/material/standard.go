package material

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/texture"
)

// Standard is a metal/roughness surface descriptor. Nil or unready maps are
// ignored and the scalar parameters apply on their own.
type Standard struct {
	Name  string
	Color mgl64.Vec3

	Map *texture.Texture

	AOMap          *texture.Texture
	AOMapIntensity float64

	RoughnessMap *texture.Texture
	Roughness    float64

	MetalnessMap *texture.Texture
	Metalness    float64

	NormalMap   *texture.Texture
	NormalScale mgl64.Vec2

	// Displacement only moves vertices when a DisplacementMap is bound
	DisplacementMap   *texture.Texture
	DisplacementScale float64
	DisplacementBias  float64
}

// NewStandard creates a material with the standard defaults: white, fully
// rough, non-metallic, unit AO intensity and normal scale.
func NewStandard(name string) *Standard {
	return &Standard{
		Name:              name,
		Color:             mgl64.Vec3{1, 1, 1},
		AOMapIntensity:    1,
		Roughness:         1,
		Metalness:         0,
		NormalScale:       mgl64.Vec2{1, 1},
		DisplacementScale: 1,
	}
}

// SurfaceSample is the resolved appearance of a material at one UV coordinate
type SurfaceSample struct {
	Albedo    mgl64.Vec3
	Roughness float64
	Metalness float64
	AO        float64    // Multiplier for indirect light, 1 = unoccluded
	Normal    mgl64.Vec3 // Tangent-space normal, +Z is the geometric normal
}

// Surface evaluates every bound map at uv
func (m *Standard) Surface(uv mgl64.Vec2) SurfaceSample {
	s := SurfaceSample{
		Albedo:    m.Color,
		Roughness: m.Roughness,
		Metalness: m.Metalness,
		AO:        1,
		Normal:    mgl64.Vec3{0, 0, 1},
	}

	if m.Map.Ready() {
		texel := m.Map.Sample(uv)
		s.Albedo = core.MulVec(s.Albedo, texel)
	}
	// Roughness lives in the green channel, metalness in blue, AO in red
	if m.RoughnessMap.Ready() {
		s.Roughness *= m.RoughnessMap.Sample(uv)[1]
	}
	if m.MetalnessMap.Ready() {
		s.Metalness *= m.MetalnessMap.Sample(uv)[2]
	}
	if m.AOMap.Ready() {
		s.AO = (m.AOMap.Sample(uv)[0]-1)*m.AOMapIntensity + 1
	}
	if m.NormalMap.Ready() {
		texel := m.NormalMap.Sample(uv)
		n := mgl64.Vec3{
			(texel[0]*2 - 1) * m.NormalScale[0],
			(texel[1]*2 - 1) * m.NormalScale[1],
			texel[2]*2 - 1,
		}
		if n.Len() > 0 {
			s.Normal = n.Normalize()
		}
	}

	return s
}

// Maps returns the bound maps keyed by slot name
func (m *Standard) Maps() map[string]*texture.Texture {
	maps := make(map[string]*texture.Texture)
	for slot, tex := range map[string]*texture.Texture{
		"map":             m.Map,
		"aoMap":           m.AOMap,
		"roughnessMap":    m.RoughnessMap,
		"metalnessMap":    m.MetalnessMap,
		"normalMap":       m.NormalMap,
		"displacementMap": m.DisplacementMap,
	} {
		if tex != nil {
			maps[slot] = tex
		}
	}
	return maps
}
