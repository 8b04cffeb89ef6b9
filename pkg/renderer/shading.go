package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/material"
	"github.com/df07/go-stilllife/pkg/scene"
)

// ClearColor fills pixels that no mesh covers
var ClearColor = mgl64.Vec3{0, 0, 0}

var fallbackMaterial = material.NewStandard("default")

// Shade computes the outgoing color at a hit: ambient light on the diffuse
// part scaled by AO, plus each point light's diffuse and specular
// contribution. Lights are not shadowed.
func Shade(hit scene.Hit, ray core.Ray, lights []*scene.PointLight, ambient mgl64.Vec3) mgl64.Vec3 {
	mat := hit.Mesh.Material
	if mat == nil {
		mat = fallbackMaterial
	}

	surface := mat.Surface(hit.UV)
	normal := PerturbNormal(hit.Normal, hit.Tangent, surface.Normal)
	view := ray.Direction.Mul(-1).Normalize()

	color := surface.Indirect(ambient)
	for _, light := range lights {
		dir, radiance := light.Illuminate(hit.Point)
		color = color.Add(surface.Direct(normal, dir, view, radiance))
	}
	return color
}

// PerturbNormal maps a tangent-space normal onto the surface frame built from
// the geometric normal and the tangent along increasing U
func PerturbNormal(normal, tangent, local mgl64.Vec3) mgl64.Vec3 {
	if local == (mgl64.Vec3{0, 0, 1}) {
		return normal
	}

	// Gram-Schmidt in case the tangent is not exactly perpendicular
	tangent = tangent.Sub(normal.Mul(normal.Dot(tangent)))
	if tangent.Len() < 1e-9 {
		return normal
	}
	tangent = tangent.Normalize()
	bitangent := normal.Cross(tangent)

	perturbed := tangent.Mul(local[0]).Add(bitangent.Mul(local[1])).Add(normal.Mul(local[2]))
	if perturbed.Len() < 1e-9 {
		return normal
	}
	return perturbed.Normalize()
}
