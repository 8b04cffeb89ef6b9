package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
)

// minRoughness keeps the GGX lobe from collapsing into a delta
const minRoughness = 0.0525

// DiffuseColor is the albedo share reflected diffusely
func (s SurfaceSample) DiffuseColor() mgl64.Vec3 {
	return s.Albedo.Mul(1 - s.Metalness)
}

// SpecularColor is the reflectance at normal incidence
func (s SurfaceSample) SpecularColor() mgl64.Vec3 {
	dielectric := mgl64.Vec3{0.04, 0.04, 0.04}
	return dielectric.Mul(1 - s.Metalness).Add(s.Albedo.Mul(s.Metalness))
}

// Indirect returns the reflected ambient radiance. Ambient light only reaches
// the diffuse part and is attenuated by AO.
func (s SurfaceSample) Indirect(ambient mgl64.Vec3) mgl64.Vec3 {
	return core.MulVec(ambient, s.DiffuseColor()).Mul(s.AO)
}

// Direct returns the radiance reflected toward viewDir from a light of the given
// color arriving from lightDir. All directions are unit vectors pointing away
// from the surface.
func (s SurfaceSample) Direct(normal, lightDir, viewDir, lightColor mgl64.Vec3) mgl64.Vec3 {
	nDotL := normal.Dot(lightDir)
	if nDotL <= 0 {
		return mgl64.Vec3{}
	}
	nDotV := math.Max(normal.Dot(viewDir), 1e-4)

	halfway := lightDir.Add(viewDir)
	if halfway.Len() == 0 {
		halfway = normal
	}
	halfway = halfway.Normalize()
	nDotH := math.Max(normal.Dot(halfway), 0)
	vDotH := math.Max(viewDir.Dot(halfway), 0)

	roughness := math.Max(minRoughness, math.Min(s.Roughness, 1))
	alpha := roughness * roughness

	fresnel := FresnelSchlick(s.SpecularColor(), vDotH)
	specular := fresnel.Mul(VisibilitySmithGGX(alpha, nDotL, nDotV) * DistributionGGX(alpha, nDotH) * math.Pi)

	brdf := s.DiffuseColor().Add(specular)
	return core.MulVec(brdf, lightColor).Mul(nDotL)
}

// FresnelSchlick approximates reflectance at angle vDotH from f0
func FresnelSchlick(f0 mgl64.Vec3, vDotH float64) mgl64.Vec3 {
	weight := math.Pow(1-vDotH, 5)
	one := mgl64.Vec3{1, 1, 1}
	return f0.Add(one.Sub(f0).Mul(weight))
}

// DistributionGGX is the Trowbridge-Reitz normal distribution
func DistributionGGX(alpha, nDotH float64) float64 {
	a2 := alpha * alpha
	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

// VisibilitySmithGGX is the height-correlated Smith visibility term,
// already divided by 4·nDotL·nDotV.
func VisibilitySmithGGX(alpha, nDotL, nDotV float64) float64 {
	a2 := alpha * alpha
	gv := nDotL * math.Sqrt(a2+(1-a2)*nDotV*nDotV)
	gl := nDotV * math.Sqrt(a2+(1-a2)*nDotL*nDotL)
	return 0.5 / math.Max(gv+gl, 1e-9)
}
