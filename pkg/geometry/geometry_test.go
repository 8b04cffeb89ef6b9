package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-stilllife/pkg/core"
)

func TestCylinderSideHit(t *testing.T) {
	c := NewCylinder(1, 1, 0.3, 32)
	ray := core.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1})

	hit, ok := c.Hit(ray, 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 4.0, hit.T, 1e-9)
	assert.InDelta(t, 1.0, hit.Normal.Z(), 1e-9)
	assert.InDelta(t, 0.5, hit.UV.Y(), 1e-9)
	// Facing +Z is angle 0
	assert.InDelta(t, 0.0, hit.UV.X(), 1e-9)
	assert.InDelta(t, 1.0, hit.Tangent.X(), 1e-9)
}

func TestCylinderCapHits(t *testing.T) {
	c := NewCylinder(1, 1, 0.3, 32)

	top, ok := c.Hit(core.NewRay(mgl64.Vec3{0.2, 5, 0}, mgl64.Vec3{0, -1, 0}), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 4.85, top.T, 1e-9)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, top.Normal)
	assert.InDelta(t, 0.6, top.UV.Y(), 1e-9)

	bottom, ok := c.Hit(core.NewRay(mgl64.Vec3{0, -5, 0}, mgl64.Vec3{0, 1, 0}), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 4.85, bottom.T, 1e-9)
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, bottom.Normal)

	open := NewCylinder(1, 1, 0.3, 32)
	open.OpenEnded = true
	_, ok = open.Hit(core.NewRay(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}), 0.001, 100)
	assert.False(t, ok)
}

func TestCylinderMissesAndCulling(t *testing.T) {
	c := NewCylinder(1, 1, 0.3, 32)

	_, ok := c.Hit(core.NewRay(mgl64.Vec3{0, 1, 5}, mgl64.Vec3{0, 0, -1}), 0.001, 100)
	assert.False(t, ok, "ray passes above the cylinder")

	_, ok = c.Hit(core.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}), 0.001, 100)
	assert.False(t, ok, "back faces are culled from inside")
}

func TestConeFrustumNormalTilts(t *testing.T) {
	c := NewCylinder(0.5, 1, 1, 32)
	hit, ok := c.Hit(core.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1}), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 0.75, hit.Point.Z(), 1e-9)
	assert.Greater(t, hit.Normal.Y(), 0.0)
	assert.InDelta(t, 1.0, hit.Normal.Len(), 1e-9)
}

func TestSphereHit(t *testing.T) {
	s := NewSphere(0.4, 32, 32)
	hit, ok := s.Hit(core.NewRay(mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -1}), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 1.6, hit.T, 1e-9)
	assert.InDelta(t, 1.0, hit.Normal.Z(), 1e-9)
	// +Z sits a quarter turn from -X
	assert.InDelta(t, 0.25, hit.UV.X(), 1e-9)
	assert.InDelta(t, 0.5, hit.UV.Y(), 1e-9)

	_, ok = s.Hit(core.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}), 0.001, 100)
	assert.False(t, ok)

	top, ok := s.Hit(core.NewRay(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, -1, 0}), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 1.0, top.UV.Y(), 1e-9)
	assert.InDelta(t, 1.0, top.Tangent.Len(), 1e-9)
}

func TestOctahedronFaces(t *testing.T) {
	assert.Equal(t, 8, NewOctahedron(0.4, 0).FaceCount())
	assert.Equal(t, 32, NewOctahedron(0.4, 1).FaceCount())
}

func TestOctahedronHitOnVertexAxis(t *testing.T) {
	o := NewOctahedron(0.4, 0)

	// Straight down onto the top vertex region
	hit, ok := o.Hit(core.NewRay(mgl64.Vec3{0.01, 2, 0.01}, mgl64.Vec3{0, -1, 0}), 0.001, 100)
	require.True(t, ok)
	assert.InDelta(t, 0.4, hit.Point.Y(), 0.03)
	assert.Greater(t, hit.Normal.Y(), 0.0)

	// Flat face: the normal of the +X+Y+Z face is (1,1,1)/√3
	dir := mgl64.Vec3{-1, -1, -1}.Normalize()
	hit, ok = o.Hit(core.NewRay(mgl64.Vec3{2, 2, 2}, dir), 0.001, 100)
	require.True(t, ok)
	inv := 1 / math.Sqrt(3)
	assert.InDelta(t, inv, hit.Normal.X(), 1e-9)
	assert.InDelta(t, inv, hit.Normal.Y(), 1e-9)
	assert.InDelta(t, inv, hit.Normal.Z(), 1e-9)
	// Face plane is x+y+z = 0.4
	assert.InDelta(t, 0.4, hit.Point.X()+hit.Point.Y()+hit.Point.Z(), 1e-9)
	assert.InDelta(t, 0.0, hit.Tangent.Dot(hit.Normal), 1e-9)

	_, ok = o.Hit(core.NewRay(mgl64.Vec3{2, 2, 2}, dir.Mul(-1)), 0.001, 100)
	assert.False(t, ok)
}

func TestParametersAndKinds(t *testing.T) {
	tests := []struct {
		geometry Geometry
		kind     Kind
		key      string
		value    float64
	}{
		{NewCylinder(1.2, 1.2, 0.3, 0), KindCylinder, "radialSegments", 32},
		{NewCylinder(1.05, 1.05, 0.07, 32), KindCylinder, "height", 0.07},
		{NewOctahedron(0.4, 0), KindOctahedron, "radius", 0.4},
		{NewSphere(0.4, 32, 32), KindSphere, "heightSegments", 32},
		{NewSphere(1, 0, 0), KindSphere, "heightSegments", 16},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.geometry.Kind())
			assert.Equal(t, tt.value, tt.geometry.Parameters()[tt.key])
			assert.True(t, tt.geometry.BoundingBox().IsValid())
		})
	}
}
