package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/core"
)

// Perspective is a pinhole camera. Changes to FOV, Aspect, Near or Far only
// take effect after UpdateProjectionMatrix, so rays and the projection matrix
// always agree with each other.
type Perspective struct {
	FOV    float64 // Vertical field of view in degrees
	Aspect float64
	Near   float64
	Far    float64

	Position    mgl64.Vec3
	Up          mgl64.Vec3
	Orientation mgl64.Quat

	projection       mgl64.Mat4
	projectionFOV    float64
	projectionAspect float64
}

// NewPerspective creates a camera at the origin looking down -Z
func NewPerspective(fov, aspect, near, far float64) *Perspective {
	c := &Perspective{
		FOV:         fov,
		Aspect:      aspect,
		Near:        near,
		Far:         far,
		Up:          mgl64.Vec3{0, 1, 0},
		Orientation: mgl64.QuatIdent(),
	}
	c.UpdateProjectionMatrix()
	return c
}

// ObjectType identifies the camera as a scene node
func (c *Perspective) ObjectType() string { return "PerspectiveCamera" }

// UpdateProjectionMatrix recomputes the projection from the current parameters
func (c *Perspective) UpdateProjectionMatrix() {
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
	c.projectionFOV = c.FOV
	c.projectionAspect = c.Aspect
}

// Projection returns the last computed projection matrix
func (c *Perspective) Projection() mgl64.Mat4 {
	return c.projection
}

// ProjectionAspect is the aspect ratio baked into the current projection
func (c *Perspective) ProjectionAspect() float64 {
	return c.projectionAspect
}

// LookAt rotates the camera so that it faces target
func (c *Perspective) LookAt(target mgl64.Vec3) {
	forward := target.Sub(c.Position)
	if forward.Len() < 1e-12 {
		return
	}
	forward = forward.Normalize()

	right := forward.Cross(c.Up)
	if right.Len() < 1e-12 {
		// Looking straight along Up: pick any perpendicular
		right = forward.Cross(mgl64.Vec3{0, 0, 1})
		if right.Len() < 1e-12 {
			right = forward.Cross(mgl64.Vec3{1, 0, 0})
		}
	}
	right = right.Normalize()
	up := right.Cross(forward)

	basis := mgl64.Mat4FromCols(
		right.Vec4(0),
		up.Vec4(0),
		forward.Mul(-1).Vec4(0),
		mgl64.Vec4{0, 0, 0, 1},
	)
	c.Orientation = mgl64.Mat4ToQuat(basis).Normalize()
}

// Direction is the unit vector the camera looks along
func (c *Perspective) Direction() mgl64.Vec3 {
	return c.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Right is the camera's local +X axis in world space
func (c *Perspective) Right() mgl64.Vec3 {
	return c.Orientation.Rotate(mgl64.Vec3{1, 0, 0})
}

// LocalUp is the camera's local +Y axis in world space
func (c *Perspective) LocalUp() mgl64.Vec3 {
	return c.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
}

// View returns the world-to-camera matrix
func (c *Perspective) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Position.Add(c.Direction()), c.LocalUp())
}

// Ray returns the primary ray through normalized screen coordinates (s, t),
// where (0, 0) is the bottom-left corner and (1, 1) the top-right
func (c *Perspective) Ray(s, t float64) core.Ray {
	halfHeight := math.Tan(mgl64.DegToRad(c.projectionFOV) / 2)
	halfWidth := halfHeight * c.projectionAspect

	local := mgl64.Vec3{
		(2*s - 1) * halfWidth,
		(2*t - 1) * halfHeight,
		-1,
	}
	return core.NewRay(c.Position, c.Orientation.Rotate(local).Normalize())
}
