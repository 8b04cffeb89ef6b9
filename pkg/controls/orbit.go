package controls

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/camera"
)

// Button identifies the pointer button that started a drag
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

type state int

const (
	stateNone state = iota
	stateRotate
	stateDolly
	statePan
)

const epsilon = 1e-6

// Orbit rotates, zooms and pans a perspective camera around Target. Pointer
// input accumulates deltas; Update applies them, with damping spreading each
// delta over several frames.
type Orbit struct {
	Camera *camera.Perspective
	Target mgl64.Vec3

	EnableDamping bool
	DampingFactor float64

	EnableRotate bool
	EnableZoom   bool
	EnablePan    bool
	RotateSpeed  float64
	ZoomSpeed    float64
	PanSpeed     float64

	MinDistance, MaxDistance     float64
	MinPolarAngle, MaxPolarAngle float64

	// Height in pixels of the element receiving pointer input
	ViewportHeight float64

	state       state
	pointer     mgl64.Vec2
	deltaTheta  float64
	deltaPhi    float64
	scale       float64
	panOffset   mgl64.Vec3
	zoomChanged bool

	lastPosition    mgl64.Vec3
	lastOrientation mgl64.Quat

	savedTarget   mgl64.Vec3
	savedPosition mgl64.Vec3
}

// NewOrbit creates controls for cam orbiting the origin
func NewOrbit(cam *camera.Perspective, viewportHeight float64) *Orbit {
	o := &Orbit{
		Camera:         cam,
		DampingFactor:  0.05,
		EnableRotate:   true,
		EnableZoom:     true,
		EnablePan:      true,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		PanSpeed:       1,
		MinDistance:    0,
		MaxDistance:    math.Inf(1),
		MinPolarAngle:  0,
		MaxPolarAngle:  math.Pi,
		ViewportHeight: viewportHeight,
		scale:          1,
	}
	o.SaveState()
	return o
}

// SaveState remembers the current target and camera position for Reset
func (o *Orbit) SaveState() {
	o.savedTarget = o.Target
	o.savedPosition = o.Camera.Position
}

// Reset restores the saved state and drops pending motion
func (o *Orbit) Reset() {
	o.Target = o.savedTarget
	o.Camera.Position = o.savedPosition
	o.deltaTheta, o.deltaPhi = 0, 0
	o.panOffset = mgl64.Vec3{}
	o.scale = 1
	o.state = stateNone
	o.Update()
}

// Dragging reports whether a pointer drag is in progress
func (o *Orbit) Dragging() bool {
	return o.state != stateNone
}

// PointerDown starts a drag: left rotates, middle dollies, right pans
func (o *Orbit) PointerDown(button Button, x, y float64) {
	o.pointer = mgl64.Vec2{x, y}
	switch {
	case button == ButtonLeft && o.EnableRotate:
		o.state = stateRotate
	case button == ButtonMiddle && o.EnableZoom:
		o.state = stateDolly
	case button == ButtonRight && o.EnablePan:
		o.state = statePan
	default:
		o.state = stateNone
	}
}

// PointerMove continues the current drag
func (o *Orbit) PointerMove(x, y float64) {
	if o.state == stateNone {
		return
	}
	end := mgl64.Vec2{x, y}
	delta := end.Sub(o.pointer)
	o.pointer = end

	height := o.viewportHeight()
	switch o.state {
	case stateRotate:
		delta = delta.Mul(o.RotateSpeed)
		o.RotateLeft(2 * math.Pi * delta.X() / height)
		o.RotateUp(2 * math.Pi * delta.Y() / height)
	case stateDolly:
		if delta.Y() > 0 {
			o.DollyOut(o.zoomScale())
		} else if delta.Y() < 0 {
			o.DollyIn(o.zoomScale())
		}
	case statePan:
		delta = delta.Mul(o.PanSpeed)
		o.Pan(delta.X(), delta.Y())
	}
}

// PointerUp ends the current drag
func (o *Orbit) PointerUp() {
	o.state = stateNone
}

// Wheel zooms in for negative deltaY and out for positive
func (o *Orbit) Wheel(deltaY float64) {
	if !o.EnableZoom || o.state != stateNone {
		return
	}
	if deltaY < 0 {
		o.DollyIn(o.zoomScale())
	} else if deltaY > 0 {
		o.DollyOut(o.zoomScale())
	}
}

// RotateLeft turns the camera around the target's vertical axis
func (o *Orbit) RotateLeft(angle float64) {
	o.deltaTheta -= angle
}

// RotateUp tilts the camera over the target
func (o *Orbit) RotateUp(angle float64) {
	o.deltaPhi -= angle
}

// DollyIn moves the camera toward the target
func (o *Orbit) DollyIn(scale float64) {
	o.scale *= scale
	o.zoomChanged = true
}

// DollyOut moves the camera away from the target
func (o *Orbit) DollyOut(scale float64) {
	o.scale /= scale
	o.zoomChanged = true
}

// Pan shifts target and camera by a pointer delta given in pixels
func (o *Orbit) Pan(deltaX, deltaY float64) {
	offset := o.Camera.Position.Sub(o.Target)
	targetDistance := offset.Len() * math.Tan(mgl64.DegToRad(o.Camera.FOV)/2)
	height := o.viewportHeight()

	left := o.Camera.Right().Mul(-2 * deltaX * targetDistance / height)
	up := o.Camera.LocalUp().Mul(2 * deltaY * targetDistance / height)
	o.panOffset = o.panOffset.Add(left).Add(up)
}

func (o *Orbit) zoomScale() float64 {
	return math.Pow(0.95, o.ZoomSpeed)
}

func (o *Orbit) viewportHeight() float64 {
	if o.ViewportHeight <= 0 {
		return 1
	}
	return o.ViewportHeight
}

// Update advances the controls by one frame and re-aims the camera at Target.
// It reports whether the camera moved.
func (o *Orbit) Update() bool {
	offset := o.Camera.Position.Sub(o.Target)

	radius := offset.Len()
	theta := math.Atan2(offset.X(), offset.Z())
	phi := 0.0
	if radius > 0 {
		phi = math.Acos(math.Max(-1, math.Min(1, offset.Y()/radius)))
	}

	factor := 1.0
	if o.EnableDamping {
		factor = o.DampingFactor
	}
	theta += o.deltaTheta * factor
	phi += o.deltaPhi * factor

	phi = math.Max(o.MinPolarAngle, math.Min(o.MaxPolarAngle, phi))
	phi = math.Max(epsilon, math.Min(math.Pi-epsilon, phi))

	radius *= o.scale
	radius = math.Max(o.MinDistance, math.Min(o.MaxDistance, radius))

	o.Target = o.Target.Add(o.panOffset.Mul(factor))

	sinPhi := math.Sin(phi)
	offset = mgl64.Vec3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	}

	o.Camera.Position = o.Target.Add(offset)
	o.Camera.LookAt(o.Target)

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
		o.panOffset = o.panOffset.Mul(1 - o.DampingFactor)
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.panOffset = mgl64.Vec3{}
	}
	o.scale = 1

	moved := o.lastPosition.Sub(o.Camera.Position).LenSqr() > epsilon ||
		8*(1-o.lastOrientation.Dot(o.Camera.Orientation)) > epsilon
	if o.zoomChanged || moved {
		o.lastPosition = o.Camera.Position
		o.lastOrientation = o.Camera.Orientation
		o.zoomChanged = false
		return true
	}
	return false
}
