package viewport

import (
	"fmt"
	"math"

	"github.com/df07/go-stilllife/pkg/camera"
)

// PixelRatioCap bounds the device pixel ratio handed to the renderer
const PixelRatioCap = 2.0

// Target is the renderer side of a viewport
type Target interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
}

// Viewport keeps the camera projection and the renderer output size in step
// with the host surface
type Viewport struct {
	Width            int
	Height           int
	DevicePixelRatio float64

	camera   *camera.Perspective
	renderer Target
}

// New creates a viewport and applies the initial size
func New(cam *camera.Perspective, renderer Target, width, height int, deviceRatio float64) (*Viewport, error) {
	v := &Viewport{camera: cam, renderer: renderer}
	if err := v.Resize(width, height, deviceRatio); err != nil {
		return nil, err
	}
	return v, nil
}

// Resize applies a new surface size and device pixel density. The camera
// aspect becomes width/height, the renderer is sized to width x height and
// its pixel ratio is capped at PixelRatioCap. Invalid input leaves everything
// unchanged.
func (v *Viewport) Resize(width, height int, deviceRatio float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid viewport size %dx%d", width, height)
	}
	if deviceRatio <= 0 || math.IsNaN(deviceRatio) || math.IsInf(deviceRatio, 0) {
		return fmt.Errorf("invalid device pixel ratio %v", deviceRatio)
	}

	v.Width = width
	v.Height = height
	v.DevicePixelRatio = deviceRatio

	v.camera.Aspect = float64(width) / float64(height)
	v.camera.UpdateProjectionMatrix()

	v.renderer.SetSize(width, height)
	v.renderer.SetPixelRatio(PixelRatio(deviceRatio))
	return nil
}

// Matches reports whether the viewport was last sized with exactly these
// values. The device ratio is compared before capping.
func (v *Viewport) Matches(width, height int, deviceRatio float64) bool {
	return v.Width == width && v.Height == height && v.DevicePixelRatio == deviceRatio
}

// PixelRatio is the ratio the renderer uses for a given device density
func PixelRatio(deviceRatio float64) float64 {
	return math.Min(deviceRatio, PixelRatioCap)
}

// Aspect returns width/height
func (v *Viewport) Aspect() float64 {
	return float64(v.Width) / float64(v.Height)
}
