package core

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// ColorFromHex converts a 0xRRGGBB value into a linear [0,1] color
func ColorFromHex(hex uint32) mgl64.Vec3 {
	return mgl64.Vec3{
		float64((hex>>16)&0xff) / 255.0,
		float64((hex>>8)&0xff) / 255.0,
		float64(hex&0xff) / 255.0,
	}
}

// Clamp returns a vector with components clamped to [minVal, maxVal]
func Clamp(v mgl64.Vec3, minVal, maxVal float64) mgl64.Vec3 {
	return mgl64.Vec3{
		max(minVal, min(maxVal, v[0])),
		max(minVal, min(maxVal, v[1])),
		max(minVal, min(maxVal, v[2])),
	}
}

// MulVec returns the component-wise product of two vectors
func MulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// ToRGBA converts a linear color into an opaque 8-bit RGBA value
func ToRGBA(c mgl64.Vec3) color.RGBA {
	c = Clamp(c, 0, 1)
	return color.RGBA{
		R: uint8(255*c[0] + 0.5),
		G: uint8(255*c[1] + 0.5),
		B: uint8(255*c[2] + 0.5),
		A: 255,
	}
}
