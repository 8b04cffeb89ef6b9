package texture

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Texture is a 2D image sampled by normalized UV coordinates. It starts out
// unready and gets its pixels bound once the loader has decoded the source.
type Texture struct {
	Path   string
	Repeat mgl64.Vec2 // UV tiling factor
	Offset mgl64.Vec2

	image   *image.RGBA
	version int
	err     error
}

// New creates an unready texture for the given source path
func New(path string) *Texture {
	return &Texture{
		Path:   path,
		Repeat: mgl64.Vec2{1, 1},
	}
}

// NewFromImage creates a texture with its pixels already bound
func NewFromImage(path string, img image.Image) *Texture {
	t := New(path)
	t.bind(toRGBA(img, 0))
	return t
}

// Ready reports whether decoded pixels are bound to the texture
func (t *Texture) Ready() bool {
	return t != nil && t.image != nil
}

// Version increments each time new pixels are bound
func (t *Texture) Version() int {
	return t.version
}

// Err returns the last decode failure, if any
func (t *Texture) Err() error {
	return t.err
}

// Size returns the bound image dimensions, or zero when unready
func (t *Texture) Size() (width, height int) {
	if t.image == nil {
		return 0, 0
	}
	b := t.image.Bounds()
	return b.Dx(), b.Dy()
}

func (t *Texture) bind(img *image.RGBA) {
	t.image = img
	t.err = nil
	t.version++
}

func (t *Texture) fail(err error) {
	t.err = err
}

// Sample returns the bilinearly filtered color at uv in [0,1] per channel.
// UVs are scaled by Repeat, shifted by Offset and wrapped. V=0 is the bottom
// row of the image.
func (t *Texture) Sample(uv mgl64.Vec2) mgl64.Vec3 {
	if t.image == nil {
		return mgl64.Vec3{1, 1, 1}
	}

	u := wrap(uv[0]*t.Repeat[0] + t.Offset[0])
	v := wrap(uv[1]*t.Repeat[1] + t.Offset[1])

	bounds := t.image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Texel centers sit at half-integer coordinates
	x := u*float64(width) - 0.5
	y := (1.0-v)*float64(height) - 0.5

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := t.texel(x0, y0, width, height)
	c10 := t.texel(x0+1, y0, width, height)
	c01 := t.texel(x0, y0+1, width, height)
	c11 := t.texel(x0+1, y0+1, width, height)

	top := c00.Mul(1 - fx).Add(c10.Mul(fx))
	bottom := c01.Mul(1 - fx).Add(c11.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func (t *Texture) texel(x, y, width, height int) mgl64.Vec3 {
	x = ((x % width) + width) % width
	y = ((y % height) + height) % height
	offset := t.image.PixOffset(x+t.image.Rect.Min.X, y+t.image.Rect.Min.Y)
	pix := t.image.Pix[offset : offset+3 : offset+3]
	return mgl64.Vec3{
		float64(pix[0]) / 255.0,
		float64(pix[1]) / 255.0,
		float64(pix[2]) / 255.0,
	}
}

func wrap(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		return 0
	}
	return x
}
