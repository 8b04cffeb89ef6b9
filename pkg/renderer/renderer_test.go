package renderer

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/geometry"
	"github.com/df07/go-stilllife/pkg/material"
	"github.com/df07/go-stilllife/pkg/scene"
	"github.com/df07/go-stilllife/pkg/texture"
)

func newTestRenderer(t *testing.T, width, height int) *Renderer {
	t.Helper()
	r := New(Options{TileSize: 8, Workers: 2})
	r.SetSize(width, height)
	t.Cleanup(r.Dispose)
	return r
}

// sphereScene puts a unit sphere at the origin in front of a camera at z=5
func sphereScene(t *testing.T, mat *material.Standard, ambient float64, withPoint bool) (*scene.Scene, *camera.Perspective) {
	t.Helper()
	sc := scene.New()
	require.NoError(t, sc.Add(scene.NewMesh("ball", geometry.NewSphere(1, 32, 16), mat)))
	require.NoError(t, sc.Add(scene.NewAmbientLight(0xffffff, ambient)))
	if withPoint {
		light := scene.NewPointLight(0xffffff, 0.5)
		light.Position = mgl64.Vec3{0, 0, 10}
		require.NoError(t, sc.Add(light))
	}

	cam := camera.NewPerspective(90, 1, 0.1, 100)
	cam.Position = mgl64.Vec3{0, 0, 5}
	cam.LookAt(mgl64.Vec3{})
	return sc, cam
}

func TestNewTileGrid(t *testing.T) {
	tiles := NewTileGrid(70, 40, 32)
	require.Len(t, tiles, 6)

	assert.Equal(t, image.Rect(0, 0, 32, 32), tiles[0].Bounds)
	assert.Equal(t, image.Rect(64, 32, 70, 40), tiles[5].Bounds)

	covered := 0
	for i, tile := range tiles {
		assert.Equal(t, i, tile.ID)
		covered += tile.Bounds.Dx() * tile.Bounds.Dy()
	}
	assert.Equal(t, 70*40, covered)
}

func TestDrawingBufferSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		ratio         float64
		wantW, wantH  int
	}{
		{"unit ratio", 100, 50, 1, 100, 50},
		{"retina", 100, 50, 2, 200, 100},
		{"fractional rounds", 101, 33, 1.5, 152, 50},
		{"never empty", 1, 1, 0.25, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, tt.width, tt.height)
			r.SetPixelRatio(tt.ratio)

			w, h := r.DrawingBufferSize()
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)

			lw, lh := r.Size()
			assert.Equal(t, tt.width, lw)
			assert.Equal(t, tt.height, lh)
		})
	}
}

func TestRenderEmptySceneIsClearColor(t *testing.T) {
	r := newTestRenderer(t, 12, 10)
	cam := camera.NewPerspective(75, 1.2, 0.1, 100)

	img, err := r.Render(scene.New(), cam)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 12, 10), img.Bounds())

	for y := 0; y < 10; y++ {
		for x := 0; x < 12; x++ {
			assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(x, y))
		}
	}

	stats := r.LastStats()
	assert.Equal(t, 1, stats.Frame)
	assert.Equal(t, 120, stats.Pixels)
	assert.Zero(t, stats.Hits)
	assert.Equal(t, 2, stats.Workers)
	assert.Equal(t, 1, r.Frames())
}

func TestWorkerPoolDefaultsToCPUCount(t *testing.T) {
	wp := NewWorkerPool(0)
	assert.Equal(t, runtime.NumCPU(), wp.GetNumWorkers())
	assert.Equal(t, 3, NewWorkerPool(3).GetNumWorkers())
}

func TestRenderAmbientOnly(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	sc, cam := sphereScene(t, material.NewStandard("white"), 0.5, false)

	img, err := r.Render(sc, cam)
	require.NoError(t, err)

	// Ambient light reaches the diffuse albedo unchanged
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, img.RGBAAt(8, 8))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Greater(t, r.LastStats().Coverage(), 0.0)
	assert.Less(t, r.LastStats().Coverage(), 1.0)
}

func TestRenderPointLightAddsToAmbient(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	mat := material.NewStandard("white")

	sc, cam := sphereScene(t, mat, 0.2, false)
	ambientOnly, err := r.Render(sc, cam)
	require.NoError(t, err)

	sc, cam = sphereScene(t, mat, 0.2, true)
	lit, err := r.Render(sc, cam)
	require.NoError(t, err)

	assert.Greater(t, lit.RGBAAt(8, 8).R, ambientOnly.RGBAAt(8, 8).R)
	assert.Equal(t, 2, r.Frames())
}

func TestRenderUsesReadyColorMap(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			red.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	mat := material.NewStandard("red")
	mat.Map = texture.NewFromImage("red.png", red)

	r := newTestRenderer(t, 16, 16)
	sc, cam := sphereScene(t, mat, 1, false)
	img, err := r.Render(sc, cam)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(8, 8))
}

func TestRenderIgnoresUnreadyMaps(t *testing.T) {
	mat := material.NewStandard("pending")
	mat.Map = texture.New("missing.jpg")
	mat.NormalMap = texture.New("missing_normal.jpg")

	r := newTestRenderer(t, 16, 16)
	sc, cam := sphereScene(t, mat, 0.5, false)
	img, err := r.Render(sc, cam)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{128, 128, 128, 255}, img.RGBAAt(8, 8))
}

func TestRenderRespectsFarPlane(t *testing.T) {
	r := newTestRenderer(t, 16, 16)
	sc, cam := sphereScene(t, material.NewStandard("white"), 1, false)
	cam.Far = 3
	cam.UpdateProjectionMatrix()

	img, err := r.Render(sc, cam)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(8, 8))
}

func TestRenderAfterDispose(t *testing.T) {
	r := New(Options{Workers: 1})
	r.Dispose()
	r.Dispose()

	_, err := r.Render(scene.New(), camera.NewPerspective(75, 1, 0.1, 100))
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestPick(t *testing.T) {
	r := newTestRenderer(t, 100, 100)
	sc, cam := sphereScene(t, material.NewStandard("white"), 1, false)

	hit, ok := r.Pick(sc, cam, 50, 50)
	require.True(t, ok)
	assert.Equal(t, "ball", hit.Mesh.Name)
	assert.InDelta(t, 4, hit.T, 1e-9)

	_, ok = r.Pick(sc, cam, 1, 1)
	assert.False(t, ok)

	_, ok = r.Pick(sc, cam, -1, 50)
	assert.False(t, ok)
}

func TestPerturbNormal(t *testing.T) {
	normal := mgl64.Vec3{0, 0, 1}
	tangent := mgl64.Vec3{1, 0, 0}

	assert.Equal(t, normal, PerturbNormal(normal, tangent, mgl64.Vec3{0, 0, 1}))

	tilted := PerturbNormal(normal, tangent, mgl64.Vec3{1, 0, 1}.Normalize())
	assert.InDelta(t, math.Sqrt2/2, tilted.X(), 1e-12)
	assert.InDelta(t, math.Sqrt2/2, tilted.Z(), 1e-12)

	// Bitangent is N x T, so +Y in tangent space is world +Y here
	bent := PerturbNormal(normal, tangent, mgl64.Vec3{0, 1, 1}.Normalize())
	assert.Greater(t, bent.Y(), 0.0)
}

func TestCalculateAverageLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	// (0.2126 + 0.7152 + 0.0722 + 0) / 4
	assert.InDelta(t, 0.25, CalculateAverageLuminance(img), 1e-4)

	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.RGBA{255, 255, 255, 255})
	assert.InDelta(t, 1.0, CalculateAverageLuminance(white), 1e-4)
}
