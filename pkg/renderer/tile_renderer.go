package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/scene"
)

// frameJob is everything workers need to shade one frame. It is read-only
// while tiles are in flight.
type frameJob struct {
	scene   *scene.Scene
	camera  *camera.Perspective
	image   *image.RGBA
	width   int
	height  int
	ambient mgl64.Vec3
	forward mgl64.Vec3
}

func newFrameJob(sc *scene.Scene, cam *camera.Perspective, img *image.RGBA) *frameJob {
	bounds := img.Bounds()
	return &frameJob{
		scene:   sc,
		camera:  cam,
		image:   img,
		width:   bounds.Dx(),
		height:  bounds.Dy(),
		ambient: sc.Ambient(),
		forward: cam.Direction(),
	}
}

// TileRenderer shades the pixels of a tile
type TileRenderer struct{}

// NewTileRenderer creates a new tile renderer
func NewTileRenderer() *TileRenderer {
	return &TileRenderer{}
}

// RenderTileBounds casts one primary ray through the center of each pixel in
// bounds and writes the shaded result into the frame
func (tr *TileRenderer) RenderTileBounds(job *frameJob, bounds image.Rectangle) TileStats {
	stats := TileStats{Pixels: bounds.Dx() * bounds.Dy()}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			s := (float64(i) + 0.5) / float64(job.width)
			t := 1 - (float64(j)+0.5)/float64(job.height) // Image rows grow downward
			color, hit := tr.trace(job, job.camera.Ray(s, t))
			if hit {
				stats.Hits++
			}
			job.image.SetRGBA(i, j, core.ToRGBA(color))
		}
	}

	return stats
}

func (tr *TileRenderer) trace(job *frameJob, ray core.Ray) (mgl64.Vec3, bool) {
	tMin, tMax, ok := clipRange(job.camera, job.forward, ray)
	if !ok {
		return ClearColor, false
	}
	hit, ok := job.scene.Intersect(ray, tMin, tMax)
	if !ok {
		return ClearColor, false
	}
	return Shade(hit, ray, job.scene.PointLights, job.ambient), true
}

// clipRange converts the camera's near and far planes into a ray parameter
// range. The planes are perpendicular to the view direction, so the range
// widens toward the edges of the frame.
func clipRange(cam *camera.Perspective, forward mgl64.Vec3, ray core.Ray) (float64, float64, bool) {
	cos := ray.Direction.Dot(forward)
	if cos <= 0 {
		return 0, 0, false
	}
	return cam.Near / cos, cam.Far / cos, true
}
