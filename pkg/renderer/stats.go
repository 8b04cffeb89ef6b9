package renderer

import (
	"image"
	"time"
)

// RenderStats describes one rendered frame
type RenderStats struct {
	Frame    int           // Sequence number, starting at 1
	Width    int           // Drawing buffer width
	Height   int           // Drawing buffer height
	Tiles    int           // Number of tiles rendered
	Workers  int           // Workers sharing the tiles
	Pixels   int           // Total number of pixels shaded
	Hits     int           // Pixels covered by a mesh
	Duration time.Duration // Wall time spent in Render
}

// TileStats is the per-tile share of RenderStats
type TileStats struct {
	Pixels int
	Hits   int
}

func (s *RenderStats) add(tile TileStats) {
	s.Tiles++
	s.Pixels += tile.Pixels
	s.Hits += tile.Hits
}

// Coverage is the fraction of pixels showing geometry
func (s RenderStats) Coverage() float64 {
	if s.Pixels == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Pixels)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
		}
	}
	return total / float64(pixels)
}
