package main

import (
	"context"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-stilllife/pkg/app"
	"github.com/df07/go-stilllife/pkg/controls"
	"github.com/df07/go-stilllife/pkg/viewport"
)

// game adapts the still life to ebiten. Ebiten calls Update, Layout and Draw
// from one goroutine, which therefore acts as the loop goroutine.
type game struct {
	still *app.StillLife

	ratio float64 // capped pixel ratio of the current layout

	frameImg *ebiten.Image

	stopWatch context.CancelFunc
}

var buttons = map[ebiten.MouseButton]controls.Button{
	ebiten.MouseButtonLeft:   controls.ButtonLeft,
	ebiten.MouseButtonMiddle: controls.ButtonMiddle,
	ebiten.MouseButtonRight:  controls.ButtonRight,
}

func newGame(still *app.StillLife) *game {
	g := &game{still: still, ratio: 1}
	if still.Watcher != nil {
		ctx, cancel := context.WithCancel(context.Background())
		g.stopWatch = cancel
		go still.Watcher.Run(ctx)
	}
	return g
}

func (g *game) close() {
	if g.stopWatch != nil {
		g.stopWatch()
	}
	if g.frameImg != nil {
		g.frameImg.Deallocate()
	}
}

func (g *game) Update() error {
	g.handleInput()
	return g.still.Loop.Tick()
}

func (g *game) handleInput() {
	orbit := g.still.Controls
	cx, cy := ebiten.CursorPosition()
	// Cursor positions are in drawing buffer pixels; controls work in
	// logical pixels
	x, y := float64(cx)/g.ratio, float64(cy)/g.ratio

	for eb, button := range buttons {
		if inpututil.IsMouseButtonJustPressed(eb) {
			orbit.PointerDown(button, x, y)
		}
		if inpututil.IsMouseButtonJustReleased(eb) {
			orbit.PointerUp()
		}
	}
	if orbit.Dragging() {
		orbit.PointerMove(x, y)
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		// Ebiten reports scrolling up as positive
		orbit.Wheel(-dy)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := g.still.Viewport
	scale := ebiten.Monitor().DeviceScaleFactor()
	if outsideWidth > 0 && outsideHeight > 0 && !vp.Matches(outsideWidth, outsideHeight, scale) {
		if err := g.still.Resize(outsideWidth, outsideHeight, scale); err != nil {
			g.still.Logger.Warnf("ignoring window size %dx%d: %v", outsideWidth, outsideHeight, err)
		}
	}
	g.ratio = viewport.PixelRatio(vp.DevicePixelRatio)
	return bufferSize(vp.Width, vp.Height, g.ratio)
}

func (g *game) Draw(screen *ebiten.Image) {
	frame := g.still.Frame()
	if frame.Image == nil {
		return
	}

	bounds := frame.Image.Bounds()
	if g.frameImg == nil || g.frameImg.Bounds().Dx() != bounds.Dx() || g.frameImg.Bounds().Dy() != bounds.Dy() {
		if g.frameImg != nil {
			g.frameImg.Deallocate()
		}
		g.frameImg = ebiten.NewImage(bounds.Dx(), bounds.Dy())
	}

	g.frameImg.WritePixels(frame.Image.Pix)
	screen.DrawImage(g.frameImg, nil)
}

// bufferSize matches the renderer's drawing buffer rounding
func bufferSize(width, height int, ratio float64) (int, int) {
	return max(1, int(math.Round(float64(width)*ratio))), max(1, int(math.Round(float64(height)*ratio)))
}
