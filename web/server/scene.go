package server

import (
	"net/http"

	"github.com/df07/go-stilllife/pkg/scene"
)

// SceneResponse describes the still life for clients
type SceneResponse struct {
	Children []string         `json:"children"` // Root node types in insertion order
	Meshes   []scene.MeshInfo `json:"meshes"`
	Camera   CameraInfo       `json:"camera"`
	Lights   []LightInfo      `json:"lights"`
	Textures []TextureInfo    `json:"textures"`
	Viewport ViewportInfo     `json:"viewport"`
}

// CameraInfo is the current camera state
type CameraInfo struct {
	Position  [3]float64 `json:"position"`
	Direction [3]float64 `json:"direction"`
	Target    [3]float64 `json:"target"`
	FOV       float64    `json:"fov"`
	Aspect    float64    `json:"aspect"`
	Near      float64    `json:"near"`
	Far       float64    `json:"far"`
}

// LightInfo describes one light
type LightInfo struct {
	Type      string      `json:"type"`
	Color     [3]float64  `json:"color"`
	Intensity float64     `json:"intensity"`
	Position  *[3]float64 `json:"position,omitempty"`
}

// TextureInfo reports the load state of one texture file
type TextureInfo struct {
	Path    string `json:"path"`
	Ready   bool   `json:"ready"`
	Version int    `json:"version"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ViewportInfo is the current surface size
type ViewportInfo struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	BufferWidth      int     `json:"bufferWidth"`
	BufferHeight     int     `json:"bufferHeight"`
}

// handleScene returns meshes, camera, lights, textures and viewport
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	response, err := onLoop(r.Context(), s.still.Loop, s.describe)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// describe must run on the loop goroutine
func (s *Server) describe() SceneResponse {
	still := s.still
	cam := still.Camera

	response := SceneResponse{
		Meshes: still.Scene.Describe(),
		Camera: CameraInfo{
			Position:  [3]float64(cam.Position),
			Direction: [3]float64(cam.Direction()),
			Target:    [3]float64(still.Controls.Target),
			FOV:       cam.FOV,
			Aspect:    cam.Aspect,
			Near:      cam.Near,
			Far:       cam.Far,
		},
	}

	for _, child := range still.Scene.Children() {
		response.Children = append(response.Children, child.ObjectType())
	}

	for _, l := range still.Scene.AmbientLights {
		response.Lights = append(response.Lights, LightInfo{
			Type:      "ambient",
			Color:     [3]float64(l.Color),
			Intensity: l.Intensity,
		})
	}
	for _, l := range still.Scene.PointLights {
		position := [3]float64(l.Position)
		response.Lights = append(response.Lights, LightInfo{
			Type:      "point",
			Color:     [3]float64(l.Color),
			Intensity: l.Intensity,
			Position:  &position,
		})
	}

	for _, tex := range still.Textures.All() {
		info := TextureInfo{Path: tex.Path, Ready: tex.Ready(), Version: tex.Version()}
		info.Width, info.Height = tex.Size()
		if err := tex.Err(); err != nil {
			info.Error = err.Error()
		}
		response.Textures = append(response.Textures, info)
	}

	bufferWidth, bufferHeight := still.Renderer.DrawingBufferSize()
	response.Viewport = ViewportInfo{
		Width:            still.Viewport.Width,
		Height:           still.Viewport.Height,
		DevicePixelRatio: still.Viewport.DevicePixelRatio,
		BufferWidth:      bufferWidth,
		BufferHeight:     bufferHeight,
	}
	return response
}
