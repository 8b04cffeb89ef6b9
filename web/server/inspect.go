package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-stilllife/pkg/geometry"
	"github.com/df07/go-stilllife/pkg/material"
	"github.com/df07/go-stilllife/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Mesh         string                 `json:"mesh,omitempty"`
	MeshID       string                 `json:"meshId,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	UV           [2]float64             `json:"uv"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// extractMaterialInfo describes the material and what it resolves to at uv
func (s *Server) extractMaterialInfo(mat *material.Standard, hit scene.Hit) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if mat == nil {
		return "none", properties
	}

	properties["metalness"] = mat.Metalness
	properties["roughness"] = mat.Roughness
	properties["aoMapIntensity"] = mat.AOMapIntensity
	properties["displacementScale"] = mat.DisplacementScale

	maps := make(map[string]interface{})
	for slot, tex := range mat.Maps() {
		maps[slot] = map[string]interface{}{"path": tex.Path, "ready": tex.Ready()}
	}
	properties["maps"] = maps

	surface := mat.Surface(hit.UV)
	properties["sample"] = map[string]interface{}{
		"albedo":    [3]float64(surface.Albedo),
		"roughness": surface.Roughness,
		"metalness": surface.Metalness,
		"ao":        surface.AO,
		"color": fmt.Sprintf("#%02x%02x%02x",
			int(clamp01(surface.Albedo[0])*255), int(clamp01(surface.Albedo[1])*255), int(clamp01(surface.Albedo[2])*255)),
	}
	return mat.Name, properties
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(mesh *scene.Mesh) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	for k, v := range mesh.Geometry.Parameters() {
		properties[k] = v
	}
	properties["position"] = [3]float64(mesh.Position)

	bbox := mesh.BoundingBox()
	properties["boundingBox"] = map[string]interface{}{
		"min": [3]float64(bbox.Min),
		"max": [3]float64(bbox.Max),
	}
	if oct, ok := mesh.Geometry.(*geometry.Octahedron); ok {
		properties["faces"] = oct.FaceCount()
	}
	return string(mesh.Geometry.Kind()), properties
}

// inspect must run on the loop goroutine
func (s *Server) inspect(x, y float64) InspectResponse {
	still := s.still
	hit, ok := still.Renderer.Pick(still.Scene, still.Camera, x, y)
	if !ok {
		return InspectResponse{Hit: false}
	}

	materialType, materialProps := s.extractMaterialInfo(hit.Mesh.Material, hit)
	geometryType, geometryProps := s.extractGeometryInfo(hit.Mesh)

	return InspectResponse{
		Hit:          true,
		Mesh:         hit.Mesh.Name,
		MeshID:       hit.Mesh.ID.String(),
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        [3]float64(hit.Point),
		Normal:       [3]float64(hit.Normal),
		UV:           [2]float64(hit.UV),
		Distance:     hit.T,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}
}

// handleInspect casts a ray through logical pixel (x, y) of the current view
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	response, err := onLoop(r.Context(), s.still.Loop, func() *InspectResponse {
		if x < 0 || y < 0 || x >= float64(s.still.Viewport.Width) || y >= float64(s.still.Viewport.Height) {
			return nil
		}
		resp := s.inspect(x, y)
		return &resp
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if response == nil {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
