package server

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"strconv"

	xdraw "golang.org/x/image/draw"
)

// encodeFrame encodes img as PNG, scaled to width x height when both are set
func encodeFrame(img *image.RGBA, width, height int) ([]byte, error) {
	var src image.Image = img
	if width > 0 && height > 0 && (width != img.Bounds().Dx() || height != img.Bounds().Dy()) {
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		src = scaled
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleFrame returns the latest frame as PNG, optionally resized with
// ?width=&height=
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame := s.latestFrame()
	if frame.Image == nil {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}

	query := r.URL.Query()
	width, err := parseIntParam(query, "width", 0, 1, 4096)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseIntParam(query, "height", 0, 1, 4096)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := encodeFrame(frame.Image, width, height)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode image: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Frame-Number", strconv.Itoa(frame.Number))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
