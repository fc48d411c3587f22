package server

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/df07/go-ppm-raytracer/pkg/export"
	"github.com/df07/go-ppm-raytracer/pkg/ppm"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
)

// handleImage renders a scene in one shot and returns it as PPM, or PNG with format=png
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	query := r.URL.Query()
	samples, err := parseIntParam(query, "samples", 0, 1, 10000)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	seed, err := parseSeedParam(query, 42)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	format := query.Get("format")
	if format == "" {
		format = "ppm"
	}
	if format != "ppm" && format != "png" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be ppm or png"})
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if samples == 0 {
		samples = sceneObj.SamplingConfig.SamplesPerPixel
	}

	rend, err := renderer.NewRenderer(sceneObj, renderer.RenderConfig{
		Width:       req.Width,
		Height:      req.Height,
		Samples:     samples,
		Workers:     0, // Auto-detect
		RowsPerTask: DefaultRowsPerTask,
		Seed:        seed,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	startTime := time.Now()
	fb, _, err := rend.Render()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Rendering failed: %v", err)})
		return
	}
	log.Printf("Rendered %s at %dx%d, %d spp in %v", sceneObj.Name, req.Width, req.Height, samples, time.Since(startTime))

	w.Header().Set("Access-Control-Allow-Origin", "*")
	if format == "png" {
		w.Header().Set("Content-Type", export.ContentType(imaging.PNG))
		if err := export.Encode(w, fb.ToImage(), imaging.PNG); err != nil {
			log.Printf("Error writing PNG response: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "image/x-portable-pixmap")
	bw := bufio.NewWriter(w)
	if err := ppm.Encode(bw, fb, nil); err != nil {
		log.Printf("Error writing PPM response: %v", err)
		return
	}
	if err := bw.Flush(); err != nil {
		log.Printf("Error writing PPM response: %v", err)
	}
}
