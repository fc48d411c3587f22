package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/geometry"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
	"github.com/df07/go-ppm-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Color        [3]float64             `json:"color"` // Shaded color of the pixel center
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *geometry.HitRecord
	Shape     geometry.Shape // The primitive that was hit
	Color     core.Vec3
}

// inspectPixel casts the center ray of a pixel and returns the nearest primitive it hits
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (InspectResult, error) {
	// Image rows run top to bottom, camera v runs bottom to top
	y := height - 1 - pixelY
	u, v := core.GetUV(float64(pixelX), float64(y), width, height)
	pixelWidth, pixelHeight := renderer.PixelExtent(width, height)

	ray, err := sceneObj.GetCamera().GetRay(u+pixelWidth/2, v+pixelHeight/2)
	if err != nil {
		return InspectResult{}, err
	}

	color, err := renderer.NewRaytracer(sceneObj).RayColor(ray)
	if err != nil {
		return InspectResult{}, err
	}

	// Test every primitive to learn which shape produced the nearest hit
	result := InspectResult{Color: color}
	var visit func(shape geometry.Shape) error
	visit = func(shape geometry.Shape) error {
		if list, ok := shape.(*geometry.HittableList); ok {
			for _, child := range list.Shapes() {
				if err := visit(child); err != nil {
					return err
				}
			}
			return nil
		}

		tMax := math.Inf(1)
		if result.Hit {
			tMax = result.HitRecord.T
		}
		hit, err := shape.Hit(ray, 0, tMax)
		if err != nil {
			return err
		}
		if hit != nil {
			result.Hit = true
			result.HitRecord = hit
			result.Shape = shape
		}
		return nil
	}

	if err := visit(sceneObj.GetWorld()); err != nil {
		return InspectResult{}, err
	}
	return result, nil
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case geometry.Sphere:
		properties["center"] = [3]float64{geom.Center.X, geom.Center.Y, geom.Center.Z}
		properties["radius"] = geom.Radius
		return "sphere", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sceneObj, err := s.createScene(inspectReq)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Validate pixel coordinates against the final image size
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result, err := inspectPixel(sceneObj, inspectReq.Width, inspectReq.Height, pixelX, pixelY)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	color := [3]float64{result.Color.X, result.Color.Y, result.Color.Z}
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, Color: color})
		return
	}

	geometryType, geometryProps := s.extractGeometryInfo(result.Shape)
	hit := result.HitRecord
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		GeometryType: geometryType,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Color:        color,
		Properties:   map[string]interface{}{"geometry": geometryProps},
	})
}
