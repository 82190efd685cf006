package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/geometry"
	"github.com/df07/go-cpu-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType"`
	Primitive    int                    `json:"primitive"`
	MaterialID   int                    `json:"materialId"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Color        [3]float64             `json:"color"` // Linear shaded color of the pixel
	Properties   map[string]interface{} `json:"properties"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// extractMaterialInfo extracts material information
func (s *Server) extractMaterialInfo(sceneObj *scene.Scene, materialID int) map[string]interface{} {
	properties := make(map[string]interface{})

	m, ok := sceneObj.Material(materialID)
	if !ok {
		return properties
	}
	properties["albedo"] = vecArray(m.Albedo)
	properties["color"] = fmt.Sprintf("#%02x%02x%02x",
		int(m.Albedo.X*255), int(m.Albedo.Y*255), int(m.Albedo.Z*255))
	return properties
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["point"] = vecArray(geom.Point)
		properties["normal"] = vecArray(geom.Normal)
		return "plane", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("px"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid px coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("py"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid py coordinate")
		return
	}

	// Validate pixel coordinates
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	raytracer, err := s.createRaytracer(req, core.NopLogger{})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ray, hit, isHit := raytracer.Inspect(pixelX, pixelY)
	response := InspectResponse{
		Hit:        isHit,
		Primitive:  core.NoPrimitive,
		MaterialID: core.NoMaterial,
		Color:      vecArray(raytracer.TraceRay(ray)),
	}

	if isHit {
		sceneObj := raytracer.Scene()
		geometryType, geometryProps := s.extractGeometryInfo(sceneObj.Shapes[hit.Primitive])

		response.GeometryType = geometryType
		response.Primitive = hit.Primitive
		response.MaterialID = hit.MaterialID
		response.Point = vecArray(hit.Point)
		response.Normal = vecArray(hit.Normal)
		response.Distance = hit.T
		response.Properties = map[string]interface{}{
			"material": s.extractMaterialInfo(sceneObj, hit.MaterialID),
			"geometry": geometryProps,
			"diffuse":  raytracer.Shader().Diffuse(hit, sceneObj),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
