package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-cpu-raytracer/pkg/config"
	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/renderer"
	"github.com/df07/go-cpu-raytracer/pkg/scene"
)

// Request limits
const (
	DefaultTileSize = 64
	MaxDimension    = 2000
	MaxFrames       = 360
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	staticDir string
}

// NewServer creates a new web server serving static files from "static/"
func NewServer(port int) *Server {
	return NewServerWithStatic(port, "static/")
}

// NewServerWithStatic creates a web server serving static files from staticDir
func NewServerWithStatic(port int, staticDir string) *Server {
	return &Server{port: port, staticDir: staticDir}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string    `json:"scene"`           // Scene id (e.g., "default")
	Width           int       `json:"width"`           // Image width
	Height          int       `json:"height"`          // Image height
	Position        core.Vec3 `json:"position"`        // Camera position
	Yaw             float64   `json:"yaw"`             // Camera yaw in degrees
	Pitch           float64   `json:"pitch"`           // Camera pitch in degrees
	Fov             float64   `json:"fov"`             // Vertical field of view in degrees
	Debug           bool      `json:"debug"`           // Render from the debug camera
	BaseColor       string    `json:"baseColor"`       // "albedo", "fixed-hue" or "normals"
	ShadowExclusion string    `json:"shadowExclusion"` // "primitive" or "material"
	Gamma           float64   `json:"gamma"`           // Output gamma
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	PrimaryHits    int     `json:"primaryHits"`
	ShadowRays     int     `json:"shadowRays"`
	ShadowedPixels int     `json:"shadowedPixels"`
	HitRatio       float64 `json:"hitRatio"`
	DurationMs     int64   `json:"durationMs"`
}

func newStats(fs renderer.FrameStats) Stats {
	return Stats{
		TotalPixels:    fs.TotalPixels,
		PrimaryHits:    fs.PrimaryHits,
		ShadowRays:     fs.ShadowRays,
		ShadowedPixels: fs.ShadowedPixels,
		HitRatio:       fs.HitRatio(),
		DurationMs:     fs.Duration.Milliseconds(),
	}
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/health", s.handleHealth)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(scene.ListScenes())
}

// writeJSONError writes an error response as JSON
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// parseRenderRequest parses request parameters. Camera parameters default to the scene's pose.
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	info, err := scene.Lookup(req.Scene)
	if err != nil {
		return nil, err
	}
	pose := info.Camera

	if req.Width, err = parseIntParam(query, "width", 800, 1, MaxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 600, 1, MaxDimension); err != nil {
		return nil, err
	}
	if req.Position.X, err = parseFloatParam(query, "x", pose.Position.X, -1e6, 1e6); err != nil {
		return nil, err
	}
	if req.Position.Y, err = parseFloatParam(query, "y", pose.Position.Y, -1e6, 1e6); err != nil {
		return nil, err
	}
	if req.Position.Z, err = parseFloatParam(query, "z", pose.Position.Z, -1e6, 1e6); err != nil {
		return nil, err
	}
	if req.Yaw, err = parseFloatParam(query, "yaw", pose.Yaw, -360, 360); err != nil {
		return nil, err
	}
	if req.Pitch, err = parseFloatParam(query, "pitch", pose.Pitch, -89, 89); err != nil {
		return nil, err
	}
	if req.Fov, err = parseFloatParam(query, "fov", pose.Fov, 1, 179); err != nil {
		return nil, err
	}
	if req.Gamma, err = parseFloatParam(query, "gamma", 2.0, 0, 5); err != nil {
		return nil, err
	}
	if req.Debug, err = parseBoolParam(query, "debug", false); err != nil {
		return nil, err
	}
	req.BaseColor = query.Get("color")
	req.ShadowExclusion = query.Get("shadowExclusion")

	// Performance warning
	if req.Width*req.Height > 1920*1080 {
		log.Printf("Render warning: Large image may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// camera builds the requested camera
func (req *RenderRequest) camera() *renderer.Camera {
	camera := renderer.NewCameraFromAngles(req.Position, req.Yaw, req.Pitch, req.Fov)
	if req.Debug {
		camera = renderer.DebugCamera(camera)
	}
	return camera
}

// shadingConfig translates the named shading options
func (req *RenderRequest) shadingConfig() (renderer.ShadingConfig, error) {
	options := config.Config{BaseColor: req.BaseColor, ShadowExclusion: req.ShadowExclusion}
	return options.ShadingConfig()
}

// createRaytracer builds the scene and a raytracer for the request
func (s *Server) createRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	info, err := scene.Lookup(req.Scene)
	if err != nil {
		return nil, err
	}
	sceneObj, err := info.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scene %s: %w", req.Scene, err)
	}

	raytracer, err := renderer.NewRaytracer(sceneObj, req.camera(), req.Width, req.Height)
	if err != nil {
		return nil, err
	}

	shading, err := req.shadingConfig()
	if err != nil {
		return nil, err
	}
	if err := raytracer.SetShadingConfig(shading); err != nil {
		return nil, err
	}
	raytracer.SetLogger(logger)
	return raytracer, nil
}
