package renderer

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/scene"
)

// Raytracer is the single-threaded frame driver. It owns a copy of the camera
// and reads the scene; neither may change while a frame is in flight.
type Raytracer struct {
	scene  *scene.Scene
	camera Camera
	width  int
	height int
	shader *Shader
	logger core.Logger
}

// NewRaytracer validates the scene, camera and resolution once and creates a raytracer
func NewRaytracer(s *scene.Scene, camera *Camera, width, height int) (*Raytracer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, core.ErrInvalidResolution)
	}
	if s == nil {
		return nil, fmt.Errorf("scene is nil")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}

	rt := &Raytracer{
		scene:  s,
		width:  width,
		height: height,
		shader: NewShader(DefaultShadingConfig()),
		logger: core.NopLogger{},
	}
	if err := rt.SetCamera(camera); err != nil {
		return nil, err
	}
	return rt, nil
}

// SetCamera validates and copies the camera for subsequent frames
func (rt *Raytracer) SetCamera(camera *Camera) error {
	if camera == nil {
		return fmt.Errorf("camera is nil: %w", core.ErrInvalidCamera)
	}
	if err := camera.Validate(); err != nil {
		return err
	}
	rt.camera = *camera
	return nil
}

// Camera returns a copy of the current camera
func (rt *Raytracer) Camera() Camera {
	return rt.camera
}

// SetShadingConfig updates the shading configuration
func (rt *Raytracer) SetShadingConfig(config ShadingConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	rt.shader = NewShader(config)
	return nil
}

// SetLogger sets the logger used for frame timings
func (rt *Raytracer) SetLogger(logger core.Logger) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	rt.logger = logger
}

// Size returns the output resolution
func (rt *Raytracer) Size() (width, height int) {
	return rt.width, rt.height
}

// Scene returns the scene being rendered
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// TraceRay returns the color seen along a primary ray
func (rt *Raytracer) TraceRay(ray core.Ray) core.Vec3 {
	color, _ := rt.traceRay(ray)
	return color
}

// Inspect resolves the primary ray through pixel (x, y) without shading it
func (rt *Raytracer) Inspect(x, y int) (core.Ray, core.Hit, bool) {
	ray := rt.camera.GetRay(x, y, rt.width, rt.height)
	hit, isHit := rt.scene.Intersect(ray, rt.shader.config.Epsilon, math.Inf(1), nil)
	return ray, hit, isHit
}

// Shader returns the shader used for frames
func (rt *Raytracer) Shader() *Shader {
	return rt.shader
}

func (rt *Raytracer) traceRay(ray core.Ray) (core.Vec3, pixelResult) {
	hit, isHit := rt.scene.Intersect(ray, rt.shader.config.Epsilon, math.Inf(1), nil)
	color, info := rt.shader.shade(ray, hit, isHit, rt.scene)
	return color, pixelResult{hit: isHit, info: info}
}

type pixelResult struct {
	hit  bool
	info shadeInfo
}

// RenderFrame renders a new frame
func (rt *Raytracer) RenderFrame() *FrameBuffer {
	frame, _ := rt.RenderFrameWithStats()
	return frame
}

// RenderFrameWithStats renders a new frame and reports statistics
func (rt *Raytracer) RenderFrameWithStats() (*FrameBuffer, FrameStats) {
	frame := &FrameBuffer{
		Width:  rt.width,
		Height: rt.height,
		Pixels: make([]core.Vec3, rt.width*rt.height),
	}
	stats := rt.RenderFrameInto(frame)
	return frame, stats
}

// RenderFrameInto overwrites every pixel of frame, reallocating it if its size differs
func (rt *Raytracer) RenderFrameInto(frame *FrameBuffer) FrameStats {
	rt.fitFrame(frame)

	start := time.Now()
	stats := rt.RenderBounds(image.Rect(0, 0, rt.width, rt.height), frame)
	stats.Duration = time.Since(start)

	rt.logger.Printf("Frame %dx%d rendered in %v (%d hits, %d shadowed)\n",
		rt.width, rt.height, stats.Duration, stats.PrimaryHits, stats.ShadowedPixels)
	return stats
}

// RenderBounds renders pixels within bounds into frame in row-major order.
// Disjoint bounds may be rendered concurrently into the same frame.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, frame *FrameBuffer) FrameStats {
	bounds = bounds.Intersect(image.Rect(0, 0, rt.width, rt.height))
	stats := FrameStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := rt.camera.GetRay(x, y, rt.width, rt.height)
			color, result := rt.traceRay(ray)
			frame.Pixels[y*rt.width+x] = color

			if result.hit {
				stats.PrimaryHits++
			}
			if result.info.shadowRay {
				stats.ShadowRays++
			}
			if result.info.shadowed {
				stats.ShadowedPixels++
			}
		}
	}

	return stats
}

// fitFrame resizes frame to the raytracer resolution when needed
func (rt *Raytracer) fitFrame(frame *FrameBuffer) {
	if frame.Width == rt.width && frame.Height == rt.height && len(frame.Pixels) == rt.width*rt.height {
		return
	}
	frame.Width = rt.width
	frame.Height = rt.height
	frame.Pixels = make([]core.Vec3, rt.width*rt.height)
}
