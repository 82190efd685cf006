package renderer

import (
	"fmt"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/scene"
)

// BaseColorMode selects the surface color that the diffuse term scales
type BaseColorMode int

const (
	// BaseColorAlbedo uses the material albedo of the hit primitive
	BaseColorAlbedo BaseColorMode = iota
	// BaseColorFixedHue ignores materials and uses ShadingConfig.FixedHue
	BaseColorFixedHue
	// BaseColorNormals maps the surface normal to a color for debugging
	BaseColorNormals
)

// ShadowExclusion selects which primitives a shadow ray ignores
type ShadowExclusion int

const (
	// ExcludeShadedPrimitive skips only the primitive being shaded
	ExcludeShadedPrimitive ShadowExclusion = iota
	// ExcludeShadedMaterial skips every primitive sharing the shaded material.
	// Primitives sharing a material can then never shadow each other.
	ExcludeShadedMaterial
)

// ShadingConfig contains shading configuration
type ShadingConfig struct {
	Epsilon           float64 // Minimum t for primary and shadow rays
	ShadowAttenuation float64 // Diffuse multiplier for occluded points
	BaseColor         BaseColorMode
	FixedHue          core.Vec3
	ShadowExclusion   ShadowExclusion
}

// DefaultShadingConfig returns sensible default values
func DefaultShadingConfig() ShadingConfig {
	return ShadingConfig{
		Epsilon:           0.001,
		ShadowAttenuation: 0.2,
		BaseColor:         BaseColorAlbedo,
		FixedHue:          core.NewVec3(0.0, 0.0, 0.8),
		ShadowExclusion:   ExcludeShadedPrimitive,
	}
}

// Validate checks the shading configuration
func (c ShadingConfig) Validate() error {
	if !(c.Epsilon >= 0) {
		return fmt.Errorf("epsilon %g must be non-negative", c.Epsilon)
	}
	if !(c.ShadowAttenuation >= 0 && c.ShadowAttenuation <= 1) {
		return fmt.Errorf("shadow attenuation %g: %w", c.ShadowAttenuation, core.ErrInvalidAttenuation)
	}
	switch c.BaseColor {
	case BaseColorAlbedo, BaseColorFixedHue, BaseColorNormals:
	default:
		return fmt.Errorf("unknown base color mode %d", c.BaseColor)
	}
	switch c.ShadowExclusion {
	case ExcludeShadedPrimitive, ExcludeShadedMaterial:
	default:
		return fmt.Errorf("unknown shadow exclusion %d", c.ShadowExclusion)
	}
	return nil
}

// Shader computes pixel colors from hits with a single point light and hard shadows
type Shader struct {
	config ShadingConfig
}

// shadeInfo reports what shading did, for frame statistics
type shadeInfo struct {
	shadowRay bool
	shadowed  bool
}

// NewShader creates a shader
func NewShader(config ShadingConfig) *Shader {
	return &Shader{config: config}
}

// Config returns the shading configuration
func (sh *Shader) Config() ShadingConfig {
	return sh.config
}

// Shade returns the color for a primary ray. isHit false means the ray missed.
func (sh *Shader) Shade(ray core.Ray, hit core.Hit, isHit bool, s *scene.Scene) core.Vec3 {
	color, _ := sh.shade(ray, hit, isHit, s)
	return color
}

// Background returns the sky gradient color for a ray that hit nothing.
// t = 0.5*(dir.y+1) blends from the bottom color (looking down) to the top color (looking up).
func (sh *Shader) Background(ray core.Ray, s *scene.Scene) core.Vec3 {
	topColor, bottomColor := s.GetBackgroundColors()
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return bottomColor.Lerp(topColor, t)
}

// Diffuse returns the Lambertian term toward the light, attenuated when occluded
func (sh *Shader) Diffuse(hit core.Hit, s *scene.Scene) float64 {
	diffuse, _ := sh.diffuse(hit, s)
	return diffuse
}

func (sh *Shader) shade(ray core.Ray, hit core.Hit, isHit bool, s *scene.Scene) (core.Vec3, shadeInfo) {
	if !isHit {
		return sh.Background(ray, s), shadeInfo{}
	}

	diffuse, info := sh.diffuse(hit, s)
	return sh.baseColor(hit, s).Multiply(diffuse), info
}

func (sh *Shader) diffuse(hit core.Hit, s *scene.Scene) (float64, shadeInfo) {
	toLight := s.Light.Subtract(hit.Point)
	lightDir := toLight.Normalize()

	diffuse := max(hit.Normal.Dot(lightDir), 0)
	if diffuse == 0 {
		// Nothing to occlude
		return 0, shadeInfo{}
	}

	shadowRay := core.NewRay(hit.Point, lightDir)
	if s.Occluded(shadowRay, sh.config.Epsilon, toLight.Length(), sh.shadowExclude(hit)) {
		return diffuse * sh.config.ShadowAttenuation, shadeInfo{shadowRay: true, shadowed: true}
	}
	return diffuse, shadeInfo{shadowRay: true}
}

func (sh *Shader) shadowExclude(hit core.Hit) scene.ExcludeFunc {
	switch sh.config.ShadowExclusion {
	case ExcludeShadedMaterial:
		return scene.ExcludeMaterial(hit.MaterialID)
	default:
		if hit.Primitive == core.NoPrimitive {
			return nil
		}
		return scene.ExcludePrimitive(hit.Primitive)
	}
}

func (sh *Shader) baseColor(hit core.Hit, s *scene.Scene) core.Vec3 {
	switch sh.config.BaseColor {
	case BaseColorFixedHue:
		return sh.config.FixedHue
	case BaseColorNormals:
		return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
	default:
		if m, ok := s.Material(hit.MaterialID); ok {
			return m.Albedo
		}
		return sh.config.FixedHue
	}
}
