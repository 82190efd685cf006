package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/df07/go-cpu-raytracer/pkg/output"
	"github.com/df07/go-cpu-raytracer/pkg/renderer"
)

// Config contains everything needed to render and publish a frame
type Config struct {
	Width     int
	Height    int
	Scene     string
	Workers   int     // 0 = use CPU count
	TileSize  int     // Tile edge in pixels for parallel rendering
	Gamma     float64 // <= 0 disables gamma correction
	Scale     float64 // Output scale factor applied after rendering
	OutputDir string
	Debug     bool // Render from the debug camera

	BaseColor       string // "albedo", "fixed-hue" or "normals"
	ShadowExclusion string // "primitive" or "material"

	S3 output.S3Config
}

// Default returns the reference 800x600 configuration
func Default() Config {
	return Config{
		Width:           800,
		Height:          600,
		Scene:           "default",
		Workers:         runtime.NumCPU(),
		TileSize:        renderer.DefaultParallelConfig().TileSize,
		Gamma:           output.DefaultGamma,
		Scale:           1.0,
		OutputDir:       "output",
		BaseColor:       "albedo",
		ShadowExclusion: "primitive",
	}
}

// LoadEnv loads path into the process environment if it exists and then
// applies RT_* and S3_* variables on top of the defaults. Existing
// environment variables take precedence over the file.
func LoadEnv(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	intVar := func(key string, dst *int) {
		if value, ok := lookup(key); ok && value != "" {
			n, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if value, ok := lookup(key); ok && value != "" {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolVar := func(key string, dst *bool) {
		if value, ok := lookup(key); ok && value != "" {
			b, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	stringVar := func(key string, dst *string) {
		if value, ok := lookup(key); ok && value != "" {
			*dst = value
		}
	}

	intVar("RT_WIDTH", &c.Width)
	intVar("RT_HEIGHT", &c.Height)
	stringVar("RT_SCENE", &c.Scene)
	intVar("RT_WORKERS", &c.Workers)
	intVar("RT_TILE_SIZE", &c.TileSize)
	floatVar("RT_GAMMA", &c.Gamma)
	floatVar("RT_SCALE", &c.Scale)
	stringVar("RT_OUTPUT_DIR", &c.OutputDir)
	boolVar("RT_DEBUG", &c.Debug)
	stringVar("RT_BASE_COLOR", &c.BaseColor)
	stringVar("RT_SHADOW_EXCLUSION", &c.ShadowExclusion)

	stringVar("S3_ACCESS_KEY", &c.S3.AccessKey)
	stringVar("S3_SECRET_KEY", &c.S3.SecretKey)
	stringVar("S3_ENDPOINT", &c.S3.Endpoint)
	stringVar("S3_REGION", &c.S3.Region)
	stringVar("S3_BUCKET", &c.S3.Bucket)
	stringVar("CDN_URL", &c.S3.CDNURL)
	stringVar("S3_ACL", &c.S3.ACL)

	return errors.Join(errs...)
}

// Validate checks ranges and option names
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("resolution %dx%d must be positive", c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", c.Workers)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size %d must be positive", c.TileSize)
	}
	if !(c.Scale > 0) {
		return fmt.Errorf("scale %g must be positive", c.Scale)
	}
	if c.Scene == "" {
		return errors.New("scene is required")
	}
	if _, err := c.ShadingConfig(); err != nil {
		return err
	}
	if c.S3.Enabled() {
		if err := c.S3.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ShadingConfig translates the named shading options
func (c Config) ShadingConfig() (renderer.ShadingConfig, error) {
	shading := renderer.DefaultShadingConfig()

	switch strings.ToLower(c.BaseColor) {
	case "", "albedo":
		shading.BaseColor = renderer.BaseColorAlbedo
	case "fixed-hue", "fixed":
		shading.BaseColor = renderer.BaseColorFixedHue
	case "normals":
		shading.BaseColor = renderer.BaseColorNormals
	default:
		return shading, fmt.Errorf("unknown base color %q (want albedo, fixed-hue or normals)", c.BaseColor)
	}

	switch strings.ToLower(c.ShadowExclusion) {
	case "", "primitive":
		shading.ShadowExclusion = renderer.ExcludeShadedPrimitive
	case "material":
		shading.ShadowExclusion = renderer.ExcludeShadedMaterial
	default:
		return shading, fmt.Errorf("unknown shadow exclusion %q (want primitive or material)", c.ShadowExclusion)
	}

	return shading, nil
}

// ParallelConfig returns the tile and worker settings
func (c Config) ParallelConfig() renderer.ParallelConfig {
	return renderer.ParallelConfig{
		TileSize:   c.TileSize,
		NumWorkers: c.Workers,
	}
}
