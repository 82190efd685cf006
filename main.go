package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-cpu-raytracer/pkg/config"
	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/loaders"
	"github.com/df07/go-cpu-raytracer/pkg/output"
	"github.com/df07/go-cpu-raytracer/pkg/renderer"
	"github.com/df07/go-cpu-raytracer/pkg/scene"
)

// cliOptions holds flags that are not part of the render configuration
type cliOptions struct {
	help       bool
	listScenes bool
	upload     bool
}

func main() {
	cfg, opts, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	// Show help if requested
	if opts.help {
		printHelp()
		return
	}
	if opts.listScenes {
		printScenes(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, opts, renderer.NewDefaultLogger()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// flagValues holds the parsed command line flags
type flagValues struct {
	envFile   string
	sceneType string
	width     int
	height    int
	workers   int
	tileSize  int
	gamma     float64
	scale     float64
	outputDir string
	debug     bool
	baseColor string
	shadow    string
	opts      cliOptions
}

// registerFlags defines every command line flag on fs with defaults from config.Default
func registerFlags(fs *flag.FlagSet) *flagValues {
	defaults := config.Default()
	v := &flagValues{}

	fs.StringVar(&v.envFile, "env", ".env", "Environment file with RT_* and S3_* settings")
	fs.StringVar(&v.sceneType, "scene", defaults.Scene, "Scene name (see -list) or scenes/<file>.pbrt")
	fs.IntVar(&v.width, "width", defaults.Width, "Image width in pixels")
	fs.IntVar(&v.height, "height", defaults.Height, "Image height in pixels")
	fs.IntVar(&v.workers, "workers", defaults.Workers, "Number of render workers (0 = CPU count)")
	fs.IntVar(&v.tileSize, "tile", defaults.TileSize, "Tile size in pixels")
	fs.Float64Var(&v.gamma, "gamma", defaults.Gamma, "Output gamma (0 disables correction)")
	fs.Float64Var(&v.scale, "scale", defaults.Scale, "Output scale factor")
	fs.StringVar(&v.outputDir, "output", defaults.OutputDir, "Output directory")
	fs.BoolVar(&v.debug, "debug", false, "Render from the debug camera")
	fs.StringVar(&v.baseColor, "color", defaults.BaseColor, "Base color: albedo, fixed-hue or normals")
	fs.StringVar(&v.shadow, "shadow-exclusion", defaults.ShadowExclusion, "Shadow ray exclusion: primitive or material")
	fs.BoolVar(&v.opts.upload, "upload", false, "Upload the render to the configured S3 bucket")
	fs.BoolVar(&v.opts.listScenes, "list", false, "List available scenes")
	fs.BoolVar(&v.opts.help, "help", false, "Show help information")

	return v
}

// loadConfig reads .env and the environment, then applies explicitly set flags on top
func loadConfig(args []string, errOut io.Writer) (config.Config, cliOptions, error) {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(errOut)
	v := registerFlags(fs)

	if err := fs.Parse(args); err != nil {
		return config.Config{}, v.opts, err
	}
	if v.opts.help || v.opts.listScenes {
		return config.Default(), v.opts, nil
	}

	cfg, err := config.LoadEnv(v.envFile)
	if err != nil {
		return config.Config{}, v.opts, err
	}

	// Flags override the environment only when given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = v.sceneType
		case "width":
			cfg.Width = v.width
		case "height":
			cfg.Height = v.height
		case "workers":
			cfg.Workers = v.workers
		case "tile":
			cfg.TileSize = v.tileSize
		case "gamma":
			cfg.Gamma = v.gamma
		case "scale":
			cfg.Scale = v.scale
		case "output":
			cfg.OutputDir = v.outputDir
		case "debug":
			cfg.Debug = v.debug
		case "color":
			cfg.BaseColor = v.baseColor
		case "shadow-exclusion":
			cfg.ShadowExclusion = v.shadow
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, v.opts, err
	}
	return cfg, v.opts, nil
}

func printHelp() {
	fmt.Println("CPU Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	registerFlags(fs)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	printScenes(os.Stdout)
	fmt.Println()
	fmt.Println("  scenes/<file>.pbrt - PBRT subset: point light, diffuse materials, spheres and planes")
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

func printScenes(w io.Writer) {
	for _, info := range scene.ListScenes() {
		fmt.Fprintf(w, "  %-8s - %s (%d primitives)\n", info.ID, info.Description, info.Primitives)
	}
}

// createScene builds a registered scene, or loads a .pbrt file, together with
// the camera it is meant to be viewed from
func createScene(sceneType string) (*scene.Scene, *renderer.Camera, error) {
	var s *scene.Scene
	var pose scene.CameraPose

	if strings.HasSuffix(strings.ToLower(sceneType), ".pbrt") {
		var err error
		s, pose, err = loaders.LoadScene(sceneType)
		if err != nil {
			return nil, nil, err
		}
	} else {
		info, err := scene.Lookup(sceneType)
		if err != nil {
			return nil, nil, err
		}
		s, err = info.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build scene %s: %w", sceneType, err)
		}
		pose = info.Camera
	}

	camera := renderer.NewCameraFromAngles(pose.Position, pose.Yaw, pose.Pitch, pose.Fov)
	return s, camera, nil
}

// outputName returns the directory name used for a scene's renders
func outputName(sceneType string) string {
	if strings.HasSuffix(strings.ToLower(sceneType), ".pbrt") {
		return strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	}
	return sceneType
}

// renderImage renders one frame in parallel and converts it to an 8-bit image
func renderImage(ctx context.Context, cfg config.Config, logger core.Logger) (image.Image, renderer.FrameStats, error) {
	s, camera, err := createScene(cfg.Scene)
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}
	if cfg.Debug {
		camera = renderer.DebugCamera(camera)
	}

	rt, err := renderer.NewRaytracer(s, camera, cfg.Width, cfg.Height)
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}
	shading, err := cfg.ShadingConfig()
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}
	if err := rt.SetShadingConfig(shading); err != nil {
		return nil, renderer.FrameStats{}, err
	}

	pr := renderer.NewParallelRenderer(rt, cfg.ParallelConfig(), logger)
	defer pr.Close()

	frame, stats, err := pr.Render(ctx)
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}

	img, err := output.Resize(output.ToRGBA(frame, cfg.Gamma), cfg.Scale)
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}
	return img, stats, nil
}

// saveImage writes data to <dir>/<scene>/render_<timestamp>.png
func saveImage(dir, sceneType string, data []byte, now time.Time) (string, error) {
	outputDir := filepath.Join(dir, sceneType)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	// Create timestamped filename
	timestamp := now.Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("error saving PNG: %w", err)
	}
	return filename, nil
}

func run(ctx context.Context, cfg config.Config, opts cliOptions, logger core.Logger) error {
	fmt.Println("Starting CPU Raytracer...")
	fmt.Printf("Using %s scene at %dx%d...\n", cfg.Scene, cfg.Width, cfg.Height)

	startTime := time.Now()
	img, stats, err := renderImage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	renderTime := time.Since(startTime)

	fmt.Printf("Render completed in %v\n", renderTime)
	fmt.Printf("Primary hits: %d/%d (%.1f%%), shadowed: %d\n",
		stats.PrimaryHits, stats.TotalPixels, 100*stats.HitRatio(), stats.ShadowedPixels)

	data, err := output.EncodePNG(img)
	if err != nil {
		return err
	}

	now := time.Now()
	filename, err := saveImage(cfg.OutputDir, outputName(cfg.Scene), data, now)
	if err != nil {
		return err
	}
	fmt.Printf("Render saved as %s\n", filename)

	if !opts.upload {
		return nil
	}
	if !cfg.S3.Enabled() {
		return fmt.Errorf("upload requested but S3_BUCKET is not set")
	}

	publisher, err := output.NewS3Publisher(cfg.S3, logger)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s/render_%s.png", outputName(cfg.Scene), now.Format("20060102_150405"))
	url, err := publisher.Publish(ctx, key, data)
	if err != nil {
		return err
	}
	fmt.Printf("Render uploaded to %s\n", url)
	return nil
}
