package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-cpu-raytracer/pkg/renderer"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("Expected 800x600, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Scene != "default" {
		t.Errorf("Expected default scene, got %q", cfg.Scene)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RT_WIDTH":            "320",
		"RT_HEIGHT":           "240",
		"RT_SCENE":            "shadow",
		"RT_GAMMA":            "2.2",
		"RT_DEBUG":            "true",
		"RT_SHADOW_EXCLUSION": "material",
		"S3_BUCKET":           "renders",
		"S3_REGION":           "eu-west-1",
		"RT_OUTPUT_DIR":       "",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv failed: %v", err)
	}

	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("Expected 320x240, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Scene != "shadow" || cfg.Gamma != 2.2 || !cfg.Debug {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("Empty variable should keep default output dir, got %q", cfg.OutputDir)
	}
	if cfg.S3.Bucket != "renders" || cfg.S3.Region != "eu-west-1" {
		t.Errorf("Unexpected S3 config %+v", cfg.S3)
	}

	shading, err := cfg.ShadingConfig()
	if err != nil {
		t.Fatalf("ShadingConfig failed: %v", err)
	}
	if shading.ShadowExclusion != renderer.ExcludeShadedMaterial {
		t.Errorf("Expected material shadow exclusion, got %v", shading.ShadowExclusion)
	}
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	lookup := func(key string) (string, bool) {
		switch key {
		case "RT_WIDTH":
			return "wide", true
		case "RT_SCALE":
			return "big", true
		}
		return "", false
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err == nil {
		t.Error("Expected error for invalid numbers")
	}
}

func TestLoadEnv_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "RT_WIDTH=64\nRT_HEIGHT=48\nRT_BASE_COLOR=normals\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	for _, key := range []string{"RT_WIDTH", "RT_HEIGHT", "RT_BASE_COLOR"} {
		if _, ok := os.LookupEnv(key); ok {
			t.Skipf("%s already set in the environment", key)
		}
	}
	t.Cleanup(func() {
		os.Unsetenv("RT_WIDTH")
		os.Unsetenv("RT_HEIGHT")
		os.Unsetenv("RT_BASE_COLOR")
	})

	cfg, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 || cfg.BaseColor != "normals" {
		t.Errorf("Expected values from env file, got %+v", cfg)
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	if _, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing env file should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"zero scale", func(c *Config) { c.Scale = 0 }},
		{"empty scene", func(c *Config) { c.Scene = "" }},
		{"unknown base color", func(c *Config) { c.BaseColor = "rainbow" }},
		{"unknown shadow exclusion", func(c *Config) { c.ShadowExclusion = "none" }},
		{"bucket without region", func(c *Config) { c.S3.Bucket = "renders" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
