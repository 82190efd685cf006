package output

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/renderer"
)

func TestToRGBA(t *testing.T) {
	frame, err := renderer.NewFrameBuffer(2, 2)
	if err != nil {
		t.Fatalf("NewFrameBuffer failed: %v", err)
	}
	frame.Set(0, 0, core.NewVec3(1, 1, 1))
	frame.Set(1, 0, core.NewVec3(0.25, 0, 0))
	frame.Set(0, 1, core.NewVec3(-1, 2, 0))
	frame.Set(1, 1, core.NewVec3(0, 0, 0))

	tests := []struct {
		name     string
		gamma    float64
		x, y     int
		expected color.RGBA
	}{
		{"white", DefaultGamma, 0, 0, color.RGBA{255, 255, 255, 255}},
		{"gamma corrected quarter", DefaultGamma, 1, 0, color.RGBA{127, 0, 0, 255}},
		{"out of range clamped", DefaultGamma, 0, 1, color.RGBA{0, 255, 0, 255}},
		{"black", DefaultGamma, 1, 1, color.RGBA{0, 0, 0, 255}},
		{"linear quarter", 0, 1, 0, color.RGBA{63, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := ToRGBA(frame, tt.gamma)
			if got := img.RGBAAt(tt.x, tt.y); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestResize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))

	tests := []struct {
		name           string
		factor         float64
		expectedWidth  int
		expectedHeight int
	}{
		{"unchanged", 1, 80, 60},
		{"half", 0.5, 40, 30},
		{"double", 2, 160, 120},
		{"tiny", 0.001, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resized, err := Resize(img, tt.factor)
			if err != nil {
				t.Fatalf("Resize failed: %v", err)
			}
			bounds := resized.Bounds()
			if bounds.Dx() != tt.expectedWidth || bounds.Dy() != tt.expectedHeight {
				t.Errorf("Expected %dx%d, got %dx%d", tt.expectedWidth, tt.expectedHeight, bounds.Dx(), bounds.Dy())
			}
		})
	}

	if _, err := Resize(img, 0); err == nil {
		t.Error("Expected error for zero scale factor")
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{10, 20, 30, 255})

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Output is not a valid PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("Expected pixel (10,20,30), got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
