package output

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/nfnt/resize"

	"github.com/df07/go-cpu-raytracer/pkg/core"
	"github.com/df07/go-cpu-raytracer/pkg/renderer"
)

// DefaultGamma matches the display gamma used for saved renders
const DefaultGamma = 2.0

// ToRGBA converts a linear frame buffer into an 8-bit image.
// A gamma <= 0 skips gamma correction and only clamps.
func ToRGBA(frame *renderer.FrameBuffer, gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(frame.At(x, y), gamma))
		}
	}
	return img
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	if gamma > 0 {
		colorVec = colorVec.GammaCorrect(gamma)
	}

	// Clamp to valid color range
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// Resize scales img by factor with bilinear filtering. A factor of 1 returns img unchanged.
func Resize(img image.Image, factor float64) (image.Image, error) {
	if !(factor > 0) {
		return nil, fmt.Errorf("scale factor %g must be positive", factor)
	}
	if factor == 1 {
		return img, nil
	}

	bounds := img.Bounds()
	width := uint(max(1, int(float64(bounds.Dx())*factor+0.5)))
	height := uint(max(1, int(float64(bounds.Dy())*factor+0.5)))
	return resize.Resize(width, height, img, resize.Bilinear), nil
}

// EncodePNG encodes img as PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
