package renderer

import (
	"fmt"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// FrameBuffer is a dense row-major buffer of unclamped linear colors.
// Pixel (x, y) is stored at index y*Width + x; row 0 is the top of the image.
type FrameBuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrameBuffer allocates a width*height buffer
func NewFrameBuffer(width, height int) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, core.ErrInvalidResolution)
	}
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}, nil
}

// Index returns the buffer index of pixel (x, y)
func (f *FrameBuffer) Index(x, y int) int {
	return y*f.Width + x
}

// At returns the color of pixel (x, y)
func (f *FrameBuffer) At(x, y int) core.Vec3 {
	return f.Pixels[f.Index(x, y)]
}

// Set stores the color of pixel (x, y)
func (f *FrameBuffer) Set(x, y int, c core.Vec3) {
	f.Pixels[f.Index(x, y)] = c
}
