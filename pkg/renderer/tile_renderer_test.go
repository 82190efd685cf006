package renderer

import (
	"image"
	"testing"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

func TestNewTileGrid_CoversImageOnce(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		expectedTiles int
	}{
		{"exact fit", 128, 64, 32, 8},
		{"partial edge tiles", 100, 70, 32, 12},
		{"tile larger than image", 10, 10, 64, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize)
			if len(tiles) != tt.expectedTiles {
				t.Fatalf("Expected %d tiles, got %d", tt.expectedTiles, len(tiles))
			}

			coverage := make([]int, tt.width*tt.height)
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("Expected tile ID %d, got %d", i, tile.ID)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
						coverage[y*tt.width+x]++
					}
				}
			}
			for i, count := range coverage {
				if count != 1 {
					t.Fatalf("Pixel %d covered %d times", i, count)
				}
			}
		})
	}
}

func TestTileRenderer_WritesOnlyTileBounds(t *testing.T) {
	rt := newDefaultRaytracer(t, 40, 30)
	reference := rt.RenderFrame()

	marker := core.NewVec3(-1, -1, -1)
	frame, err := NewFrameBuffer(40, 30)
	if err != nil {
		t.Fatalf("NewFrameBuffer failed: %v", err)
	}
	for i := range frame.Pixels {
		frame.Pixels[i] = marker
	}

	tile := NewTile(0, image.Rect(10, 5, 25, 20))
	stats := NewTileRenderer(rt).RenderTile(tile, frame)

	if stats.TotalPixels != 15*15 {
		t.Errorf("Expected %d pixels rendered, got %d", 15*15, stats.TotalPixels)
	}

	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			inside := image.Pt(x, y).In(tile.Bounds)
			got := frame.At(x, y)
			switch {
			case inside && got != reference.At(x, y):
				t.Fatalf("Pixel (%d,%d) inside tile: expected %v, got %v", x, y, reference.At(x, y), got)
			case !inside && got != marker:
				t.Fatalf("Pixel (%d,%d) outside tile was written", x, y)
			}
		}
	}
}

func TestTileRenderer_ClipsToImage(t *testing.T) {
	rt := newDefaultRaytracer(t, 20, 10)
	frame, err := NewFrameBuffer(20, 10)
	if err != nil {
		t.Fatalf("NewFrameBuffer failed: %v", err)
	}

	stats := NewTileRenderer(rt).RenderTile(NewTile(0, image.Rect(16, 8, 48, 40)), frame)
	if stats.TotalPixels != 4*2 {
		t.Errorf("Expected clipped tile of 8 pixels, got %d", stats.TotalPixels)
	}
}
