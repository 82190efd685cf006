package renderer

import (
	"image"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			// Calculate tile bounds
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			bounds := image.Rect(x0, y0, x1, y1)
			tiles = append(tiles, NewTile(tileID, bounds))
			tileID++
		}
	}

	return tiles
}

// TileRenderer renders individual tiles of a frame
type TileRenderer struct {
	raytracer *Raytracer
}

// NewTileRenderer creates a new tile renderer for the given raytracer
func NewTileRenderer(raytracer *Raytracer) *TileRenderer {
	return &TileRenderer{raytracer: raytracer}
}

// RenderTile renders the pixels of tile into frame. Tiles never overlap,
// so different tiles may be rendered into the same frame concurrently.
func (tr *TileRenderer) RenderTile(tile *Tile, frame *FrameBuffer) FrameStats {
	return tr.raytracer.RenderBounds(tile.Bounds, frame)
}
