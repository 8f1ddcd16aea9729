package film

// Tile is a rectangular, independent portion of the image a single worker
// thread samples to completion before requesting the next tile from the
// shared queue (spec §5 scheduling model).
type Tile struct {
	X0, Y0, X1, Y1 int
}

func (t Tile) Width() int  { return t.X1 - t.X0 }
func (t Tile) Height() int { return t.Y1 - t.Y0 }

// GenerateTiles partitions a width x height image into tileSize x tileSize
// tiles (the last row/column may be smaller).
func GenerateTiles(width, height, tileSize int) []Tile {
	var tiles []Tile
	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			x1, y1 := x+tileSize, y+tileSize
			if x1 > width {
				x1 = width
			}
			if y1 > height {
				y1 = height
			}
			tiles = append(tiles, Tile{X0: x, Y0: y, X1: x1, Y1: y1})
		}
	}
	return tiles
}
