package game

// StandardMap lays out one tile per coordinate at its canonical position.
// Columns left of the midline belong to the left zone; the castle sits in
// the top-right corner.
func StandardMap(width, height int, hexSize float64) MapSpec {
	layout := NewLayout(width, height, hexSize)
	spec := MapSpec{Width: width, Height: height, HexSize: hexSize}
	for x := 0; x < width; x++ {
		zone := ZoneLeft
		if x >= width/2 {
			zone = ZoneRight
		}
		for y := 0; y < height; y++ {
			c := HexCoord{X: x, Y: y}
			spec.Tiles = append(spec.Tiles, TileSpec{
				Position: layout.HexToWorld(c),
				Castle:   x == width-1 && y == height-1,
				Zone:     zone,
			})
		}
	}
	return spec
}

// WithoutTiles returns a copy of spec with the tiles at coords removed.
func WithoutTiles(spec MapSpec, coords ...HexCoord) MapSpec {
	drop := make(map[HexCoord]bool, len(coords))
	for _, c := range coords {
		drop[c] = true
	}
	layout := NewLayout(spec.Width, spec.Height, spec.HexSize)
	out := spec
	out.Tiles = make([]TileSpec, 0, len(spec.Tiles))
	for _, t := range spec.Tiles {
		if drop[layout.WorldToHex(t.Position)] {
			continue
		}
		out.Tiles = append(out.Tiles, t)
	}
	return out
}

// WithCastles returns a copy of spec with the castle flag set on exactly the
// given coordinates.
func WithCastles(spec MapSpec, coords ...HexCoord) MapSpec {
	set := make(map[HexCoord]bool, len(coords))
	for _, c := range coords {
		set[c] = true
	}
	layout := NewLayout(spec.Width, spec.Height, spec.HexSize)
	out := spec
	out.Tiles = make([]TileSpec, len(spec.Tiles))
	for i, t := range spec.Tiles {
		t.Castle = set[layout.WorldToHex(t.Position)]
		out.Tiles[i] = t
	}
	return out
}
