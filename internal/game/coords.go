package game

import (
	"fmt"
	"math"
)

const (
	// TileHeight is the fixed vertical offset of every canonical tile position.
	TileHeight = 0.15

	columnSpacing = 0.5  // xOffset as a fraction of hex size
	rowSpacing    = 1.73 // zOffset as a fraction of hex size
)

// HexCoord is an offset coordinate in the staggered-column grid.
type HexCoord struct {
	X, Y int
}

func (c HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func (c HexCoord) oddColumn() bool {
	return c.X%2 != 0
}

// Vec3 is a continuous world position. Y is vertical; the grid lies in X/Z.
type Vec3 struct {
	X, Y, Z float64
}

// Dist returns the Euclidean distance between two positions.
func (v Vec3) Dist(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Layout holds the fixed offsets derived from hex size plus the grid bounds.
// Both conversion directions are pure functions of a Layout.
type Layout struct {
	Width   int
	Height  int
	HexSize float64
	XOffset float64
	ZOffset float64
}

// NewLayout derives column and row spacing from hexSize.
func NewLayout(width, height int, hexSize float64) Layout {
	return Layout{
		Width:   width,
		Height:  height,
		HexSize: hexSize,
		XOffset: hexSize * columnSpacing,
		ZOffset: hexSize * rowSpacing,
	}
}

// InBounds reports whether c lies within [0,Width)×[0,Height).
func (l Layout) InBounds(c HexCoord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < l.Width && c.Y < l.Height
}

// rowOffset is the extra Z shift applied to odd columns.
func (l Layout) rowOffset(x int) float64 {
	if x%2 != 0 {
		return l.ZOffset / 2
	}
	return 0
}

// HexToWorld returns the canonical world position of c.
func (l Layout) HexToWorld(c HexCoord) Vec3 {
	return Vec3{
		X: float64(c.X) * l.XOffset,
		Y: TileHeight,
		Z: float64(c.Y)*l.ZOffset + l.rowOffset(c.X),
	}
}

// WorldToHex maps a world position to the nearest grid coordinate.
//
// Columns are staggered, so a position near a column boundary can round to
// the wrong column. A window of five columns around the estimate is searched
// and the candidate whose canonical position is closest wins; on exact ties
// the first candidate scanned is kept.
func (l Layout) WorldToHex(p Vec3) HexCoord {
	est := int(math.Round(p.X / l.XOffset))
	lo := clampInt(est-2, 0, l.Width-1)
	hi := clampInt(est+2, 0, l.Width-1)

	best := HexCoord{X: lo, Y: 0}
	bestDist := math.Inf(1)
	for x := lo; x <= hi; x++ {
		z := int(math.Round((p.Z - l.rowOffset(x)) / l.ZOffset))
		cand := HexCoord{X: x, Y: clampInt(z, 0, l.Height-1)}
		d := l.planarDist(p, l.HexToWorld(cand))
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}

// planarDist ignores the vertical axis so units standing on a tile resolve
// to the same hex regardless of their model height.
func (l Layout) planarDist(a, b Vec3) float64 {
	dx, dz := a.X-b.X, a.Z-b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// WorldDistance is the planar distance between two canonical tile positions.
func (l Layout) WorldDistance(a, b HexCoord) float64 {
	return l.planarDist(l.HexToWorld(a), l.HexToWorld(b))
}

// cube converts an offset coordinate to cube form.
func cube(c HexCoord) (cx, cy, cz int) {
	cx = c.X
	if c.oddColumn() {
		cz = c.Y - (c.X-1)/2
	} else {
		cz = c.Y
	}
	cy = -cx - cz
	return cx, cy, cz
}

// CubeDistance is the hex distance used for target selection.
func CubeDistance(a, b HexCoord) int {
	ax, ay, az := cube(a)
	bx, by, bz := cube(b)
	return (absInt(ax-bx) + absInt(ay-by) + absInt(az-bz)) / 2
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
