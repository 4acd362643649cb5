package game

import (
	"fmt"
	"sort"
)

// Team identifies one of the two sides.
type Team int

const (
	TeamLeft  Team = iota // owner 0
	TeamRight             // owner 1
)

func (t Team) String() string {
	switch t {
	case TeamLeft:
		return "left"
	case TeamRight:
		return "right"
	default:
		return "unknown"
	}
}

// Short is the one-letter prefix used in unit labels.
func (t Team) Short() string {
	if t == TeamRight {
		return "R"
	}
	return "L"
}

// Enemy returns the opposing team.
func (t Team) Enemy() Team {
	if t == TeamLeft {
		return TeamRight
	}
	return TeamLeft
}

// ParseTeam accepts "left"/"right" and the numeric owners "0"/"1".
func ParseTeam(s string) (Team, error) {
	switch s {
	case "left", "0":
		return TeamLeft, nil
	case "right", "1":
		return TeamRight, nil
	default:
		return 0, fmt.Errorf("unknown team %q", s)
	}
}

// Zone is the half of the map associated with a team.
type Zone int

const (
	ZoneLeft Zone = iota
	ZoneRight
)

func (z Zone) String() string {
	if z == ZoneRight {
		return "right"
	}
	return "left"
}

// Zone returns the home zone of t.
func (t Team) Zone() Zone {
	if t == TeamRight {
		return ZoneRight
	}
	return ZoneLeft
}

// TileSpec is one entry of the external tile registry.
type TileSpec struct {
	Position Vec3
	Castle   bool
	Zone     Zone
}

// Tile is one grid cell. Occupied mirrors live unit positions and is kept
// current by the battle for collaborators that read the grid.
type Tile struct {
	Coord    HexCoord
	Castle   bool
	Zone     Zone
	Occupied bool

	source Vec3
}

// MapSpec describes the grid dimensions and the tile registry.
type MapSpec struct {
	Width   int
	Height  int
	HexSize float64
	Tiles   []TileSpec
}

// MapSource supplies the tile registry when a battle starts.
type MapSource interface {
	LoadMap() (MapSpec, error)
}

// LoadMap lets a MapSpec act as its own source.
func (m MapSpec) LoadMap() (MapSpec, error) {
	return m, nil
}

func (m MapSpec) validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMap, m.Width, m.Height)
	}
	if m.HexSize <= 0 {
		return fmt.Errorf("%w: hex size %.3f", ErrInvalidMap, m.HexSize)
	}
	if len(m.Tiles) == 0 {
		return fmt.Errorf("%w: no tiles", ErrInvalidMap)
	}
	return nil
}

// Grid is the set of tiles keyed by coordinate plus the adjacency rules
// over them. It is built once and never resized.
type Grid struct {
	layout        Layout
	tiles         map[HexCoord]*Tile
	neighborLimit float64
	longestEdge   float64
}

// BuildGrid converts the tile registry into a Grid. Registry entries that
// resolve to the same coordinate are deduplicated by keeping the entry whose
// position is nearest the coordinate's canonical position.
// neighborLimit is a multiple of hex size; see Grid.Neighbors.
func BuildGrid(spec MapSpec, neighborLimit float64) (*Grid, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	layout := NewLayout(spec.Width, spec.Height, spec.HexSize)
	g := &Grid{
		layout:        layout,
		tiles:         make(map[HexCoord]*Tile, len(spec.Tiles)),
		neighborLimit: neighborLimit * spec.HexSize,
	}
	for _, ts := range spec.Tiles {
		c := layout.WorldToHex(ts.Position)
		canon := layout.HexToWorld(c)
		if prev, ok := g.tiles[c]; ok {
			if layout.planarDist(ts.Position, canon) >= layout.planarDist(prev.source, canon) {
				continue
			}
		}
		g.tiles[c] = &Tile{Coord: c, Castle: ts.Castle, Zone: ts.Zone, source: ts.Position}
	}
	for _, e := range g.Edges() {
		if d := layout.WorldDistance(e[0], e[1]); d > g.longestEdge {
			g.longestEdge = d
		}
	}
	return g, nil
}

// Layout returns the coordinate layout of the grid.
func (g *Grid) Layout() Layout { return g.layout }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.layout.Width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.layout.Height }

// Tile returns the tile at c.
func (g *Grid) Tile(c HexCoord) (*Tile, bool) {
	t, ok := g.tiles[c]
	return t, ok
}

// Len returns the number of tiles.
func (g *Grid) Len() int { return len(g.tiles) }

// Coords returns every tile coordinate ordered by column then row.
func (g *Grid) Coords() []HexCoord {
	out := make([]HexCoord, 0, len(g.tiles))
	for c := range g.tiles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Castles returns the coordinates of all castle tiles.
func (g *Grid) Castles() []HexCoord {
	var out []HexCoord
	for _, c := range g.Coords() {
		if g.tiles[c].Castle {
			out = append(out, c)
		}
	}
	return out
}

// Objective returns the fallback target for team t once no enemies remain:
// the top corner on the far side of the map.
func (g *Grid) Objective(t Team) HexCoord {
	if t == TeamLeft {
		return HexCoord{X: g.layout.Width - 1, Y: g.layout.Height - 1}
	}
	return HexCoord{X: 0, Y: g.layout.Height - 1}
}

func (g *Grid) setOccupied(c HexCoord, v bool) {
	if t, ok := g.tiles[c]; ok {
		t.Occupied = v
	}
}

func (g *Grid) clearOccupied() {
	for _, t := range g.tiles {
		t.Occupied = false
	}
}
