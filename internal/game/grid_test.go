package game

import (
	"errors"
	"testing"
)

func TestBuildGrid_RejectsInvalidSpecs(t *testing.T) {
	cases := map[string]MapSpec{
		"zero width":  {Width: 0, Height: 4, HexSize: 1, Tiles: StandardMap(6, 4, 1).Tiles},
		"no hex size": {Width: 6, Height: 4, Tiles: StandardMap(6, 4, 1).Tiles},
		"no tiles":    {Width: 6, Height: 4, HexSize: 1},
	}
	for name, spec := range cases {
		if _, err := BuildGrid(spec, DefaultNeighborLimit); !errors.Is(err, ErrInvalidMap) {
			t.Errorf("%s: expected ErrInvalidMap, got %v", name, err)
		}
	}
}

func TestBuildGrid_StandardLayout(t *testing.T) {
	g, err := BuildGrid(StandardMap(16, 4, 1), DefaultNeighborLimit)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if g.Len() != 64 {
		t.Fatalf("expected 64 tiles, got %d", g.Len())
	}
	castles := g.Castles()
	if len(castles) != 1 || castles[0] != (HexCoord{15, 3}) {
		t.Fatalf("expected single castle at (15,3), got %v", castles)
	}
	if tile, _ := g.Tile(HexCoord{7, 0}); tile.Zone != ZoneLeft {
		t.Fatal("column 7 should be in the left zone")
	}
	if tile, _ := g.Tile(HexCoord{8, 0}); tile.Zone != ZoneRight {
		t.Fatal("column 8 should be in the right zone")
	}
}

func TestBuildGrid_DuplicateKeepsClosest(t *testing.T) {
	l := NewLayout(4, 3, 1)
	canon := l.HexToWorld(HexCoord{1, 1})
	near := canon
	near.X += 0.05
	far := canon
	far.X += 0.1
	far.Z += 0.05

	for _, order := range [][]TileSpec{
		{{Position: far, Castle: true}, {Position: near}},
		{{Position: near}, {Position: far, Castle: true}},
	} {
		g, err := BuildGrid(MapSpec{Width: 4, Height: 3, HexSize: 1, Tiles: order}, DefaultNeighborLimit)
		if err != nil {
			t.Fatalf("BuildGrid: %v", err)
		}
		if g.Len() != 1 {
			t.Fatalf("duplicates should collapse to one tile, got %d", g.Len())
		}
		tile, ok := g.Tile(HexCoord{1, 1})
		if !ok {
			t.Fatal("tile (1,1) missing")
		}
		if tile.Castle {
			t.Fatal("the entry nearer the canonical position should win")
		}
	}
}

func TestBuildGrid_DuplicateTieKeepsFirst(t *testing.T) {
	l := NewLayout(4, 3, 1)
	p := l.HexToWorld(HexCoord{2, 1})
	g, err := BuildGrid(MapSpec{Width: 4, Height: 3, HexSize: 1, Tiles: []TileSpec{
		{Position: p, Zone: ZoneRight},
		{Position: p, Zone: ZoneLeft},
	}}, DefaultNeighborLimit)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	if tile, _ := g.Tile(HexCoord{2, 1}); tile.Zone != ZoneRight {
		t.Fatal("equal distances should keep the first entry")
	}
}

func TestGrid_ObjectiveCorners(t *testing.T) {
	g := openGrid(t, 6, 4)
	if got := g.Objective(TeamLeft); got != (HexCoord{5, 3}) {
		t.Fatalf("left objective %s", got)
	}
	if got := g.Objective(TeamRight); got != (HexCoord{0, 3}) {
		t.Fatalf("right objective %s", got)
	}
}

func TestParseTeam(t *testing.T) {
	for in, want := range map[string]Team{"left": TeamLeft, "0": TeamLeft, "right": TeamRight, "1": TeamRight} {
		got, err := ParseTeam(in)
		if err != nil || got != want {
			t.Errorf("ParseTeam(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseTeam("blue"); err == nil {
		t.Error("expected error for unknown team")
	}
}
