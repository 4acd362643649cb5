// Package scenario loads hand-authored battles from YAML.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/hexbattle/internal/game"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Coord is an [x, y] pair.
type Coord [2]int

func (c Coord) hex() game.HexCoord { return game.HexCoord{X: c[0], Y: c[1]} }

type MapDef struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	HexSize float64 `yaml:"hexSize"`
	Missing []Coord `yaml:"missing"`
	// Castles replaces the default top-right castle when present.
	Castles []Coord `yaml:"castles"`
}

type UnitDef struct {
	Label  string `yaml:"label"`
	Team   string `yaml:"team"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Health int    `yaml:"health"`
	Attack int    `yaml:"attack"`
}

type BattleDef struct {
	MaxTurns int `yaml:"maxTurns"`
}

type Scenario struct {
	Name   string    `yaml:"name"`
	Map    MapDef    `yaml:"map"`
	Units  []UnitDef `yaml:"units"`
	Battle BattleDef `yaml:"battle"`

	teams []game.Team
}

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Map.HexSize == 0 {
		s.Map.HexSize = 1
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	m := s.Map
	if m.Width <= 0 || m.Height <= 0 || m.HexSize <= 0 {
		return fmt.Errorf("%w: map %dx%d hexSize %.2f", ErrInvalidScenario, m.Width, m.Height, m.HexSize)
	}
	if s.Battle.MaxTurns < 0 {
		return fmt.Errorf("%w: negative maxTurns", ErrInvalidScenario)
	}
	layout := game.NewLayout(m.Width, m.Height, m.HexSize)
	for _, c := range append(append([]Coord{}, m.Missing...), m.Castles...) {
		if !layout.InBounds(c.hex()) {
			return fmt.Errorf("%w: %s is off the map", ErrInvalidScenario, c.hex())
		}
	}
	missing := make(map[game.HexCoord]bool, len(m.Missing))
	for _, c := range m.Missing {
		missing[c.hex()] = true
	}

	used := make(map[game.HexCoord]string)
	s.teams = make([]game.Team, len(s.Units))
	for i, u := range s.Units {
		name := u.Label
		if name == "" {
			name = fmt.Sprintf("unit %d", i)
		}
		team, err := game.ParseTeam(u.Team)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidScenario, name, err)
		}
		s.teams[i] = team
		c := game.HexCoord{X: u.X, Y: u.Y}
		switch {
		case !layout.InBounds(c):
			return fmt.Errorf("%w: %s at %s is off the map", ErrInvalidScenario, name, c)
		case missing[c]:
			return fmt.Errorf("%w: %s at %s stands on a missing tile", ErrInvalidScenario, name, c)
		case used[c] != "":
			return fmt.Errorf("%w: %s and %s share %s", ErrInvalidScenario, used[c], name, c)
		case u.Health <= 0:
			return fmt.Errorf("%w: %s has no health", ErrInvalidScenario, name)
		case u.Attack < 0:
			return fmt.Errorf("%w: %s has negative attack", ErrInvalidScenario, name)
		}
		used[c] = name
	}
	return nil
}

// MapSpec builds the tile list: a standard map minus the missing cells, with
// the castle list applied when one is given.
func (s *Scenario) MapSpec() game.MapSpec {
	spec := game.StandardMap(s.Map.Width, s.Map.Height, s.Map.HexSize)
	if s.Map.Castles != nil {
		castles := make([]game.HexCoord, len(s.Map.Castles))
		for i, c := range s.Map.Castles {
			castles[i] = c.hex()
		}
		spec = game.WithCastles(spec, castles...)
	}
	if len(s.Map.Missing) > 0 {
		missing := make([]game.HexCoord, len(s.Map.Missing))
		for i, c := range s.Map.Missing {
			missing[i] = c.hex()
		}
		spec = game.WithoutTiles(spec, missing...)
	}
	return spec
}

// UnitList places each unit at the canonical position of its tile, in file
// order.
func (s *Scenario) UnitList() game.UnitList {
	layout := game.NewLayout(s.Map.Width, s.Map.Height, s.Map.HexSize)
	out := make(game.UnitList, len(s.Units))
	for i, u := range s.Units {
		out[i] = game.UnitSpec{
			Label:        u.Label,
			Team:         s.teams[i],
			Position:     layout.HexToWorld(game.HexCoord{X: u.X, Y: u.Y}),
			Health:       u.Health,
			AttackDamage: u.Attack,
		}
	}
	return out
}

// Config applies the scenario's battle overrides to cfg.
func (s *Scenario) Config(cfg game.Config) game.Config {
	if s.Battle.MaxTurns > 0 {
		cfg.MaxTurns = s.Battle.MaxTurns
	}
	return cfg
}
