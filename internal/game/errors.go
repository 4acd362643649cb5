package game

import "errors"

var (
	// ErrNoMapSource is returned by Start when the battle has no tile registry.
	ErrNoMapSource = errors.New("no map source")
	// ErrInvalidMap wraps every map validation failure.
	ErrInvalidMap = errors.New("invalid map")
	// ErrBattleEnded is returned when starting a battle that already ended.
	ErrBattleEnded = errors.New("battle already ended")
	// ErrUnknownUnit is returned for an id outside the unit arena.
	ErrUnknownUnit = errors.New("unknown unit")
)
