package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// BattleConfig holds the engine settings under the battle key.
type BattleConfig struct {
	MaxTurns      int     `json:"maxTurns" mapstructure:"maxTurns"`
	InstantMoves  bool    `json:"instantMoves" mapstructure:"instantMoves"`
	NeighborLimit float64 `json:"neighborLimit" mapstructure:"neighborLimit"`
	Heuristic     string  `json:"heuristic" mapstructure:"heuristic"`
}

// MapConfig describes the generated map used when no scenario is given.
type MapConfig struct {
	Width   int     `json:"width" mapstructure:"width"`
	Height  int     `json:"height" mapstructure:"height"`
	HexSize float64 `json:"hexSize" mapstructure:"hexSize"`
}

// LedgerConfig holds results ledger settings
type LedgerConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// Load reads configuration from YAML file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName("hexbattle.cfg.yaml")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers the default values without reading a file.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("battle.maxTurns", 100)
	viper.SetDefault("battle.instantMoves", true)
	viper.SetDefault("battle.neighborLimit", 3.0)
	viper.SetDefault("battle.heuristic", "world")

	viper.SetDefault("map.width", 16)
	viper.SetDefault("map.height", 4)
	viper.SetDefault("map.hexSize", 1.0)

	viper.SetDefault("ledger.enabled", false)
	viper.SetDefault("ledger.path", "hexbattle.db")

	viper.SetDefault("telemetry.enabled", true)
}

// GetBattleConfig returns the battle settings.
func GetBattleConfig() BattleConfig {
	return BattleConfig{
		MaxTurns:      viper.GetInt("battle.maxTurns"),
		InstantMoves:  viper.GetBool("battle.instantMoves"),
		NeighborLimit: viper.GetFloat64("battle.neighborLimit"),
		Heuristic:     viper.GetString("battle.heuristic"),
	}
}

// GetMapConfig returns the generated map settings.
func GetMapConfig() MapConfig {
	return MapConfig{
		Width:   viper.GetInt("map.width"),
		Height:  viper.GetInt("map.height"),
		HexSize: viper.GetFloat64("map.hexSize"),
	}
}

// GetLedgerConfig returns the results ledger settings.
func GetLedgerConfig() LedgerConfig {
	return LedgerConfig{
		Enabled: viper.GetBool("ledger.enabled"),
		Path:    viper.GetString("ledger.path"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
