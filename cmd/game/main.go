package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/hexbattle/internal/config"
	"github.com/Garsondee/hexbattle/internal/game"
	"github.com/Garsondee/hexbattle/internal/logging"
	"github.com/Garsondee/hexbattle/internal/scenario"
	"github.com/Garsondee/hexbattle/internal/viewer"
)

func main() {
	var (
		scenarioPath string
		configDir    string
		seed         int64
		perSide      int
		ticksPerTurn int
	)
	flag.StringVar(&scenarioPath, "scenario", "", "YAML scenario file (replaces random deployment)")
	flag.StringVar(&configDir, "config", ".", "directory containing hexbattle.cfg.yaml")
	flag.Int64Var(&seed, "seed", 0, "deployment seed (0 picks one per restart)")
	flag.IntVar(&perSide, "per-side", 4, "units deployed per side")
	flag.IntVar(&ticksPerTurn, "ticks-per-turn", viewer.DefaultTicksPerTurn, "frames between battle turns")
	flag.Parse()

	cfgErr := config.Load(configDir)
	logger := logging.New(os.Stderr, config.GetString("logLevel"), true)
	if cfgErr != nil {
		logger.Warn().Err(cfgErr).Msg("Using default configuration")
	}

	bc := config.GetBattleConfig()
	h, err := game.ParseHeuristic(bc.Heuristic)
	if err != nil {
		log.Fatal(err)
	}
	cfg := game.Config{
		MaxTurns:      bc.MaxTurns,
		NeighborLimit: bc.NeighborLimit,
		Heuristic:     h,
		// Units glide on screen and report their own arrival.
		InstantMoves: false,
	}

	var spec game.MapSpec
	var units func() game.UnitList
	if scenarioPath != "" {
		sc, err := scenario.Load(scenarioPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = sc.Config(cfg)
		spec = sc.MapSpec()
		list := sc.UnitList()
		units = func() game.UnitList { return list }
	} else {
		mc := config.GetMapConfig()
		spec = game.StandardMap(mc.Width, mc.Height, mc.HexSize)
		units = func() game.UnitList {
			s := seed
			if s == 0 {
				s = time.Now().UnixNano()
			}
			logger.Info().Int64("seed", s).Msg("Deploying")
			return game.Deploy(rand.New(rand.NewSource(s)), spec, perSide, 10, 3)
		}
	}

	factory := func(hooks game.Hooks) *game.Battle {
		return game.NewBattle(cfg, spec, units(), game.WithLogger(logger), game.WithHooks(hooks))
	}

	v := viewer.New(factory, 1280, 720, ticksPerTurn, logger)

	ebiten.SetWindowTitle("Hex Battle")
	ebiten.SetWindowSize(1280, 720)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
