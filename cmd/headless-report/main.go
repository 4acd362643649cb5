package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Garsondee/hexbattle/internal/config"
	"github.com/Garsondee/hexbattle/internal/game"
	"github.com/Garsondee/hexbattle/internal/ledger"
	"github.com/Garsondee/hexbattle/internal/logging"
	"github.com/Garsondee/hexbattle/internal/scenario"
)

type options struct {
	runs      int
	seedBase  int64
	seedStep  int64
	perSide   int
	health    int
	attack    int
	maxTurns  int
	scenario  string
	configDir string
	workers   int
	dbPath    string
	copy      bool
	topology  bool
}

type runStats struct {
	runIndex int
	seed     int64
	result   game.BattleOutcomeReason

	firstHitTurn  int
	firstKillTurn int

	moves   int
	attacks int
	kills   int
	blocked int
	killed  map[string]struct{}
}

// setup is everything a run needs except its seed.
type setup struct {
	name  string
	cfg   game.Config
	spec  game.MapSpec
	units func(seed int64) game.UnitList
	meter bool
}

func main() {
	var o options
	flag.IntVar(&o.runs, "runs", 5, "number of headless battles")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&o.perSide, "per-side", 4, "units deployed per side")
	flag.IntVar(&o.health, "health", 10, "starting health of deployed units")
	flag.IntVar(&o.attack, "attack", 3, "attack damage of deployed units")
	flag.IntVar(&o.maxTurns, "max-turns", 0, "turn limit (0 uses config)")
	flag.StringVar(&o.scenario, "scenario", "", "YAML scenario file (replaces random deployment)")
	flag.StringVar(&o.configDir, "config", ".", "directory containing hexbattle.cfg.yaml")
	flag.IntVar(&o.workers, "workers", 4, "battles simulated in parallel")
	flag.StringVar(&o.dbPath, "db", "", "SQLite ledger path (enables the ledger)")
	flag.BoolVar(&o.copy, "copy", false, "copy the report to the clipboard")
	flag.BoolVar(&o.topology, "topology", false, "print the adjacency table and exit")
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer) error {
	if o.runs <= 0 {
		return errors.New("-runs must be > 0")
	}
	if o.workers <= 0 {
		o.workers = 1
	}

	cfgErr := config.Load(o.configDir)
	log := logging.New(os.Stderr, config.GetString("logLevel"), true)
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("Using default configuration")
	}

	s, err := buildSetup(o)
	if err != nil {
		return err
	}

	if o.topology {
		g, err := game.BuildGrid(s.spec, s.cfg.NeighborLimit)
		if err != nil {
			return err
		}
		return g.DumpTopology(stdout)
	}

	var store *ledger.Store
	dbPath := o.dbPath
	if dbPath == "" && config.GetLedgerConfig().Enabled {
		dbPath = config.GetLedgerConfig().Path
	}
	if dbPath != "" {
		store, err = ledger.Open(dbPath, log)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var report strings.Builder
	w := io.MultiWriter(stdout, &report)

	fmt.Fprintf(w, "=== Headless Battle Report ===\n")
	fmt.Fprintf(w, "scenario=%s runs=%d max_turns=%d seed_base=%d seed_step=%d workers=%d\n\n",
		s.name, o.runs, s.cfg.MaxTurns, o.seedBase, o.seedStep, o.workers)

	all, err := runAll(s, o, log)
	if err != nil {
		return err
	}
	for _, rs := range all {
		printRun(w, rs)
	}
	printAggregate(w, all)

	if store != nil {
		batch := ledger.NewBatchID()
		ctx := context.Background()
		for _, rs := range all {
			rec := ledger.FromResult(batch, s.name, rs.seed, rs.result)
			if err := store.Record(ctx, &rec); err != nil {
				return err
			}
		}
		fmt.Fprintf(stdout, "\nrecorded %d battles in batch %s\n", len(all), batch)
	}

	if o.copy {
		if err := clipboard.WriteAll(report.String()); err != nil {
			log.Warn().Err(err).Msg("Could not copy report to clipboard")
		} else {
			fmt.Fprintln(stdout, "report copied to clipboard")
		}
	}
	return nil
}

func battleConfig(bc config.BattleConfig) (game.Config, error) {
	h, err := game.ParseHeuristic(bc.Heuristic)
	if err != nil {
		return game.Config{}, err
	}
	return game.Config{
		MaxTurns:      bc.MaxTurns,
		NeighborLimit: bc.NeighborLimit,
		Heuristic:     h,
		InstantMoves:  bc.InstantMoves,
	}, nil
}

func buildSetup(o options) (setup, error) {
	cfg, err := battleConfig(config.GetBattleConfig())
	if err != nil {
		return setup{}, err
	}
	// The batch runner has no renderer to report positions back.
	cfg.InstantMoves = true

	s := setup{cfg: cfg, meter: config.GetBool("telemetry.enabled")}
	if o.scenario != "" {
		sc, err := scenario.Load(o.scenario)
		if err != nil {
			return setup{}, err
		}
		s.name = o.scenario
		if sc.Name != "" {
			s.name = sc.Name
		}
		s.cfg = sc.Config(s.cfg)
		s.spec = sc.MapSpec()
		units := sc.UnitList()
		s.units = func(int64) game.UnitList { return units }
	} else {
		if o.perSide <= 0 || o.health <= 0 {
			return setup{}, errors.New("-per-side and -health must be > 0")
		}
		mc := config.GetMapConfig()
		s.name = fmt.Sprintf("random-%dx%d", mc.Width, mc.Height)
		spec := game.StandardMap(mc.Width, mc.Height, mc.HexSize)
		s.spec = spec
		s.units = func(seed int64) game.UnitList {
			return game.Deploy(rand.New(rand.NewSource(seed)), spec, o.perSide, o.health, o.attack)
		}
	}
	if o.maxTurns > 0 {
		s.cfg.MaxTurns = o.maxTurns
	}
	return s, nil
}

// runAll fans the runs out over o.workers goroutines. Results come back in
// run order.
func runAll(s setup, o options, log zerolog.Logger) ([]runStats, error) {
	all := make([]runStats, o.runs)
	errs := make([]error, o.runs)
	jobs := make(chan int, o.runs)

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				seed := o.seedBase + int64(i)*o.seedStep
				all[i], errs[i] = runBattle(s, i+1, seed, log)
			}
		}()
	}
	for i := 0; i < o.runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return all, errors.Join(errs...)
}

func runBattle(s setup, runIndex int, seed int64, log zerolog.Logger) (runStats, error) {
	opts := []game.Option{game.WithLogger(log.With().Int("run", runIndex).Logger())}
	if !s.meter {
		opts = append(opts, game.WithMeter(noop.NewMeterProvider().Meter("")))
	}
	b := game.NewBattle(s.cfg, s.spec, s.units(seed), opts...)
	if err := b.Start(); err != nil {
		return runStats{}, fmt.Errorf("run %d: %w", runIndex, err)
	}
	if b.Status() != game.StatusInProgress {
		return runStats{}, fmt.Errorf("run %d: battle did not start", runIndex)
	}
	for b.Tick() == game.StatusInProgress {
	}
	res, _ := b.Result()
	return collectStats(runIndex, seed, res, b.SimLog()), nil
}

func collectStats(runIndex int, seed int64, res game.BattleOutcomeReason, sl *game.SimLog) runStats {
	entries := sl.Entries()
	killed := map[string]struct{}{}
	for _, e := range sl.Filter("combat", "kill") {
		killed[e.Unit] = struct{}{}
	}
	return runStats{
		runIndex:      runIndex,
		seed:          seed,
		result:        res,
		firstHitTurn:  firstTurn(entries, "combat", "hit", ""),
		firstKillTurn: firstTurn(entries, "combat", "kill", ""),
		moves:         sl.CountCategory("move", "step"),
		attacks:       sl.CountCategory("combat", "hit"),
		kills:         sl.CountCategory("combat", "kill"),
		blocked:       sl.CountCategory("path", "blocked"),
		killed:        killed,
	}
}

func firstTurn(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Turn
		}
	}
	return -1
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "result: %s\n", rs.result)
	if rs.result.Capturer != "" {
		fmt.Fprintf(w, "captured_by: %s\n", rs.result.Capturer)
	}
	fmt.Fprintf(w, "phase_markers: first_hit=%d first_kill=%d\n", rs.firstHitTurn, rs.firstKillTurn)
	fmt.Fprintf(w, "event_totals: moves=%d attacks=%d kills=%d blocked=%d\n",
		rs.moves, rs.attacks, rs.kills, rs.blocked)
	fmt.Fprintf(w, "killed_labels: %s\n", joinSet(rs.killed))
	if ok, reason := detectStalemate(rs); ok {
		fmt.Fprintf(w, "stalemate: %s\n", reason)
	}
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	outcomes := map[game.BattleOutcome]int{}
	captures := 0
	stalemates := 0
	totalTurns := 0
	totalMoves := 0
	totalAttacks := 0
	totalKills := 0
	totalBlocked := 0
	hitTurns := make([]int, 0, len(all))
	killTurns := make([]int, 0, len(all))

	for _, rs := range all {
		outcomes[rs.result.Outcome]++
		if rs.result.Description == game.ReasonObjective {
			captures++
		}
		if ok, _ := detectStalemate(rs); ok {
			stalemates++
		}
		totalTurns += rs.result.Turn
		totalMoves += rs.moves
		totalAttacks += rs.attacks
		totalKills += rs.kills
		totalBlocked += rs.blocked
		if rs.firstHitTurn >= 0 {
			hitTurns = append(hitTurns, rs.firstHitTurn)
		}
		if rs.firstKillTurn >= 0 {
			killTurns = append(killTurns, rs.firstKillTurn)
		}
	}

	n := len(all)
	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d\n", n)
	fmt.Fprintf(w, "outcomes: left_victory=%d right_victory=%d draw=%d captures=%d stalemates=%d\n",
		outcomes[game.OutcomeLeftVictory], outcomes[game.OutcomeRightVictory], outcomes[game.OutcomeDraw], captures, stalemates)
	fmt.Fprintf(w, "avg_turns=%.1f\n", avg(totalTurns, n))
	fmt.Fprintf(w, "avg_events_per_run: moves=%.1f attacks=%.1f kills=%.1f blocked=%.1f\n",
		avg(totalMoves, n), avg(totalAttacks, n), avg(totalKills, n), avg(totalBlocked, n))
	fmt.Fprintf(w, "phase_marker_avg_turns: first_hit=%s first_kill=%s\n",
		avgTickString(hitTurns), avgTickString(killTurns))

	leftTotal, rightTotal, leftSurvivors, rightSurvivors := teamSurvivalCounts(all)
	fmt.Fprintf(w, "survival: left=%d/%d right=%d/%d\n", leftSurvivors, leftTotal, rightSurvivors, rightTotal)
}

// teamSurvivalCounts sums unit totals and survivors per side across runs.
func teamSurvivalCounts(all []runStats) (leftTotal, rightTotal, leftSurvivors, rightSurvivors int) {
	for _, rs := range all {
		leftTotal += rs.result.LeftTotal
		rightTotal += rs.result.RightTotal
		leftSurvivors += rs.result.LeftSurvivors
		rightSurvivors += rs.result.RightSurvivors
	}
	return
}

// detectStalemate flags turn-limit draws where both sides kept most of their
// units: the armies never came to grips.
func detectStalemate(rs runStats) (bool, string) {
	r := rs.result
	if r.Outcome != game.OutcomeDraw || r.Description != game.ReasonTurnLimit {
		return false, "decided"
	}
	if r.LeftTotal == 0 || r.RightTotal == 0 {
		return false, "empty_side"
	}
	leftRate := float64(r.LeftSurvivors) / float64(r.LeftTotal)
	rightRate := float64(r.RightSurvivors) / float64(r.RightTotal)
	if leftRate < 0.5 || rightRate < 0.5 {
		return false, fmt.Sprintf("attrition left=%.2f right=%.2f", leftRate, rightRate)
	}
	reason := fmt.Sprintf("high_mutual_survival left=%.2f right=%.2f", leftRate, rightRate)
	if rs.blocked > rs.moves {
		reason += " blocked_dominant"
	}
	return true, reason
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
