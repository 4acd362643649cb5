package game

import "fmt"

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeLeftVictory
	OutcomeRightVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeLeftVictory:
		return "left_victory"
	case OutcomeRightVictory:
		return "right_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Winner returns the winning team, or false for draws and unfinished battles.
func (o BattleOutcome) Winner() (Team, bool) {
	switch o {
	case OutcomeLeftVictory:
		return TeamLeft, true
	case OutcomeRightVictory:
		return TeamRight, true
	default:
		return 0, false
	}
}

// VictoryFor returns the outcome in which t wins.
func VictoryFor(t Team) BattleOutcome {
	if t == TeamRight {
		return OutcomeRightVictory
	}
	return OutcomeLeftVictory
}

// ParseOutcome is the inverse of BattleOutcome.String.
func ParseOutcome(s string) (BattleOutcome, error) {
	for _, o := range []BattleOutcome{OutcomeInconclusive, OutcomeLeftVictory, OutcomeRightVictory, OutcomeDraw} {
		if o.String() == s {
			return o, nil
		}
	}
	return OutcomeInconclusive, fmt.Errorf("unknown outcome %q", s)
}

// Reasons recorded in BattleOutcomeReason.Description.
const (
	ReasonElimination  = "elimination"
	ReasonAnnihilation = "mutual_annihilation"
	ReasonObjective    = "objective_captured"
	ReasonTurnLimit    = "turn_limit"
	ReasonForced       = "forced"
)

type BattleOutcomeReason struct {
	Outcome        BattleOutcome
	Turn           int
	LeftSurvivors  int
	LeftTotal      int
	RightSurvivors int
	RightTotal     int
	// Capturer is set when the battle ended by objective capture.
	Capturer    string
	Description string
}

func (r BattleOutcomeReason) String() string {
	return fmt.Sprintf("%s (%s) at turn %d  left %d/%d  right %d/%d",
		r.Outcome, r.Description, r.Turn,
		r.LeftSurvivors, r.LeftTotal, r.RightSurvivors, r.RightTotal)
}

// evaluateWin decides the battle by elimination. It reports false while both
// sides still have live units.
func evaluateWin(r *roster) (BattleOutcome, string, bool) {
	left := r.aliveCount(TeamLeft)
	right := r.aliveCount(TeamRight)
	switch {
	case left == 0 && right == 0:
		return OutcomeDraw, ReasonAnnihilation, true
	case right == 0:
		return OutcomeLeftVictory, ReasonElimination, true
	case left == 0:
		return OutcomeRightVictory, ReasonElimination, true
	default:
		return OutcomeInconclusive, "", false
	}
}
