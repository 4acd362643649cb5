package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/hexbattle/internal/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// battleMetrics counts engine activity. With no provider installed the
// global meter is a no-op.
type battleMetrics struct {
	turns   metric.Int64Counter
	moves   metric.Int64Counter
	attacks metric.Int64Counter
	kills   metric.Int64Counter
	blocked metric.Int64Counter
	ended   metric.Int64Counter
}

func newBattleMetrics(m metric.Meter) (*battleMetrics, error) {
	bm := &battleMetrics{}
	var err error

	bm.turns, err = m.Int64Counter("battle.turns",
		metric.WithDescription("Turns simulated"))
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	bm.moves, err = m.Int64Counter("battle.moves",
		metric.WithDescription("Unit moves issued"))
	if err != nil {
		return nil, fmt.Errorf("creating moves counter: %w", err)
	}
	bm.attacks, err = m.Int64Counter("battle.attacks",
		metric.WithDescription("Melee attacks resolved"))
	if err != nil {
		return nil, fmt.Errorf("creating attacks counter: %w", err)
	}
	bm.kills, err = m.Int64Counter("battle.kills",
		metric.WithDescription("Units killed"))
	if err != nil {
		return nil, fmt.Errorf("creating kills counter: %w", err)
	}
	bm.blocked, err = m.Int64Counter("battle.blocked",
		metric.WithDescription("Turns a unit held because no path existed"))
	if err != nil {
		return nil, fmt.Errorf("creating blocked counter: %w", err)
	}
	bm.ended, err = m.Int64Counter("battle.ended",
		metric.WithDescription("Battles finished"))
	if err != nil {
		return nil, fmt.Errorf("creating ended counter: %w", err)
	}
	return bm, nil
}

func teamAttr(t Team) metric.AddOption {
	return metric.WithAttributes(attribute.String("team", t.String()))
}

func (bm *battleMetrics) turn() {
	bm.turns.Add(context.Background(), 1)
}

func (bm *battleMetrics) move(t Team) {
	bm.moves.Add(context.Background(), 1, teamAttr(t))
}

func (bm *battleMetrics) attack(t Team, killed bool) {
	bm.attacks.Add(context.Background(), 1, teamAttr(t))
	if killed {
		bm.kills.Add(context.Background(), 1, teamAttr(t))
	}
}

func (bm *battleMetrics) block() {
	bm.blocked.Add(context.Background(), 1)
}

func (bm *battleMetrics) end(r BattleOutcomeReason) {
	bm.ended.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("outcome", r.Outcome.String()),
		attribute.String("reason", r.Description),
	))
}
