package scoring

import (
	"context"

	"github.com/glgenie/gl-genie/internal/domain/player"
)

// role weights applied to the batting and bowling components.
var roleWeights = map[player.Role][2]float64{
	player.RoleBatter:       {1.0, 0.2},
	player.RoleBowler:       {0.2, 1.0},
	player.RoleAllRounder:   {0.7, 0.7},
	player.RoleWicketKeeper: {1.0, 0.1},
	player.RoleUnknown:      {0.5, 0.5},
}

// BaselineScorer is a deterministic fallback used when no model server is
// configured. The same stats always produce the same score, which keeps
// rankings reproducible without an external dependency.
type BaselineScorer struct{}

func NewBaselineScorer() *BaselineScorer {
	return &BaselineScorer{}
}

func (s *BaselineScorer) Score(_ context.Context, p player.Player) (float64, error) {
	stats := p.Stats.FillDefaults()

	batting := stats.BatAvg + stats.BatSR*0.4

	// Lower bowling averages and strike rates are better, so both are
	// inverted against loose upper bounds before weighting.
	bowling := clampMin(60-stats.BowlAvg, 0) + clampMin(40-stats.BowlSR, 0)*0.8
	bowling += stats.DeathOversPct * 20

	weights, ok := roleWeights[p.Role]
	if !ok {
		weights = roleWeights[player.RoleUnknown]
	}

	return batting*weights[0] + bowling*weights[1], nil
}

func clampMin(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}
