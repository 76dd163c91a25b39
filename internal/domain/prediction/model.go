package prediction

import (
	"math"
	"time"

	"github.com/glgenie/gl-genie/internal/domain/player"
)

// Score is one scored roster entry. It is immutable once produced for a
// request; a NaN score marks a player the scorer could not handle.
type Score struct {
	PlayerID string
	Name     string
	Team     string
	Role     player.Role
	Stats    player.Stats
	Score    float64
}

// Valid reports whether the score is usable for ranking.
func (s Score) Valid() bool {
	return !math.IsNaN(s.Score) && !math.IsInf(s.Score, 0)
}

// RankedList is a ranking of scored players, descending by score with
// lexicographic name as tie-break.
type RankedList []Score

// Names returns player names in rank order.
func (r RankedList) Names() []string {
	out := make([]string, 0, len(r))
	for _, s := range r {
		out = append(out, s.Name)
	}
	return out
}

// MatchInfo describes the fixture a ranking was produced for.
type MatchInfo struct {
	MatchID string
	Team1   string
	Team2   string
}

// Snapshot is a persisted ranking for one match, used as a secondary
// cache layer behind the in-process freshness cache.
type Snapshot struct {
	ID        string
	MatchID   string
	Match     MatchInfo
	Ranking   RankedList
	CreatedAt time.Time
}
