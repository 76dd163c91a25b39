package usecase

import (
	"context"
	"time"

	"github.com/glgenie/gl-genie/internal/domain/player"
)

// Roster is the upstream view of one fixture: the two sides and every
// player fielded by either of them.
type Roster struct {
	MatchID string
	Team1   string
	Team2   string
	Players []player.Player
}

// RosterProvider fetches match roster data from an external source. The
// implementation owns its retry and rate-limit behavior; errors surface
// wrapped in the usecase sentinels (ErrNotFound for an unknown match,
// ErrDependencyUnavailable for an exhausted or misconfigured upstream).
type RosterProvider interface {
	FetchMatchRoster(ctx context.Context, matchID string) (Roster, error)
}

// UpcomingMatch is one fixture from the provider's schedule. StartsAt is
// zero when the provider omits the start time.
type UpcomingMatch struct {
	MatchID  string
	Name     string
	Team1    string
	Team2    string
	Venue    string
	StartsAt time.Time
}

// MatchLister fetches the upcoming fixture schedule. Same error contract
// as RosterProvider; the cricket data client implements both.
type MatchLister interface {
	FetchUpcomingMatches(ctx context.Context) ([]UpcomingMatch, error)
}

// Scorer produces a predicted fantasy score for one player. A per-player
// failure is expected and must not abort the batch.
type Scorer interface {
	Score(ctx context.Context, p player.Player) (float64, error)
}
