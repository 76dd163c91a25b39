package fantasy

import "context"

// Repository persists generated team sets keyed by match id and a variant
// key describing the generation inputs. Same contract as the ranking
// snapshot store: failures are treated as misses, never as request
// failures.
type Repository interface {
	GetTeams(ctx context.Context, matchID, variant string) ([]Team, bool, error)
	SaveTeams(ctx context.Context, matchID, variant string, teams []Team) error
}
