package prediction

import "context"

// Repository persists ranking snapshots keyed by match id. It is an
// optional secondary cache layer: callers must treat any failure as a
// miss and recompute, never fail the request on it.
type Repository interface {
	GetRanking(ctx context.Context, matchID string) (Snapshot, bool, error)
	SaveRanking(ctx context.Context, snapshot Snapshot) error
}
