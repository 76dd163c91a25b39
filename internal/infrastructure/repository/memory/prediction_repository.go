package memory

import (
	"context"
	"sync"

	"github.com/glgenie/gl-genie/internal/domain/fantasy"
	"github.com/glgenie/gl-genie/internal/domain/prediction"
)

// PredictionRepository keeps the newest ranking snapshot per match in
// memory. It backs local development and tests when no database is
// configured.
type PredictionRepository struct {
	mu        sync.RWMutex
	snapshots map[string]prediction.Snapshot
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{
		snapshots: make(map[string]prediction.Snapshot),
	}
}

func (r *PredictionRepository) GetRanking(_ context.Context, matchID string) (prediction.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[matchID]
	if !ok {
		return prediction.Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

func (r *PredictionRepository) SaveRanking(_ context.Context, snapshot prediction.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshot.MatchID] = snapshot
	return nil
}

type teamSetKey struct {
	matchID string
	variant string
}

// TeamSetRepository keeps the newest generated team set per match and
// variant in memory.
type TeamSetRepository struct {
	mu   sync.RWMutex
	sets map[teamSetKey][]fantasy.Team
}

func NewTeamSetRepository() *TeamSetRepository {
	return &TeamSetRepository{
		sets: make(map[teamSetKey][]fantasy.Team),
	}
}

func (r *TeamSetRepository) GetTeams(_ context.Context, matchID, variant string) ([]fantasy.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams, ok := r.sets[teamSetKey{matchID: matchID, variant: variant}]
	if !ok {
		return nil, false, nil
	}

	out := make([]fantasy.Team, len(teams))
	copy(out, teams)
	return out, true, nil
}

func (r *TeamSetRepository) SaveTeams(_ context.Context, matchID, variant string, teams []fantasy.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]fantasy.Team, len(teams))
	copy(stored, teams)
	r.sets[teamSetKey{matchID: matchID, variant: variant}] = stored
	return nil
}
