package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glgenie/gl-genie/internal/domain/fantasy"
	"github.com/glgenie/gl-genie/internal/domain/prediction"
)

func TestPredictionRepository(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()

	_, found, err := repo.GetRanking(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, found)

	snapshot := prediction.Snapshot{
		ID:      "snap-1",
		MatchID: "m1",
		Match:   prediction.MatchInfo{MatchID: "m1", Team1: "Alpha", Team2: "Beta"},
		Ranking: prediction.RankedList{
			{PlayerID: "p1", Name: "A", Team: "Alpha", Score: 90},
			{PlayerID: "p2", Name: "B", Team: "Beta", Score: 80},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.SaveRanking(ctx, snapshot))

	got, found, err := repo.GetRanking(ctx, "m1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snapshot.ID, got.ID)
	assert.Len(t, got.Ranking, 2)

	// A newer snapshot for the same match replaces the previous one.
	snapshot.ID = "snap-2"
	require.NoError(t, repo.SaveRanking(ctx, snapshot))
	got, found, err = repo.GetRanking(ctx, "m1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "snap-2", got.ID)
}

func TestTeamSetRepository(t *testing.T) {
	t.Parallel()

	repo := NewTeamSetRepository()
	ctx := context.Background()

	_, found, err := repo.GetTeams(ctx, "m1", "top_pairs|Alpha|5")
	require.NoError(t, err)
	assert.False(t, found)

	teams := []fantasy.Team{
		{Captain: "A", ViceCaptain: "B", Roster: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}},
	}
	require.NoError(t, repo.SaveTeams(ctx, "m1", "top_pairs|Alpha|5", teams))

	got, found, err := repo.GetTeams(ctx, "m1", "top_pairs|Alpha|5")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)

	// Mutating the returned slice must not leak back into the store.
	got[0].Captain = "Z"
	again, _, err := repo.GetTeams(ctx, "m1", "top_pairs|Alpha|5")
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Captain)

	// Different variants are stored independently.
	_, found, err = repo.GetTeams(ctx, "m1", "winner_split|Alpha|5")
	require.NoError(t, err)
	assert.False(t, found)
}
