package fantasy

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/glgenie/gl-genie/internal/domain/prediction"
)

func rankedFixture() (prediction.RankedList, map[string]struct{}, map[string]struct{}) {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	ranked := make(prediction.RankedList, 0, len(names))
	team1 := make(map[string]struct{})
	team2 := make(map[string]struct{})
	for i, name := range names {
		side := "Alpha"
		if i >= 6 {
			side = "Beta"
		}
		ranked = append(ranked, prediction.Score{
			PlayerID: "p-" + name,
			Name:     name,
			Team:     side,
			Score:    float64(100 - i),
		})
		if side == "Alpha" {
			team1[name] = struct{}{}
		} else {
			team2[name] = struct{}{}
		}
	}
	return ranked, team1, team2
}

func baseInput() Input {
	ranked, team1, team2 := rankedFixture()
	return Input{
		Ranked:      ranked,
		WinnerTeam:  "Alpha",
		Team1:       "Alpha",
		Team2:       "Beta",
		Team1Roster: team1,
		Team2Roster: team2,
		MaxTeams:    5,
	}
}

func TestGenerateTopPairsOrdering(t *testing.T) {
	in := baseInput()
	in.MaxTeams = 3

	teams, err := Generate(in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(teams))
	}

	wantPairs := [][2]string{{"A", "B"}, {"A", "C"}, {"A", "D"}}
	for i, team := range teams {
		if team.Captain != wantPairs[i][0] || team.ViceCaptain != wantPairs[i][1] {
			t.Fatalf("team %d: got pairing (%s, %s), want (%s, %s)",
				i, team.Captain, team.ViceCaptain, wantPairs[i][0], wantPairs[i][1])
		}
		if len(team.Roster) != RosterSize {
			t.Fatalf("team %d: roster size %d", i, len(team.Roster))
		}
		if err := team.Validate(); err != nil {
			t.Fatalf("team %d invalid: %v", i, err)
		}
	}
}

func TestGenerateTopPairsFullEnumeration(t *testing.T) {
	in := baseInput()
	in.MaxTeams = 100

	teams, err := Generate(in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 6 candidates yield 15 ordered pairings.
	if len(teams) != 15 {
		t.Fatalf("expected 15 teams, got %d", len(teams))
	}

	seen := make(map[string]struct{}, len(teams))
	for _, team := range teams {
		key := team.Key()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate team emitted: %s", key)
		}
		seen[key] = struct{}{}
	}
}

func TestGenerateShortRosterReturnsEmpty(t *testing.T) {
	in := baseInput()
	in.Ranked = in.Ranked[:RosterSize-1]

	teams, err := Generate(in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("expected no teams, got %d", len(teams))
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Input)
		targetErr error
	}{
		{
			name:      "no ranked players",
			mutate:    func(in *Input) { in.Ranked = nil },
			targetErr: ErrNoRankedPlayers,
		},
		{
			name:      "zero max teams",
			mutate:    func(in *Input) { in.MaxTeams = 0 },
			targetErr: ErrInvalidMaxTeams,
		},
		{
			name:      "winner not a match side",
			mutate:    func(in *Input) { in.WinnerTeam = "Gamma" },
			targetErr: ErrInvalidWinner,
		},
		{
			name:      "empty side roster",
			mutate:    func(in *Input) { in.Team2Roster = map[string]struct{}{} },
			targetErr: ErrEmptyTeamRoster,
		},
		{
			name: "ranked player outside both sides",
			mutate: func(in *Input) {
				ranked := make(prediction.RankedList, len(in.Ranked))
				copy(ranked, in.Ranked)
				ranked[0].Name = "Stranger"
				in.Ranked = ranked
			},
			targetErr: ErrUnknownPlayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			if _, err := Generate(in); !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestGenerateWinnerSplitComposition(t *testing.T) {
	in := baseInput()
	in.WinnerTeam = "Alpha"
	// Alpha needs at least 8 candidates for the winner pool.
	extra := []string{"L", "M", "N"}
	for i, name := range extra {
		in.Ranked = append(in.Ranked, prediction.Score{
			PlayerID: "p-" + name,
			Name:     name,
			Team:     "Alpha",
			Score:    float64(80 - i),
		})
		in.Team1Roster[name] = struct{}{}
	}
	in.MaxTeams = 4

	rng := rand.New(rand.NewSource(7))
	teams, err := GenerateWinnerSplit(in, rng)
	if err != nil {
		t.Fatalf("generate winner split: %v", err)
	}
	if len(teams) == 0 || len(teams) > in.MaxTeams {
		t.Fatalf("expected between 1 and %d teams, got %d", in.MaxTeams, len(teams))
	}

	seen := make(map[string]struct{}, len(teams))
	for i, team := range teams {
		if err := team.Validate(); err != nil {
			t.Fatalf("team %d invalid: %v", i, err)
		}
		winners, losers := 0, 0
		for _, name := range team.Roster {
			if _, ok := in.Team1Roster[name]; ok {
				winners++
			} else {
				losers++
			}
		}
		if winners != 8 || losers != 3 {
			t.Fatalf("team %d: split %d/%d, want 8/3", i, winners, losers)
		}
		key := team.Key()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate team emitted: %s", key)
		}
		seen[key] = struct{}{}
	}
}

func TestGenerateWinnerSplitCaptainsAreBestPicked(t *testing.T) {
	in := baseInput()
	in.WinnerTeam = "Beta"
	// Beta has exactly 5 members; grow it to 8 so the pool is viable.
	for i, name := range []string{"L", "M", "N"} {
		in.Ranked = append(in.Ranked, prediction.Score{
			PlayerID: "p-" + name,
			Name:     name,
			Team:     "Beta",
			Score:    float64(10 - i),
		})
		in.Team2Roster[name] = struct{}{}
	}

	rng := rand.New(rand.NewSource(42))
	teams, err := GenerateWinnerSplit(in, rng)
	if err != nil {
		t.Fatalf("generate winner split: %v", err)
	}

	scores := make(map[string]float64, len(in.Ranked))
	for _, s := range in.Ranked {
		scores[s.Name] = s.Score
	}
	for i, team := range teams {
		for _, name := range team.Roster {
			if scores[name] > scores[team.Captain] {
				t.Fatalf("team %d: %s outscores captain %s", i, name, team.Captain)
			}
			if name != team.Captain && scores[name] > scores[team.ViceCaptain] {
				t.Fatalf("team %d: %s outscores vice-captain %s", i, name, team.ViceCaptain)
			}
		}
	}
}

func TestGenerateWinnerSplitShortPools(t *testing.T) {
	in := baseInput()
	// Beta fields only 5 players, below the 8 winner picks required.
	in.WinnerTeam = "Beta"

	if _, err := GenerateWinnerSplit(in, rand.New(rand.NewSource(1))); !errors.Is(err, ErrShortSamplePools) {
		t.Fatalf("expected ErrShortSamplePools, got %v", err)
	}
}

func TestGenerateWinnerSplitRequiresRandSource(t *testing.T) {
	if _, err := GenerateWinnerSplit(baseInput(), nil); err == nil {
		t.Fatalf("expected error for nil random source")
	}
}
