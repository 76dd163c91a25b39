package fantasy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/glgenie/gl-genie/internal/domain/prediction"
)

var (
	ErrNoRankedPlayers  = errors.New("no ranked players provided")
	ErrInvalidWinner    = errors.New("winner team must be one of the two match sides")
	ErrEmptyTeamRoster  = errors.New("both match sides must have players")
	ErrUnknownPlayer    = errors.New("ranked player does not belong to either side")
	ErrUnknownStrategy  = errors.New("unknown generation strategy")
	ErrInvalidMaxTeams  = errors.New("max teams must be greater than zero")
	ErrShortSamplePools = errors.New("side pools too small for winner-split sampling")
)

// Strategy names the team generation variant. The two variants are kept
// separate on purpose: TopPairs is deterministic and reproducible,
// WinnerSplit biases roster composition toward the predicted winner using
// an injected random source.
type Strategy string

const (
	StrategyTopPairs    Strategy = "top_pairs"
	StrategyWinnerSplit Strategy = "winner_split"
)

// captainPoolSize bounds the captain/vice candidate pool to the strongest
// ranked members of the roster.
const captainPoolSize = 6

// winner-split composition: 8 picks from the predicted winner's side,
// 3 from the other side.
const (
	winnerSplitWinnerPicks = 8
	winnerSplitLoserPicks  = 3
)

// Input carries everything team generation needs. Rosters map each side
// name to the set of player names fielded by that side.
type Input struct {
	Ranked      prediction.RankedList
	WinnerTeam  string
	Team1       string
	Team2       string
	Team1Roster map[string]struct{}
	Team2Roster map[string]struct{}
	MaxTeams    int
}

func (in Input) validate() error {
	if len(in.Ranked) == 0 {
		return ErrNoRankedPlayers
	}
	if in.MaxTeams <= 0 {
		return ErrInvalidMaxTeams
	}
	if in.WinnerTeam != in.Team1 && in.WinnerTeam != in.Team2 {
		return fmt.Errorf("%w: got %q, sides are %q and %q", ErrInvalidWinner, in.WinnerTeam, in.Team1, in.Team2)
	}
	if len(in.Team1Roster) == 0 || len(in.Team2Roster) == 0 {
		return ErrEmptyTeamRoster
	}
	return nil
}

func (in Input) knownPlayer(name string) bool {
	if _, ok := in.Team1Roster[name]; ok {
		return true
	}
	_, ok := in.Team2Roster[name]
	return ok
}

// Generate builds up to MaxTeams teams with the deterministic top-pairs
// strategy: the top 11 ranked players form the fixed roster of every team
// and only the captaincy pairing varies, enumerated in rank order over the
// top 6. Fewer than 11 ranked players is a legitimate empty result, not an
// error; validation failures are.
func Generate(in Input) ([]Team, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if len(in.Ranked) < RosterSize {
		return []Team{}, nil
	}

	top := in.Ranked[:RosterSize]
	roster := make([]string, 0, RosterSize)
	for _, s := range top {
		if !in.knownPlayer(s.Name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, s.Name)
		}
		roster = append(roster, s.Name)
	}

	poolSize := captainPoolSize
	if poolSize > len(top) {
		poolSize = len(top)
	}
	pool := roster[:poolSize]
	if len(pool) < 2 {
		return []Team{}, nil
	}

	teams := make([]Team, 0, in.MaxTeams)
	for i := 0; i < len(pool) && len(teams) < in.MaxTeams; i++ {
		for j := i + 1; j < len(pool) && len(teams) < in.MaxTeams; j++ {
			teams = append(teams, Team{
				Captain:     pool[i],
				ViceCaptain: pool[j],
				Roster:      roster,
			})
		}
	}

	return teams, nil
}

// GenerateWinnerSplit builds up to MaxTeams teams by sampling 8 players
// from the predicted winner's side and 3 from the other side, ordering the
// 11 by score and assigning the two best as captain and vice-captain. The
// random source is injected so tests and callers control reproducibility.
// Duplicate (roster, pairing) draws are discarded.
func GenerateWinnerSplit(in Input, rng *rand.Rand) ([]Team, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required for the winner-split strategy")
	}

	winnerRoster, loserRoster := in.Team1Roster, in.Team2Roster
	if in.WinnerTeam == in.Team2 {
		winnerRoster, loserRoster = in.Team2Roster, in.Team1Roster
	}

	var winnerPool, loserPool []prediction.Score
	for _, s := range in.Ranked {
		switch {
		case contains(winnerRoster, s.Name):
			winnerPool = append(winnerPool, s)
		case contains(loserRoster, s.Name):
			loserPool = append(loserPool, s)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, s.Name)
		}
	}

	if len(winnerPool) < winnerSplitWinnerPicks || len(loserPool) < winnerSplitLoserPicks {
		return nil, fmt.Errorf("%w: winner side has %d, other side has %d",
			ErrShortSamplePools, len(winnerPool), len(loserPool))
	}

	teams := make([]Team, 0, in.MaxTeams)
	seen := make(map[string]struct{}, in.MaxTeams)

	// Duplicate draws do not count toward MaxTeams, so bound total draws.
	maxDraws := in.MaxTeams * 10
	for draws := 0; draws < maxDraws && len(teams) < in.MaxTeams; draws++ {
		picked := make([]prediction.Score, 0, RosterSize)
		picked = append(picked, sample(rng, winnerPool, winnerSplitWinnerPicks)...)
		picked = append(picked, sample(rng, loserPool, winnerSplitLoserPicks)...)

		sort.SliceStable(picked, func(i, j int) bool {
			if picked[i].Score != picked[j].Score {
				return picked[i].Score > picked[j].Score
			}
			return picked[i].Name < picked[j].Name
		})

		roster := make([]string, 0, RosterSize)
		for _, s := range picked {
			roster = append(roster, s.Name)
		}

		team := Team{
			Captain:     roster[0],
			ViceCaptain: roster[1],
			Roster:      roster,
		}
		key := team.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		teams = append(teams, team)
	}

	return teams, nil
}

func contains(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// sample draws n distinct elements from pool without mutating it.
func sample(rng *rand.Rand, pool []prediction.Score, n int) []prediction.Score {
	idx := rng.Perm(len(pool))[:n]
	out := make([]prediction.Score, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}
