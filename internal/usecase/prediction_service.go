package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/glgenie/gl-genie/internal/domain/fantasy"
	"github.com/glgenie/gl-genie/internal/domain/player"
	"github.com/glgenie/gl-genie/internal/domain/prediction"
	"github.com/glgenie/gl-genie/internal/platform/cache"
	idgen "github.com/glgenie/gl-genie/internal/platform/id"
)

const (
	defaultMaxTeams     = 5
	defaultScoreWorkers = 8
	persistTimeout      = 5 * time.Second
)

// GenerateTeamsInput is the incoming payload for team generation.
type GenerateTeamsInput struct {
	MatchID    string
	WinnerTeam string
	MaxTeams   int
	Strategy   fantasy.Strategy
}

type PredictionService struct {
	roster       RosterProvider
	matches      MatchLister
	scorer       Scorer
	rankingRepo  prediction.Repository
	teamsRepo    fantasy.Repository
	rankingCache *cache.Store
	teamsCache   *cache.Store
	idGen        idgen.Generator
	logger       *slog.Logger
	scoreWorkers int
	snapshotTTL  time.Duration
	bg           conc.WaitGroup
	now          func() time.Time
	newRand      func() *rand.Rand
}

// NewPredictionService wires the prediction pipeline. rankingRepo and
// teamsRepo may be nil; persistence is then skipped and only the
// in-process caches serve repeat reads.
func NewPredictionService(
	roster RosterProvider,
	matches MatchLister,
	scorer Scorer,
	rankingRepo prediction.Repository,
	teamsRepo fantasy.Repository,
	rankingCache *cache.Store,
	teamsCache *cache.Store,
	idGen idgen.Generator,
	logger *slog.Logger,
	scoreWorkers int,
	snapshotTTL time.Duration,
) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	if scoreWorkers < 1 {
		scoreWorkers = defaultScoreWorkers
	}

	return &PredictionService{
		roster:       roster,
		matches:      matches,
		scorer:       scorer,
		rankingRepo:  rankingRepo,
		teamsRepo:    teamsRepo,
		rankingCache: rankingCache,
		teamsCache:   teamsCache,
		idGen:        idGen,
		logger:       logger,
		scoreWorkers: scoreWorkers,
		snapshotTTL:  snapshotTTL,
		now:          time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// ListUpcomingMatches returns the provider's fixture schedule, cached on
// the same short-lived store as rankings so the schedule endpoint cannot
// hammer the upstream.
func (s *PredictionService) ListUpcomingMatches(ctx context.Context) ([]UpcomingMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.ListUpcomingMatches")
	defer span.End()

	value, err := s.rankingCache.GetOrLoad(ctx, "matches:upcoming", func(ctx context.Context) (any, error) {
		matches, err := s.matches.FetchUpcomingMatches(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "upcoming matches fetched", "matches", len(matches))
		return matches, nil
	})
	if err != nil {
		return nil, s.mapContextError(err)
	}

	matches, ok := value.([]UpcomingMatch)
	if !ok {
		return nil, fmt.Errorf("unexpected cached matches type %T", value)
	}

	return matches, nil
}

// GetRanking returns the ranked predicted scores for one match. Repeat
// calls within the cache TTL are served from memory; concurrent callers
// on a cold key share a single upstream fetch and scoring pass.
func (s *PredictionService) GetRanking(ctx context.Context, matchID string) (prediction.Snapshot, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return prediction.Snapshot{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "PredictionService.GetRanking")
	defer span.End()

	value, err := s.rankingCache.GetOrLoad(ctx, "ranking:"+matchID, func(ctx context.Context) (any, error) {
		return s.buildRanking(ctx, matchID)
	})
	if err != nil {
		return prediction.Snapshot{}, s.mapContextError(err)
	}

	snapshot, ok := value.(prediction.Snapshot)
	if !ok {
		return prediction.Snapshot{}, fmt.Errorf("unexpected cached ranking type %T", value)
	}

	return snapshot, nil
}

func (s *PredictionService) buildRanking(ctx context.Context, matchID string) (prediction.Snapshot, error) {
	if stored, ok := s.storedRanking(ctx, matchID); ok {
		return stored, nil
	}

	roster, err := s.roster.FetchMatchRoster(ctx, matchID)
	if err != nil {
		return prediction.Snapshot{}, err
	}
	if len(roster.Players) == 0 {
		return prediction.Snapshot{}, fmt.Errorf("%w: match %s has no roster", ErrNotFound, matchID)
	}

	scored, err := s.scoreRoster(ctx, roster.Players)
	if err != nil {
		return prediction.Snapshot{}, err
	}

	ranked, dropped := prediction.Rank(scored)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped unscorable players from ranking",
			"match_id", matchID,
			"dropped", dropped,
		)
	}
	if len(ranked) == 0 {
		return prediction.Snapshot{}, fmt.Errorf("%w: no scorable players for match %s", ErrNotFound, matchID)
	}

	snapshotID, err := s.idGen.NewID()
	if err != nil {
		return prediction.Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
	}

	snapshot := prediction.Snapshot{
		ID:      snapshotID,
		MatchID: matchID,
		Match: prediction.MatchInfo{
			MatchID: matchID,
			Team1:   roster.Team1,
			Team2:   roster.Team2,
		},
		Ranking:   ranked,
		CreatedAt: s.now(),
	}

	s.persistRanking(ctx, snapshot)

	s.logger.InfoContext(ctx, "ranking computed",
		"match_id", matchID,
		"players", len(roster.Players),
		"ranked", len(ranked),
	)

	return snapshot, nil
}

// storedRanking checks the persistent snapshot store for a ranking still
// inside the freshness window. Store failures are treated as a miss so the
// pipeline recomputes instead of failing the request.
func (s *PredictionService) storedRanking(ctx context.Context, matchID string) (prediction.Snapshot, bool) {
	if s.rankingRepo == nil {
		return prediction.Snapshot{}, false
	}

	snapshot, ok, err := s.rankingRepo.GetRanking(ctx, matchID)
	if err != nil {
		s.logger.WarnContext(ctx, "ranking snapshot lookup failed",
			"match_id", matchID,
			"error", err,
		)
		return prediction.Snapshot{}, false
	}
	if !ok {
		return prediction.Snapshot{}, false
	}
	if s.snapshotTTL > 0 && s.now().Sub(snapshot.CreatedAt) >= s.snapshotTTL {
		return prediction.Snapshot{}, false
	}

	return snapshot, true
}

func (s *PredictionService) persistRanking(ctx context.Context, snapshot prediction.Snapshot) {
	if s.rankingRepo == nil {
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	s.bg.Go(func() {
		saveCtx, cancel := context.WithTimeout(bgCtx, persistTimeout)
		defer cancel()

		if err := s.rankingRepo.SaveRanking(saveCtx, snapshot); err != nil {
			s.logger.WarnContext(saveCtx, "ranking snapshot save failed",
				"match_id", snapshot.MatchID,
				"error", err,
			)
		}
	})
}

// scoreRoster fans the roster out to the scorer on a bounded worker pool.
// A player the scorer cannot handle keeps its slot with a NaN score and is
// filtered out at the ranking step.
func (s *PredictionService) scoreRoster(ctx context.Context, players []player.Player) ([]prediction.Score, error) {
	workerCount := s.scoreWorkers
	if workerCount > len(players) {
		workerCount = len(players)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	defer pool.Release()

	scored := make([]prediction.Score, len(players))

	var workers sync.WaitGroup
	for i, p := range players {
		i, p := i, p
		p.Stats = p.Stats.FillDefaults()

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := prediction.Score{
				PlayerID: p.ID,
				Name:     p.Name,
				Team:     p.Team,
				Role:     p.Role,
				Stats:    p.Stats,
			}

			value, scoreErr := s.scorer.Score(ctx, p)
			if scoreErr != nil {
				s.logger.WarnContext(ctx, "player scoring failed",
					"player", p.Name,
					"error", scoreErr,
				)
				value = math.NaN()
			}
			row.Score = value
			scored[i] = row
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit scoring task: %w", err)
		}
	}
	workers.Wait()

	return scored, nil
}

// GetTeams returns fantasy team suggestions for one match. The ranking is
// obtained through the same cached pipeline as GetRanking, so a warm
// ranking never triggers a second upstream fetch.
func (s *PredictionService) GetTeams(ctx context.Context, input GenerateTeamsInput) ([]fantasy.Team, error) {
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.WinnerTeam = strings.TrimSpace(input.WinnerTeam)

	if input.MatchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.WinnerTeam == "" {
		return nil, fmt.Errorf("%w: winner team is required", ErrInvalidInput)
	}
	if input.MaxTeams == 0 {
		input.MaxTeams = defaultMaxTeams
	}
	if input.MaxTeams < 0 {
		return nil, fmt.Errorf("%w: max teams must be positive", ErrInvalidInput)
	}
	if input.Strategy == "" {
		input.Strategy = fantasy.StrategyTopPairs
	}
	if input.Strategy != fantasy.StrategyTopPairs && input.Strategy != fantasy.StrategyWinnerSplit {
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, input.Strategy)
	}

	ctx, span := startUsecaseSpan(ctx, "PredictionService.GetTeams")
	defer span.End()

	snapshot, err := s.GetRanking(ctx, input.MatchID)
	if err != nil {
		return nil, err
	}

	cacheKey := strings.Join([]string{
		"teams", input.MatchID, input.WinnerTeam,
		strconv.Itoa(input.MaxTeams), string(input.Strategy),
	}, "|")

	value, err := s.teamsCache.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		return s.buildTeams(ctx, input, snapshot)
	})
	if err != nil {
		return nil, s.mapContextError(err)
	}

	teams, ok := value.([]fantasy.Team)
	if !ok {
		return nil, fmt.Errorf("unexpected cached teams type %T", value)
	}

	return teams, nil
}

func (s *PredictionService) buildTeams(ctx context.Context, input GenerateTeamsInput, snapshot prediction.Snapshot) ([]fantasy.Team, error) {
	variant := strings.Join([]string{input.WinnerTeam, strconv.Itoa(input.MaxTeams), string(input.Strategy)}, "|")

	if stored, ok := s.storedTeams(ctx, input.MatchID, variant); ok {
		return stored, nil
	}

	genInput := fantasy.Input{
		Ranked:      snapshot.Ranking,
		WinnerTeam:  input.WinnerTeam,
		Team1:       snapshot.Match.Team1,
		Team2:       snapshot.Match.Team2,
		Team1Roster: rosterNames(snapshot.Ranking, snapshot.Match.Team1),
		Team2Roster: rosterNames(snapshot.Ranking, snapshot.Match.Team2),
		MaxTeams:    input.MaxTeams,
	}

	var teams []fantasy.Team
	var err error
	switch input.Strategy {
	case fantasy.StrategyWinnerSplit:
		teams, err = fantasy.GenerateWinnerSplit(genInput, s.newRand())
	default:
		teams, err = fantasy.Generate(genInput)
	}
	if err != nil {
		if errors.Is(err, fantasy.ErrShortSamplePools) {
			s.logger.InfoContext(ctx, "side pools too small for winner-split sampling",
				"match_id", input.MatchID,
				"winner", input.WinnerTeam,
			)
			return []fantasy.Team{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.persistTeams(ctx, input.MatchID, variant, teams)

	s.logger.InfoContext(ctx, "teams generated",
		"match_id", input.MatchID,
		"strategy", string(input.Strategy),
		"teams", len(teams),
	)

	return teams, nil
}

func (s *PredictionService) storedTeams(ctx context.Context, matchID, variant string) ([]fantasy.Team, bool) {
	if s.teamsRepo == nil {
		return nil, false
	}

	teams, ok, err := s.teamsRepo.GetTeams(ctx, matchID, variant)
	if err != nil {
		s.logger.WarnContext(ctx, "team set lookup failed",
			"match_id", matchID,
			"variant", variant,
			"error", err,
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	return teams, true
}

func (s *PredictionService) persistTeams(ctx context.Context, matchID, variant string, teams []fantasy.Team) {
	if s.teamsRepo == nil || len(teams) == 0 {
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	s.bg.Go(func() {
		saveCtx, cancel := context.WithTimeout(bgCtx, persistTimeout)
		defer cancel()

		if err := s.teamsRepo.SaveTeams(saveCtx, matchID, variant, teams); err != nil {
			s.logger.WarnContext(saveCtx, "team set save failed",
				"match_id", matchID,
				"variant", variant,
				"error", err,
			)
		}
	})
}

// Shutdown waits for in-flight background persistence to drain.
func (s *PredictionService) Shutdown() {
	s.bg.Wait()
}

// mapContextError translates a deadline hit anywhere in the pipeline into
// the timeout sentinel so callers can tell it apart from upstream failures.
func (s *PredictionService) mapContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func rosterNames(ranked prediction.RankedList, team string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range ranked {
		if s.Team == team {
			out[s.Name] = struct{}{}
		}
	}
	return out
}
