package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/glgenie/gl-genie/internal/domain/player"
	"github.com/glgenie/gl-genie/internal/infrastructure/repository/memory"
	"github.com/glgenie/gl-genie/internal/infrastructure/scoring"
	"github.com/glgenie/gl-genie/internal/platform/cache"
	idgen "github.com/glgenie/gl-genie/internal/platform/id"
	"github.com/glgenie/gl-genie/internal/usecase"
)

type stubRosterProvider struct {
	roster usecase.Roster
	err    error
}

func (s stubRosterProvider) FetchMatchRoster(context.Context, string) (usecase.Roster, error) {
	return s.roster, s.err
}

type stubMatchLister struct {
	matches []usecase.UpcomingMatch
	err     error
}

func (s stubMatchLister) FetchUpcomingMatches(context.Context) ([]usecase.UpcomingMatch, error) {
	return s.matches, s.err
}

func testRoster() usecase.Roster {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	players := make([]player.Player, 0, len(names))
	for i, name := range names {
		team := "Alpha"
		if i >= 6 {
			team = "Beta"
		}
		players = append(players, player.Player{
			ID:    fmt.Sprintf("p-%s", name),
			Name:  name,
			Team:  team,
			Role:  player.RoleBatter,
			Stats: player.Stats{BatAvg: float64(50 - i), BatSR: 130},
		})
	}
	return usecase.Roster{MatchID: "m1", Team1: "Alpha", Team2: "Beta", Players: players}
}

func newTestRouter(t *testing.T, provider usecase.RosterProvider) http.Handler {
	return newTestRouterWithMatches(t, provider, stubMatchLister{})
}

func newTestRouterWithMatches(t *testing.T, provider usecase.RosterProvider, lister usecase.MatchLister) http.Handler {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	service := usecase.NewPredictionService(
		provider,
		lister,
		scoring.NewBaselineScorer(),
		memory.NewPredictionRepository(),
		memory.NewTeamSetRepository(),
		cache.NewStore(time.Minute),
		cache.NewStore(time.Minute),
		idgen.NewRandomGenerator(),
		logger,
		4,
		time.Minute,
	)
	t.Cleanup(service.Shutdown)

	return NewRouter(NewHandler(service, logger), logger, []string{"*"})
}

func TestGetRankingEndpoint(t *testing.T) {
	router := newTestRouter(t, stubRosterProvider{roster: testRoster()})

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/m1/ranking", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data snapshotDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Data.MatchID != "m1" {
		t.Fatalf("unexpected match id %q", body.Data.MatchID)
	}
	if len(body.Data.Ranking) != 11 {
		t.Fatalf("expected 11 ranked players, got %d", len(body.Data.Ranking))
	}
	if body.Data.Ranking[0].Name != "A" {
		t.Fatalf("expected A ranked first, got %s", body.Data.Ranking[0].Name)
	}
}

func TestListMatchesEndpoint(t *testing.T) {
	lister := stubMatchLister{
		matches: []usecase.UpcomingMatch{
			{
				MatchID:  "m1",
				Name:     "Alpha vs Beta",
				Team1:    "Alpha",
				Team2:    "Beta",
				Venue:    "Eden Gardens",
				StartsAt: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC),
			},
			{MatchID: "m2", Name: "Gamma vs Delta", Team1: "Gamma", Team2: "Delta"},
		},
	}
	router := newTestRouterWithMatches(t, stubRosterProvider{roster: testRoster()}, lister)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data listMatchesDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Data.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(body.Data.Matches))
	}
	first := body.Data.Matches[0]
	if first.MatchID != "m1" || first.StartsAt != "2026-09-01T14:30:00Z" {
		t.Fatalf("unexpected first match: %+v", first)
	}
	if second := body.Data.Matches[1]; second.StartsAt != "" {
		t.Fatalf("expected empty starts_at for undated match, got %q", second.StartsAt)
	}
}

func TestListMatchesEndpointDependencyDown(t *testing.T) {
	lister := stubMatchLister{
		err: fmt.Errorf("%w: schedule endpoint down", usecase.ErrDependencyUnavailable),
	}
	router := newTestRouterWithMatches(t, stubRosterProvider{roster: testRoster()}, lister)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestGetRankingEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, stubRosterProvider{
		err: fmt.Errorf("%w: match unknown has no fixture", usecase.ErrNotFound),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/unknown/ranking", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestGenerateTeamsEndpoint(t *testing.T) {
	router := newTestRouter(t, stubRosterProvider{roster: testRoster()})

	payload := `{"winner_team": "Alpha", "max_teams": 3}`
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/m1/teams", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data generateTeamsDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Data.Teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(body.Data.Teams))
	}
	first := body.Data.Teams[0]
	if first.Captain != "A" || first.ViceCaptain != "B" {
		t.Fatalf("unexpected first pairing (%s, %s)", first.Captain, first.ViceCaptain)
	}
	if len(first.Roster) != 11 {
		t.Fatalf("expected 11 roster slots, got %d", len(first.Roster))
	}
}

func TestGenerateTeamsEndpointRejectsBadStrategy(t *testing.T) {
	router := newTestRouter(t, stubRosterProvider{roster: testRoster()})

	payload := `{"winner_team": "Alpha", "strategy": "coin_flip"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/m1/teams", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGenerateTeamsEndpointRequiresWinner(t *testing.T) {
	router := newTestRouter(t, stubRosterProvider{roster: testRoster()})

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/m1/teams", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	router := newTestRouter(t, stubRosterProvider{roster: testRoster()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
