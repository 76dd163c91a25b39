package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/glgenie/gl-genie/internal/domain/fantasy"
	"github.com/glgenie/gl-genie/internal/domain/prediction"
	"github.com/glgenie/gl-genie/internal/usecase"
)

type Handler struct {
	predictionService *usecase.PredictionService
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(predictionService *usecase.PredictionService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		predictionService: predictionService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	matches, err := h.predictionService.ListUpcomingMatches(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]upcomingMatchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, upcomingMatchToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, listMatchesDTO{Matches: items})
}

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRanking")
	defer span.End()

	matchID := r.PathValue("matchID")
	snapshot, err := h.predictionService.GetRanking(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get ranking failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) GenerateTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateTeams")
	defer span.End()

	matchID := r.PathValue("matchID")

	var req generateTeamsRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.predictionService.GetTeams(ctx, usecase.GenerateTeamsInput{
		MatchID:    matchID,
		WinnerTeam: req.WinnerTeam,
		MaxTeams:   req.MaxTeams,
		Strategy:   fantasy.Strategy(req.Strategy),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "generate teams failed", "match_id", matchID, "winner", req.WinnerTeam, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, team := range teams {
		items = append(items, teamToDTO(team))
	}

	writeSuccess(ctx, w, http.StatusOK, generateTeamsDTO{
		MatchID: matchID,
		Teams:   items,
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type generateTeamsRequest struct {
	WinnerTeam string `json:"winner_team" validate:"required"`
	MaxTeams   int    `json:"max_teams" validate:"omitempty,min=1,max=100"`
	Strategy   string `json:"strategy" validate:"omitempty,oneof=top_pairs winner_split"`
}

type scoreDTO struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Role     string  `json:"role"`
	Score    float64 `json:"score"`
}

type snapshotDTO struct {
	MatchID   string     `json:"match_id"`
	Team1     string     `json:"team1"`
	Team2     string     `json:"team2"`
	Ranking   []scoreDTO `json:"ranking"`
	CreatedAt string     `json:"created_at"`
}

type teamDTO struct {
	Captain     string   `json:"captain"`
	ViceCaptain string   `json:"vice_captain"`
	Roster      []string `json:"roster"`
}

type generateTeamsDTO struct {
	MatchID string    `json:"match_id"`
	Teams   []teamDTO `json:"teams"`
}

type upcomingMatchDTO struct {
	MatchID  string `json:"match_id"`
	Name     string `json:"name"`
	Team1    string `json:"team1"`
	Team2    string `json:"team2"`
	Venue    string `json:"venue"`
	StartsAt string `json:"starts_at"`
}

type listMatchesDTO struct {
	Matches []upcomingMatchDTO `json:"matches"`
}

func upcomingMatchToDTO(m usecase.UpcomingMatch) upcomingMatchDTO {
	dto := upcomingMatchDTO{
		MatchID: m.MatchID,
		Name:    m.Name,
		Team1:   m.Team1,
		Team2:   m.Team2,
		Venue:   m.Venue,
	}
	if !m.StartsAt.IsZero() {
		dto.StartsAt = m.StartsAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func snapshotToDTO(snapshot prediction.Snapshot) snapshotDTO {
	ranking := make([]scoreDTO, 0, len(snapshot.Ranking))
	for _, s := range snapshot.Ranking {
		ranking = append(ranking, scoreDTO{
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Team:     s.Team,
			Role:     string(s.Role),
			Score:    s.Score,
		})
	}

	return snapshotDTO{
		MatchID:   snapshot.MatchID,
		Team1:     snapshot.Match.Team1,
		Team2:     snapshot.Match.Team2,
		Ranking:   ranking,
		CreatedAt: snapshot.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func teamToDTO(team fantasy.Team) teamDTO {
	return teamDTO{
		Captain:     team.Captain,
		ViceCaptain: team.ViceCaptain,
		Roster:      team.Roster,
	}
}
