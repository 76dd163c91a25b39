package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/glgenie/gl-genie/internal/domain/fantasy"
	"github.com/glgenie/gl-genie/internal/domain/player"
	"github.com/glgenie/gl-genie/internal/domain/prediction"
	qb "github.com/glgenie/gl-genie/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// GetRanking returns the newest stored snapshot for a match. Freshness is
// the caller's concern; the repository only reports what exists.
func (r *PredictionRepository) GetRanking(ctx context.Context, matchID string) (prediction.Snapshot, bool, error) {
	query, args, err := qb.Select("*").
		From("prediction_snapshots").
		Where(
			qb.Eq("match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return prediction.Snapshot{}, false, fmt.Errorf("build get ranking query: %w", err)
	}

	var row predictionSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Snapshot{}, false, nil
		}
		return prediction.Snapshot{}, false, fmt.Errorf("get ranking snapshot: %w", err)
	}

	var rows []scoreRow
	if err := sonic.Unmarshal(row.Ranking, &rows); err != nil {
		return prediction.Snapshot{}, false, fmt.Errorf("decode ranking payload: %w", err)
	}

	ranking := make(prediction.RankedList, 0, len(rows))
	for _, s := range rows {
		ranking = append(ranking, prediction.Score{
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Team:     s.Team,
			Role:     player.Role(s.Role),
			Stats: player.Stats{
				BatAvg:        s.BatAvg,
				BatSR:         s.BatSR,
				BowlAvg:       s.BowlAvg,
				BowlSR:        s.BowlSR,
				DeathOversPct: s.DeathOversPct,
			},
			Score: s.Score,
		})
	}

	return prediction.Snapshot{
		ID:      row.PublicID,
		MatchID: row.MatchID,
		Match: prediction.MatchInfo{
			MatchID: row.MatchID,
			Team1:   row.Team1,
			Team2:   row.Team2,
		},
		Ranking:   ranking,
		CreatedAt: unixToTime(row.CreatedAt),
	}, true, nil
}

func (r *PredictionRepository) SaveRanking(ctx context.Context, snapshot prediction.Snapshot) error {
	rows := make([]scoreRow, 0, len(snapshot.Ranking))
	for _, s := range snapshot.Ranking {
		rows = append(rows, scoreRow{
			PlayerID:      s.PlayerID,
			Name:          s.Name,
			Team:          s.Team,
			Role:          string(s.Role),
			BatAvg:        s.Stats.BatAvg,
			BatSR:         s.Stats.BatSR,
			BowlAvg:       s.Stats.BowlAvg,
			BowlSR:        s.Stats.BowlSR,
			DeathOversPct: s.Stats.DeathOversPct,
			Score:         s.Score,
		})
	}
	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode ranking payload: %w", err)
	}

	insertModel := predictionSnapshotInsertModel{
		PublicID:  snapshot.ID,
		MatchID:   snapshot.MatchID,
		Team1:     snapshot.Match.Team1,
		Team2:     snapshot.Match.Team2,
		Ranking:   payload,
		CreatedAt: timeToUnix(snapshot.CreatedAt),
	}
	query, args, err := qb.InsertModel("prediction_snapshots", insertModel, "")
	if err != nil {
		return fmt.Errorf("build save ranking query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save ranking snapshot: %w", err)
	}
	return nil
}

type TeamSetRepository struct {
	db *sqlx.DB
}

func NewTeamSetRepository(db *sqlx.DB) *TeamSetRepository {
	return &TeamSetRepository{db: db}
}

func (r *TeamSetRepository) GetTeams(ctx context.Context, matchID, variant string) ([]fantasy.Team, bool, error) {
	query, args, err := qb.Select("*").
		From("team_sets").
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("variant", variant),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get teams query: %w", err)
	}

	var row teamSetTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get team set: %w", err)
	}

	var rows []teamRow
	if err := sonic.Unmarshal(row.Teams, &rows); err != nil {
		return nil, false, fmt.Errorf("decode team set payload: %w", err)
	}

	teams := make([]fantasy.Team, 0, len(rows))
	for _, t := range rows {
		teams = append(teams, fantasy.Team{
			Captain:     t.Captain,
			ViceCaptain: t.ViceCaptain,
			Roster:      t.Roster,
		})
	}
	return teams, true, nil
}

func (r *TeamSetRepository) SaveTeams(ctx context.Context, matchID, variant string, teams []fantasy.Team) error {
	rows := make([]teamRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, teamRow{
			Captain:     t.Captain,
			ViceCaptain: t.ViceCaptain,
			Roster:      t.Roster,
		})
	}
	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode team set payload: %w", err)
	}

	insertModel := teamSetInsertModel{
		MatchID:   matchID,
		Variant:   variant,
		Teams:     payload,
		CreatedAt: timeToUnix(time.Now().UTC()),
	}
	query, args, err := qb.InsertModel("team_sets", insertModel, `ON CONFLICT (match_id, variant) WHERE deleted_at IS NULL
DO UPDATE SET
    teams = EXCLUDED.teams,
    created_at = EXCLUDED.created_at`)
	if err != nil {
		return fmt.Errorf("build save teams query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save team set: %w", err)
	}
	return nil
}
