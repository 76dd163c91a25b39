package postgres

import "time"

type predictionSnapshotTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	MatchID   string     `db:"match_id"`
	Team1     string     `db:"team1"`
	Team2     string     `db:"team2"`
	Ranking   []byte     `db:"ranking"`
	CreatedAt int64      `db:"created_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type predictionSnapshotInsertModel struct {
	PublicID  string `db:"public_id"`
	MatchID   string `db:"match_id"`
	Team1     string `db:"team1"`
	Team2     string `db:"team2"`
	Ranking   []byte `db:"ranking"`
	CreatedAt int64  `db:"created_at"`
}

// scoreRow is the JSONB shape of one ranked entry.
type scoreRow struct {
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	Team          string  `json:"team"`
	Role          string  `json:"role"`
	BatAvg        float64 `json:"bat_avg"`
	BatSR         float64 `json:"bat_sr"`
	BowlAvg       float64 `json:"bowl_avg"`
	BowlSR        float64 `json:"bowl_sr"`
	DeathOversPct float64 `json:"death_overs_pct"`
	Score         float64 `json:"score"`
}

type teamSetTableModel struct {
	ID        int64      `db:"id"`
	MatchID   string     `db:"match_id"`
	Variant   string     `db:"variant"`
	Teams     []byte     `db:"teams"`
	CreatedAt int64      `db:"created_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type teamSetInsertModel struct {
	MatchID   string `db:"match_id"`
	Variant   string `db:"variant"`
	Teams     []byte `db:"teams"`
	CreatedAt int64  `db:"created_at"`
}

// teamRow is the JSONB shape of one generated team.
type teamRow struct {
	Captain     string   `json:"captain"`
	ViceCaptain string   `json:"vice_captain"`
	Roster      []string `json:"roster"`
}
