package player

import (
	"fmt"
	"math"
	"strings"
)

// Role represents cricket role categories carried on roster entries.
type Role string

const (
	RoleBatter       Role = "BATTER"
	RoleBowler       Role = "BOWLER"
	RoleAllRounder   Role = "ALL_ROUNDER"
	RoleWicketKeeper Role = "WICKET_KEEPER"
	RoleUnknown      Role = "UNKNOWN"
)

var AllRoles = map[Role]struct{}{
	RoleBatter:       {},
	RoleBowler:       {},
	RoleAllRounder:   {},
	RoleWicketKeeper: {},
	RoleUnknown:      {},
}

// Stats holds the feature vector consumed by the scoring model.
type Stats struct {
	BatAvg        float64
	BatSR         float64
	BowlAvg       float64
	BowlSR        float64
	DeathOversPct float64
}

// DefaultStats returns the fallback feature values used when an upstream
// roster entry is missing one or more stats. One incomplete player must
// never fail the whole batch.
func DefaultStats() Stats {
	return Stats{
		BatAvg:        25.0,
		BatSR:         120.0,
		BowlAvg:       30.0,
		BowlSR:        25.0,
		DeathOversPct: 0.3,
	}
}

// FillDefaults replaces missing or invalid feature values with defaults.
func (s Stats) FillDefaults() Stats {
	defaults := DefaultStats()
	if !validFeature(s.BatAvg) {
		s.BatAvg = defaults.BatAvg
	}
	if !validFeature(s.BatSR) {
		s.BatSR = defaults.BatSR
	}
	if !validFeature(s.BowlAvg) {
		s.BowlAvg = defaults.BowlAvg
	}
	if !validFeature(s.BowlSR) {
		s.BowlSR = defaults.BowlSR
	}
	if !validFeature(s.DeathOversPct) || s.DeathOversPct > 1 {
		s.DeathOversPct = defaults.DeathOversPct
	}
	return s
}

func validFeature(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Player is one roster entry for a match side.
type Player struct {
	ID    string
	Name  string
	Team  string
	Role  Role
	Stats Stats
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if strings.TrimSpace(p.Team) == "" {
		return fmt.Errorf("player team is required")
	}
	if _, ok := AllRoles[p.Role]; !ok {
		return fmt.Errorf("invalid player role: %s", p.Role)
	}
	return nil
}

// NormalizeRole maps free-form provider role strings onto Role values.
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "batter", "batsman", "bat":
		return RoleBatter
	case "bowler", "bowl":
		return RoleBowler
	case "all-rounder", "allrounder", "all rounder", "batting allrounder", "bowling allrounder":
		return RoleAllRounder
	case "wicket-keeper", "wicketkeeper", "wk", "wk-batter", "wicketkeeper batter":
		return RoleWicketKeeper
	default:
		return RoleUnknown
	}
}
