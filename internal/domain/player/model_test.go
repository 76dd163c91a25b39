package player

import (
	"math"
	"testing"
)

func TestFillDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Stats
		want Stats
	}{
		{
			name: "all missing",
			in:   Stats{},
			want: DefaultStats(),
		},
		{
			name: "keeps valid values",
			in:   Stats{BatAvg: 55, BatSR: 140, BowlAvg: 22, BowlSR: 18, DeathOversPct: 0.6},
			want: Stats{BatAvg: 55, BatSR: 140, BowlAvg: 22, BowlSR: 18, DeathOversPct: 0.6},
		},
		{
			name: "replaces negative and NaN",
			in:   Stats{BatAvg: -5, BatSR: math.NaN(), BowlAvg: 22, BowlSR: 18, DeathOversPct: 0.6},
			want: Stats{BatAvg: 25, BatSR: 120, BowlAvg: 22, BowlSR: 18, DeathOversPct: 0.6},
		},
		{
			name: "death overs share above one is invalid",
			in:   Stats{BatAvg: 55, BatSR: 140, BowlAvg: 22, BowlSR: 18, DeathOversPct: 1.5},
			want: Stats{BatAvg: 55, BatSR: 140, BowlAvg: 22, BowlSR: 18, DeathOversPct: 0.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.FillDefaults(); got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"Batsman", RoleBatter},
		{"bat", RoleBatter},
		{"BOWLER", RoleBowler},
		{"All-Rounder", RoleAllRounder},
		{"batting allrounder", RoleAllRounder},
		{"WK-Batter", RoleWicketKeeper},
		{"wicketkeeper", RoleWicketKeeper},
		{"", RoleUnknown},
		{"coach", RoleUnknown},
	}

	for _, tt := range tests {
		if got := NormalizeRole(tt.raw); got != tt.want {
			t.Fatalf("NormalizeRole(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestPlayerValidate(t *testing.T) {
	valid := Player{ID: "p1", Name: "A", Team: "Alpha", Role: RoleBatter}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Player)
	}{
		{"missing id", func(p *Player) { p.ID = " " }},
		{"missing name", func(p *Player) { p.Name = "" }},
		{"missing team", func(p *Player) { p.Team = "" }},
		{"bad role", func(p *Player) { p.Role = "UMPIRE" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
