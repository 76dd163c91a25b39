package cricketdata

// matchInfoEnvelope is the provider's match info response shape.
type matchInfoEnvelope struct {
	Status string           `json:"status"`
	Data   matchInfoPayload `json:"data"`
}

type matchInfoPayload struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Teams   []string        `json:"teams"`
	Players []playerPayload `json:"players"`
}

type playerPayload struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Team  string       `json:"team"`
	Role  string       `json:"role"`
	Stats statsPayload `json:"stats"`
}

// matchesEnvelope is the provider's upcoming-schedule response shape.
type matchesEnvelope struct {
	Status string                `json:"status"`
	Data   []matchSummaryPayload `json:"data"`
}

type matchSummaryPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Teams       []string `json:"teams"`
	Venue       string   `json:"venue"`
	DateTimeGMT string   `json:"dateTimeGMT"`
}

// statsPayload uses pointers so a missing stat is distinguishable from a
// zero; absent values fall back to the scoring defaults downstream.
type statsPayload struct {
	BattingAvg        *float64 `json:"batting_avg"`
	BattingStrikeRate *float64 `json:"batting_strike_rate"`
	BowlingAvg        *float64 `json:"bowling_avg"`
	BowlingStrikeRate *float64 `json:"bowling_strike_rate"`
	DeathOversPct     *float64 `json:"death_overs_pct"`
}
