package fantasy

import (
	"fmt"
	"sort"
	"strings"
)

// RosterSize is the fixed number of players on a fantasy team.
const RosterSize = 11

// Team is an immutable fantasy team value. Two teams with the same roster
// and the same captaincy pairing are the same team; generation must never
// emit both.
type Team struct {
	Captain     string
	ViceCaptain string
	Roster      []string
}

func (t Team) Validate() error {
	if len(t.Roster) != RosterSize {
		return fmt.Errorf("roster must contain exactly %d players, got %d", RosterSize, len(t.Roster))
	}
	seen := make(map[string]struct{}, len(t.Roster))
	for _, name := range t.Roster {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("roster contains an empty player name")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate player in roster: %s", name)
		}
		seen[name] = struct{}{}
	}
	if t.Captain == t.ViceCaptain {
		return fmt.Errorf("captain and vice-captain must be different players")
	}
	if _, ok := seen[t.Captain]; !ok {
		return fmt.Errorf("captain %s is not in the roster", t.Captain)
	}
	if _, ok := seen[t.ViceCaptain]; !ok {
		return fmt.Errorf("vice-captain %s is not in the roster", t.ViceCaptain)
	}
	return nil
}

// Key returns a canonical identity for duplicate detection: sorted roster
// plus the ordered captaincy pairing.
func (t Team) Key() string {
	names := make([]string, len(t.Roster))
	copy(names, t.Roster)
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(t.Captain)
	b.WriteString("|")
	b.WriteString(t.ViceCaptain)
	for _, name := range names {
		b.WriteString("|")
		b.WriteString(name)
	}
	return b.String()
}
