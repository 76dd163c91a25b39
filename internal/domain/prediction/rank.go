package prediction

import "sort"

// Rank orders scored players descending by score, breaking ties by player
// name so repeated runs over identical input produce identical output.
// Entries with a missing or non-finite score are dropped, never fatal;
// the second return value reports how many were dropped so callers can
// log the degradation.
func Rank(scored []Score) (RankedList, int) {
	out := make(RankedList, 0, len(scored))
	for _, s := range scored {
		if !s.Valid() {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})

	return out, len(scored) - len(out)
}
