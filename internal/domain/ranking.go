package domain

// Standing is one row of a FinalRanking.
type Standing struct {
	// Position is the 1-based place in the ranking.
	Position int `json:"position"`

	// Entity is the ranked competitor.
	Entity Entity `json:"entity"`

	// Score is the entity's mean rank across all trials; lower is better.
	Score float64 `json:"score"`
}

// FinalRanking is the ordered output of one computation. It is produced
// once and must be treated as read-only.
type FinalRanking []Standing

// Top returns at most n leading standings. A non-positive n returns the
// whole ranking.
func (r FinalRanking) Top(n int) FinalRanking {
	if n <= 0 || n >= len(r) {
		return r
	}
	return r[:n]
}

// Lookup returns the standing of e.
func (r FinalRanking) Lookup(e Entity) (Standing, bool) {
	for _, s := range r {
		if s.Entity == e {
			return s, true
		}
	}
	return Standing{}, false
}
