package domain

import (
	"fmt"
	"slices"
)

// Entity is an opaque competitor identifier, typically a team name.
type Entity string

// Outcome records that Winner beat Loser in the given Period.
// Period is a non-negative week index.
type Outcome struct {
	Period int    `json:"period"`
	Winner Entity `json:"winner"`
	Loser  Entity `json:"loser"`
}

// OutcomeTable is the ordered collection of outcomes for a season.
// It is treated as immutable once handed to the estimator.
type OutcomeTable []Outcome

// Validate checks that every outcome has a non-negative period and
// non-empty participants.
func (t OutcomeTable) Validate() error {
	for i, o := range t {
		subject := fmt.Sprintf("outcome[%d]", i)
		if o.Period < 0 {
			return NewInputError(subject, fmt.Sprintf("negative period %d", o.Period), nil)
		}
		if o.Winner == "" || o.Loser == "" {
			return NewInputError(subject, "winner and loser must be non-empty", nil)
		}
	}
	return nil
}

// MaxPeriod returns the largest period in the table, or -1 when empty.
func (t OutcomeTable) MaxPeriod() int {
	maxPeriod := -1
	for _, o := range t {
		maxPeriod = max(maxPeriod, o.Period)
	}
	return maxPeriod
}

// ExtractEntities returns the sorted, de-duplicated union of every winner
// and loser in the table.
func ExtractEntities(table OutcomeTable) ([]Entity, error) {
	if len(table) == 0 {
		return nil, NewInputError("outcomes", "no entities to rank", ErrEmptyOutcomeTable)
	}

	seen := make(map[Entity]struct{}, len(table))
	entities := make([]Entity, 0, len(table))
	for _, o := range table {
		for _, e := range [2]Entity{o.Winner, o.Loser} {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			entities = append(entities, e)
		}
	}
	slices.Sort(entities)
	return entities, nil
}
