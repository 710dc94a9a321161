package domain

import (
	"fmt"
)

// RankAssignment maps each entity of one trial to a distinct rank in
// [1, N], where rank 1 is best. The only mutation it allows is exchanging
// two existing ranks, so it stays a permutation for its whole lifetime.
//
// A RankAssignment is owned by a single trial and is not safe for
// concurrent use.
type RankAssignment struct {
	entities []Entity
	index    map[Entity]int
	ranks    []int
}

// NewRankAssignment pairs entities[i] with ranks[i]. It returns an
// InputError if the lengths differ, an entity repeats, or ranks is not a
// permutation of [1, len(entities)]. Both slices are copied.
func NewRankAssignment(entities []Entity, ranks []int) (*RankAssignment, error) {
	if len(entities) != len(ranks) {
		return nil, NewInputError("rank assignment",
			fmt.Sprintf("%d entities but %d ranks", len(entities), len(ranks)), ErrBrokenBijection)
	}

	index := make(map[Entity]int, len(entities))
	for i, e := range entities {
		if _, dup := index[e]; dup {
			return nil, NewInputError(string(e), "duplicate entity in rank assignment", nil)
		}
		index[e] = i
	}

	a := &RankAssignment{
		entities: append([]Entity(nil), entities...),
		index:    index,
		ranks:    append([]int(nil), ranks...),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// newRankAssignmentTrusted builds an assignment without copying or
// validating. Callers must guarantee the bijection.
func newRankAssignmentTrusted(entities []Entity, index map[Entity]int, ranks []int) *RankAssignment {
	return &RankAssignment{entities: entities, index: index, ranks: ranks}
}

// Len returns the number of ranked entities.
func (a *RankAssignment) Len() int { return len(a.ranks) }

// Rank returns the current rank of e.
func (a *RankAssignment) Rank(e Entity) (int, bool) {
	i, ok := a.index[e]
	if !ok {
		return 0, false
	}
	return a.ranks[i], true
}

// Has reports whether e takes part in the assignment.
func (a *RankAssignment) Has(e Entity) bool {
	_, ok := a.index[e]
	return ok
}

// Swap exchanges the ranks of x and y.
func (a *RankAssignment) Swap(x, y Entity) error {
	i, ok := a.index[x]
	if !ok {
		return NewInputError(string(x), "not present in rank assignment", ErrUnknownEntity)
	}
	j, ok := a.index[y]
	if !ok {
		return NewInputError(string(y), "not present in rank assignment", ErrUnknownEntity)
	}
	a.ranks[i], a.ranks[j] = a.ranks[j], a.ranks[i]
	return nil
}

// Entities returns the entities in assignment order.
func (a *RankAssignment) Entities() []Entity { return append([]Entity(nil), a.entities...) }

// Ranks returns a copy of the ranks, aligned with Entities.
func (a *RankAssignment) Ranks() []int { return append([]int(nil), a.ranks...) }

// AddTo adds every entity's rank to the matching slot of sums.
// sums must be aligned with Entities.
func (a *RankAssignment) AddTo(sums []int64) {
	for i, r := range a.ranks {
		sums[i] += int64(r)
	}
}

// Validate verifies that the ranks form a permutation of [1, N].
func (a *RankAssignment) Validate() error {
	n := len(a.ranks)
	seen := make([]bool, n+1)
	for i, r := range a.ranks {
		if r < 1 || r > n {
			return NewInputError(string(a.entities[i]),
				fmt.Sprintf("rank %d outside [1, %d]", r, n), ErrBrokenBijection)
		}
		if seen[r] {
			return NewInputError(string(a.entities[i]),
				fmt.Sprintf("rank %d assigned twice", r), ErrBrokenBijection)
		}
		seen[r] = true
	}
	return nil
}

// Roster is an immutable, indexed entity list shared by every trial of one
// computation. It lets trials build assignments without re-validating
// entity uniqueness.
type Roster struct {
	entities []Entity
	index    map[Entity]int
}

// NewRoster indexes entities. Entities must be unique.
func NewRoster(entities []Entity) (*Roster, error) {
	index := make(map[Entity]int, len(entities))
	for i, e := range entities {
		if _, dup := index[e]; dup {
			return nil, NewInputError(string(e), "duplicate entity in roster", nil)
		}
		index[e] = i
	}
	return &Roster{entities: append([]Entity(nil), entities...), index: index}, nil
}

// Len returns the roster size.
func (r *Roster) Len() int { return len(r.entities) }

// Entities returns a copy of the roster in order.
func (r *Roster) Entities() []Entity { return append([]Entity(nil), r.entities...) }

// Assign builds a RankAssignment from a permutation of [1, N] aligned with
// the roster. ranks is taken over by the assignment.
func (r *Roster) Assign(ranks []int) (*RankAssignment, error) {
	if len(ranks) != len(r.entities) {
		return nil, NewInputError("rank assignment",
			fmt.Sprintf("%d entities but %d ranks", len(r.entities), len(ranks)), ErrBrokenBijection)
	}
	a := newRankAssignmentTrusted(r.entities, r.index, ranks)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
