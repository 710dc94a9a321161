package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/ahrav/go-rankings/internal/domain"
)

// Column headers of the schedule results table.
const (
	ColumnWeek   = "Wk"
	ColumnPoints = "Pts"
)

var (
	winnerColumns = []string{"Winner", "Winner/Tie"}
	loserColumns  = []string{"Loser", "Loser/Tie"}
)

// ErrMalformedTable indicates that the schedule table lacks a required
// column or holds a value that cannot be interpreted.
var ErrMalformedTable = errors.New("malformed schedule table")

// Table is the raw schedule as scraped: a header row and data rows of
// equal width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the first header equal to one of names, or -1.
func (t *Table) Column(names ...string) int {
	for i, h := range t.Headers {
		if slices.Contains(names, h) {
			return i
		}
	}
	return -1
}

// Clean normalizes every cell and strips poll annotations from the team
// columns. It is idempotent.
func (t *Table) Clean() {
	for i, h := range t.Headers {
		t.Headers[i] = CleanCell(h)
	}
	teamCols := []int{t.Column(winnerColumns...), t.Column(loserColumns...)}
	for _, row := range t.Rows {
		for j, cell := range row {
			if slices.Contains(teamCols, j) {
				row[j] = NormalizeTeam(cell)
				continue
			}
			row[j] = CleanCell(cell)
		}
	}
}

// Outcomes converts the table into an OutcomeTable in row order. Rows
// without both teams, and games whose winner has no points yet (not yet
// played), are skipped.
func (t *Table) Outcomes() (domain.OutcomeTable, error) {
	week := t.Column(ColumnWeek)
	winner := t.Column(winnerColumns...)
	loser := t.Column(loserColumns...)
	if week < 0 || winner < 0 || loser < 0 {
		return nil, fmt.Errorf("%w: need columns %q, %q and %q, have %v",
			ErrMalformedTable, ColumnWeek, winnerColumns[0], loserColumns[0], t.Headers)
	}
	points := t.Column(ColumnPoints)

	outcomes := make(domain.OutcomeTable, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedTable, i, len(row), len(t.Headers))
		}

		w, l := NormalizeTeam(row[winner]), NormalizeTeam(row[loser])
		if w == "" || l == "" {
			continue
		}
		if points >= 0 && CleanCell(row[points]) == "" {
			continue
		}

		period, err := strconv.Atoi(CleanCell(row[week]))
		if err != nil || period < 0 {
			return nil, fmt.Errorf("%w: row %d has invalid week %q", ErrMalformedTable, i, row[week])
		}

		outcomes = append(outcomes, domain.Outcome{
			Period: period,
			Winner: domain.Entity(w),
			Loser:  domain.Entity(l),
		})
	}
	return outcomes, nil
}
