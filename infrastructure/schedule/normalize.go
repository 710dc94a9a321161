package schedule

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// pollRank matches the "(12)" poll annotation prefixed to ranked teams.
var pollRank = regexp.MustCompile(`\(\d+\)`)

// CleanCell folds compatibility characters (non-breaking spaces among
// them) with NFKC and collapses runs of whitespace.
func CleanCell(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// NormalizeTeam cleans a team name and strips poll annotations, so that
// "(3) Ohio State" and "Ohio State" name the same entity.
func NormalizeTeam(s string) string {
	return CleanCell(pollRank.ReplaceAllString(norm.NFKC.String(s), " "))
}
