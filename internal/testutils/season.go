// Package testutils provides synthetic season generators for tests,
// benchmarks and offline runs. The generated data is not a real schedule.
package testutils

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/ahrav/go-rankings/infrastructure/schedule"
	"github.com/ahrav/go-rankings/internal/domain"
)

// TeamStrength is a team's hidden strength; higher is stronger.
type TeamStrength struct {
	Team     domain.Entity `json:"team"`
	Strength float64       `json:"strength"`
}

// Game is a played game with its score.
type Game struct {
	domain.Outcome
	WinnerPoints int `json:"winner_points"`
	LoserPoints  int `json:"loser_points"`
}

// Season is a synthetic season. Teams is ordered strongest first, so it
// is the ground truth a ranking can be compared against.
type Season struct {
	Year  int            `json:"year"`
	Teams []TeamStrength `json:"teams"`
	Games []Game         `json:"games"`
}

// GenerateSeason plays weeks rounds among teams teams. Each week the teams
// are paired at random and the winner of each game is drawn with a
// logistic probability on the strength difference. An odd team out sits
// the week. The seed makes generation reproducible.
func GenerateSeason(year, teams, weeks int, seed uint64) *Season {
	rng := rand.New(rand.NewPCG(seed, uint64(year)))

	season := &Season{Year: year, Teams: make([]TeamStrength, teams)}
	for i := range teams {
		season.Teams[i] = TeamStrength{
			Team:     domain.Entity(fmt.Sprintf("Team %03d", i+1)),
			Strength: rng.NormFloat64() * 1.5,
		}
	}
	slices.SortStableFunc(season.Teams, func(a, b TeamStrength) int {
		switch {
		case a.Strength > b.Strength:
			return -1
		case a.Strength < b.Strength:
			return 1
		default:
			return 0
		}
	})

	order := make([]int, teams)
	for i := range order {
		order[i] = i
	}
	for week := 1; week <= weeks; week++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for k := 0; k+1 < len(order); k += 2 {
			season.Games = append(season.Games, playGame(rng, week, season.Teams[order[k]], season.Teams[order[k+1]]))
		}
	}
	return season
}

func playGame(rng *rand.Rand, week int, a, b TeamStrength) Game {
	pA := 1 / (1 + math.Exp(b.Strength-a.Strength))
	winner, loser := a, b
	if rng.Float64() >= pA {
		winner, loser = b, a
	}
	wp := 10 + rng.IntN(40)
	return Game{
		Outcome:      domain.Outcome{Period: week, Winner: winner.Team, Loser: loser.Team},
		WinnerPoints: wp,
		LoserPoints:  rng.IntN(wp),
	}
}

// Outcomes returns the season's outcome table in game order.
func (s *Season) Outcomes() domain.OutcomeTable {
	table := make(domain.OutcomeTable, len(s.Games))
	for i, g := range s.Games {
		table[i] = g.Outcome
	}
	return table
}

// TrueRank returns the 1-based strength rank of team, or 0 if unknown.
func (s *Season) TrueRank(team domain.Entity) int {
	for i, t := range s.Teams {
		if t.Team == team {
			return i + 1
		}
	}
	return 0
}

// ScheduleTable renders the season in the layout of the schedule page so
// it can be cached and read back through the regular source.
func (s *Season) ScheduleTable() *schedule.Table {
	kickoff := time.Date(s.Year, time.August, 30, 0, 0, 0, 0, time.UTC)
	table := &schedule.Table{
		Headers: []string{schedule.ColumnWeek, "Date", "Winner", schedule.ColumnPoints, "Loser", schedule.ColumnPoints},
		Rows:    make([][]string, 0, len(s.Games)),
	}
	for _, g := range s.Games {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(g.Period),
			kickoff.AddDate(0, 0, 7*(g.Period-1)).Format("Jan 2, 2006"),
			string(g.Winner),
			strconv.Itoa(g.WinnerPoints),
			string(g.Loser),
			strconv.Itoa(g.LoserPoints),
		})
	}
	return table
}

// SeasonStatistics summarizes a generated season.
type SeasonStatistics struct {
	Teams int
	Games int
	Weeks int
	// Upsets counts games won by the weaker team.
	Upsets int
	// AvgMargin is the mean winning margin in points.
	AvgMargin float64
}

// ComputeSeasonStatistics analyzes a season and returns summary statistics.
func ComputeSeasonStatistics(s *Season) *SeasonStatistics {
	stats := &SeasonStatistics{Teams: len(s.Teams), Games: len(s.Games)}

	margin := 0
	for _, g := range s.Games {
		stats.Weeks = max(stats.Weeks, g.Period)
		if s.TrueRank(g.Winner) > s.TrueRank(g.Loser) {
			stats.Upsets++
		}
		margin += g.WinnerPoints - g.LoserPoints
	}
	if stats.Games > 0 {
		stats.AvgMargin = float64(margin) / float64(stats.Games)
	}
	return stats
}
