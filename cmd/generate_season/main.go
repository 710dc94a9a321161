package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ahrav/go-rankings/infrastructure/schedule"
	"github.com/ahrav/go-rankings/internal/testutils"
)

func main() {
	var (
		year    = flag.Int("year", time.Now().Year(), "Season year to write")
		teams   = flag.Int("teams", 134, "Number of teams")
		weeks   = flag.Int("weeks", 14, "Number of weeks")
		seed    = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
		dataDir = flag.String("data-dir", "data", "Schedule cache directory")
	)
	flag.Parse()

	season := testutils.GenerateSeason(*year, *teams, *weeks, *seed)

	cache := schedule.NewFileCache(*dataDir)
	if err := cache.Save(season.Year, season.ScheduleTable()); err != nil {
		log.Fatalf("Failed to save season: %v", err)
	}

	stats := testutils.ComputeSeasonStatistics(season)

	fmt.Printf("Generated synthetic season:\n")
	fmt.Printf("- Path: %s\n", cache.Path(season.Year))
	fmt.Printf("- Seed: %d\n", *seed)
	fmt.Printf("- Teams: %d\n", stats.Teams)
	fmt.Printf("- Games: %d over %d weeks\n", stats.Games, stats.Weeks)
	fmt.Printf("- Upsets: %d\n", stats.Upsets)
	fmt.Printf("- Average margin: %.2f\n", stats.AvgMargin)
	fmt.Printf("\nStrongest teams:\n")
	for i, t := range season.Teams[:min(5, len(season.Teams))] {
		fmt.Printf("%2d. %s (%.2f)\n", i+1, t.Team, t.Strength)
	}
	fmt.Printf("\nRank it offline with: rankings -local -data-dir %s -year %d\n", *dataDir, season.Year)
}
