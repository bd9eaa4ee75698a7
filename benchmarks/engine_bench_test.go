// Package benchmarks measures the recompute pipeline at dashboard sizes.
//
// To run:
//
//	go test -bench=. -benchmem ./benchmarks/...
package benchmarks

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ramonehamilton/matchups/internal/archetype"
	"github.com/ramonehamilton/matchups/internal/matchups"
)

var sizes = []int{25, 100, 250}

var benchClasses = []string{"DRUID", "HUNTER", "MAGE", "PALADIN", "PRIEST", "ROGUE", "SHAMAN", "WARLOCK", "WARRIOR"}

// makeTables builds a full n x n matrix with deterministic winrates.
func makeTables(n int) *matchups.Tables {
	records := make([]archetype.Record, n)
	for i := range records {
		records[i] = archetype.Record{
			ID:              i + 1,
			Name:            fmt.Sprintf("Archetype %03d", i+1),
			PlayerClassName: benchClasses[i%len(benchClasses)],
		}
	}
	catalog := archetype.NewCatalog(records)

	table := make(matchups.MatchupTable, n)
	popularity := make(matchups.PopularityTable, n)
	for i := 1; i <= n; i++ {
		row := make(map[int]matchups.Matchup, n)
		for j := 1; j <= n; j++ {
			row[j] = matchups.Matchup{
				WinRate:    float64(35 + (i*7+j*13)%30),
				TotalGames: 20 + (i*j)%500,
			}
		}
		table[i] = row

		a, _ := catalog.Resolve(i)
		popularity[matchups.PopularityKey{PlayerClass: a.PlayerClass, ArchetypeID: i}] = matchups.Popularity{
			ArchetypeID: i,
			PlayerClass: a.PlayerClass,
			PctOfClass:  float64(i%20 + 1),
			PctOfTotal:  float64(i%10) / 2,
			WinRate:     50,
			TotalGames:  1000,
		}
	}

	return &matchups.Tables{Matchups: table, Popularity: popularity, Catalog: catalog}
}

func BenchmarkCompute(b *testing.B) {
	for _, n := range sizes {
		tables := makeTables(n)
		state := matchups.DefaultState()
		opts := matchups.DefaultOptions()

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				matchups.Compute(tables, state, opts, nil)
			}
		})
	}
}

func BenchmarkCompute_CustomWeights(b *testing.B) {
	for _, n := range sizes {
		tables := makeTables(n)
		state := matchups.DefaultState()
		state.UseCustomWeights = true
		for id := 1; id <= n; id += 3 {
			state.CustomWeights[id] = float64(id % 7)
		}
		state.Ignored = matchups.NewIDSet(1, 2, 3)

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				matchups.Compute(tables, state, matchups.DefaultOptions(), nil)
			}
		})
	}
}

func BenchmarkEngine_ToggleFavoriteFrozen(b *testing.B) {
	tables := makeTables(100)
	e := matchups.NewEngine(matchups.DefaultOptions())
	state := matchups.DefaultState()
	e.SetTables(state, tables)
	state, _ = e.SetSort(state, matchups.SortByNone, matchups.Descending)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state, _ = e.SetFavorite(state, 42, i%2 == 0)
	}
}

func BenchmarkViewModelMarshal(b *testing.B) {
	for _, n := range sizes {
		view, _ := matchups.Compute(makeTables(n), matchups.DefaultState(), matchups.DefaultOptions(), nil)

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := json.Marshal(view); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
