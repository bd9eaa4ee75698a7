package matchups

import (
	"github.com/ramonehamilton/matchups/internal/archetype"
)

type pair struct {
	friendly int
	opponent int
	winRate  float64
	games    int
}

// buildTables assembles tables from a catalog, directed pairs and a
// pct_of_total per archetype id.
func buildTables(records []archetype.Record, pairs []pair, popularity map[int]float64) *Tables {
	catalog := archetype.NewCatalog(records)

	matchupTable := MatchupTable{}
	for _, p := range pairs {
		if matchupTable[p.friendly] == nil {
			matchupTable[p.friendly] = map[int]Matchup{}
		}
		matchupTable[p.friendly][p.opponent] = Matchup{WinRate: p.winRate, TotalGames: p.games}
	}

	popularityTable := PopularityTable{}
	for id, pct := range popularity {
		a, ok := catalog.Resolve(id)
		if !ok {
			continue
		}
		popularityTable[PopularityKey{PlayerClass: a.PlayerClass, ArchetypeID: id}] = Popularity{
			ArchetypeID: id,
			PlayerClass: a.PlayerClass,
			PctOfClass:  pct * 5,
			PctOfTotal:  pct,
			WinRate:     50,
			TotalGames:  1000,
		}
	}

	return &Tables{Matchups: matchupTable, Popularity: popularityTable, Catalog: catalog}
}

var twoArchetypes = []archetype.Record{
	{ID: 1, Name: "Alpha Mage", PlayerClassName: "MAGE", URL: "/archetypes/1"},
	{ID: 2, Name: "Beta Rogue", PlayerClassName: "ROGUE", URL: "/archetypes/2"},
}

// scenarioTables is the two-archetype A/B scenario: A beats B 60% over 100 games.
func scenarioTables() *Tables {
	return buildTables(twoArchetypes, []pair{
		{friendly: 1, opponent: 2, winRate: 60, games: 100},
		{friendly: 2, opponent: 1, winRate: 40, games: 100},
	}, map[int]float64{1: 10, 2: 8})
}

var fourArchetypes = []archetype.Record{
	{ID: 1, Name: "Alpha Mage", PlayerClassName: "MAGE"},
	{ID: 2, Name: "Beta Rogue", PlayerClassName: "ROGUE"},
	{ID: 3, Name: "Gamma Warrior", PlayerClassName: "WARRIOR"},
	{ID: 4, Name: "Delta Priest", PlayerClassName: "PRIEST"},
}

// squareTables is a fully populated 4x4 matrix with distinct winrates.
func squareTables() *Tables {
	pairs := []pair{
		{1, 1, 50, 40}, {1, 2, 70, 100}, {1, 3, 55, 200}, {1, 4, 45, 50},
		{2, 1, 30, 100}, {2, 2, 50, 40}, {2, 3, 60, 80}, {2, 4, 52, 60},
		{3, 1, 45, 200}, {3, 2, 40, 80}, {3, 3, 50, 40}, {3, 4, 65, 90},
		{4, 1, 55, 50}, {4, 2, 48, 60}, {4, 3, 35, 90}, {4, 4, 50, 40},
	}
	return buildTables(fourArchetypes, pairs, map[int]float64{1: 12, 2: 9, 3: 15, 4: 4})
}

func ids(rows []ArchetypeViewModel) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func columnIDs(row ArchetypeViewModel) []int {
	out := make([]int, len(row.Matchups))
	for i, c := range row.Matchups {
		out[i] = c.OpponentID
	}
	return out
}
