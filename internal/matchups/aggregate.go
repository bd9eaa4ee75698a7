package matchups

import (
	"math"

	"github.com/ramonehamilton/matchups/internal/archetype"
	"github.com/ramonehamilton/matchups/internal/stats"
)

// Aggregate builds one dense row per visible archetype with its effective
// winrate, and the maximum popularity (or custom weight) over retained rows.
//
// The weighted mean covers every non-ignored visible opponent with a raw
// matchup, mirrors included. Weights are the matchup's TotalGames, or the
// opponent's custom weight when state.UseCustomWeights is set. Rows whose
// archetype has no popularity record or pct_of_total <= 0 are dropped.
func Aggregate(visible []archetype.Archetype, matchups MatchupTable, popularity PopularityTable, state State) ([]ArchetypeViewModel, float64) {
	rows := make([]ArchetypeViewModel, 0, len(visible))
	maxPopularity := 0.0

	for _, friendly := range visible {
		p, ok := popularity.Lookup(friendly)
		if !ok || p.PctOfTotal <= 0 {
			continue
		}

		cells := make([]MatchupCell, 0, len(visible))
		var weightedSum, totalWeight float64

		for _, opponent := range visible {
			cell := MatchupCell{
				OpponentID:          opponent.ID,
				OpponentName:        opponent.Name,
				OpponentPlayerClass: opponent.PlayerClass,
				WinRate:             math.NaN(),
			}

			m, ok := matchups.Get(friendly.ID, opponent.ID)
			if ok {
				cell.WinRate = m.WinRate
				cell.TotalGames = m.TotalGames

				if !state.Ignored.Has(opponent.ID) {
					weight := float64(m.TotalGames)
					if state.UseCustomWeights {
						weight = state.CustomWeight(opponent.ID)
					}
					weightedSum += m.WinRate * weight
					totalWeight += weight
				}
			}

			cells = append(cells, cell)
		}

		rows = append(rows, ArchetypeViewModel{
			ID:               friendly.ID,
			Name:             friendly.Name,
			PlayerClass:      friendly.PlayerClass,
			PopularityClass:  p.PctOfClass,
			PopularityTotal:  p.PctOfTotal,
			WinRate:          p.WinRate,
			EffectiveWinRate: stats.WeightedMean(weightedSum, totalWeight),
			Matchups:         cells,
		})

		maxPopularity = math.Max(maxPopularity, popularityWeight(friendly.ID, p.PctOfTotal, state))
	}

	return rows, maxPopularity
}

// popularityWeight is the value ranked and scaled under "popularity".
func popularityWeight(id int, pctOfTotal float64, state State) float64 {
	if state.UseCustomWeights {
		return state.CustomWeight(id)
	}
	return pctOfTotal
}
