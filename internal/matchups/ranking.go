package matchups

import (
	"cmp"
	"math"
	"sort"
	"strings"
)

// Rank orders rows and returns them together with the new frozen order.
//
// With SortByNone the previous frozen order is kept: stale ids are pruned and
// rows missing from it are appended in input order. Otherwise rows are sorted
// by favorite pin (unless simple mode), the primary key times the direction,
// then name ascending. Every row's matchups are re-sliced so columns follow
// the resulting row order.
func Rank(rows []ArchetypeViewModel, state State, opts Options, frozen []int) ([]ArchetypeViewModel, []int) {
	ranked := make([]ArchetypeViewModel, len(rows))
	copy(ranked, rows)

	if state.SortBy == SortByNone {
		ranked = applyFrozenOrder(ranked, frozen)
	} else {
		sort.SliceStable(ranked, func(i, j int) bool {
			return compareRows(ranked[i], ranked[j], state, opts) < 0
		})
	}

	order := make([]int, len(ranked))
	for i, r := range ranked {
		order[i] = r.ID
	}

	for i := range ranked {
		ranked[i].Matchups = alignColumns(ranked[i].Matchups, order)
	}

	return ranked, order
}

func applyFrozenOrder(rows []ArchetypeViewModel, frozen []int) []ArchetypeViewModel {
	byID := make(map[int]ArchetypeViewModel, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	ordered := make([]ArchetypeViewModel, 0, len(rows))
	placed := make(map[int]bool, len(rows))
	for _, id := range frozen {
		r, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		ordered = append(ordered, r)
		placed[id] = true
	}
	for _, r := range rows {
		if !placed[r.ID] {
			ordered = append(ordered, r)
			placed[r.ID] = true
		}
	}
	return ordered
}

// compareRows returns <0 when a sorts before b.
func compareRows(a, b ArchetypeViewModel, state State, opts Options) int {
	if !opts.SimpleMode {
		favA, favB := state.Favorites.Has(a.ID), state.Favorites.Has(b.ID)
		if favA != favB {
			if favA {
				return -1
			}
			return 1
		}
	}

	direction := state.SortDirection.Sign()

	var primary int
	switch state.SortBy {
	case SortByPopularity:
		wa := popularityWeight(a.ID, a.PopularityTotal, state)
		wb := popularityWeight(b.ID, b.PopularityTotal, state)
		primary = cmp.Compare(wa, wb) * direction
	case SortByWinrate:
		primary = compareRates(a.EffectiveWinRate, b.EffectiveWinRate, direction)
	default:
		primary = strings.Compare(a.PlayerClass.String(), b.PlayerClass.String()) * direction
	}
	if primary != 0 {
		return primary
	}

	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareRates orders NaN ("no data") after every number in both directions.
func compareRates(a, b float64, direction int) int {
	nanA, nanB := math.IsNaN(a), math.IsNaN(b)
	switch {
	case nanA && nanB:
		return 0
	case nanA:
		return 1
	case nanB:
		return -1
	}
	return cmp.Compare(a, b) * direction
}

func alignColumns(cells []MatchupCell, order []int) []MatchupCell {
	byOpponent := make(map[int]MatchupCell, len(cells))
	for _, c := range cells {
		byOpponent[c.OpponentID] = c
	}

	aligned := make([]MatchupCell, 0, len(order))
	for _, id := range order {
		if c, ok := byOpponent[id]; ok {
			aligned = append(aligned, c)
		}
	}
	return aligned
}
