package matchups

import "github.com/ramonehamilton/matchups/internal/archetype"

// Visible returns the archetypes shown on both axes of the matrix, in
// universe order.
//
// An archetype with matchup entries needs at least one opponent with a
// positive id and TotalGames >= EligibilityThreshold. "Other" opponents never
// make another archetype eligible, while "Other" friendlies can still be
// eligible rows. Favorites bypass both the eligibility and popularity checks;
// ignored opponents do not affect visibility.
func Visible(universe archetype.Universe, matchups MatchupTable, popularity PopularityTable, favorites IDSet, opts Options) []archetype.Archetype {
	visible := make([]archetype.Archetype, 0, len(universe.Archetypes))
	for _, a := range universe.Archetypes {
		if isVisible(a, matchups, popularity, favorites.Has(a.ID), opts) {
			visible = append(visible, a)
		}
	}
	return visible
}

func isVisible(a archetype.Archetype, matchups MatchupTable, popularity PopularityTable, favorite bool, opts Options) bool {
	if matchups.HasEntries(a.ID) && !favorite && !hasEligibleMatchup(matchups[a.ID], opts.EligibilityThreshold) {
		return false
	}

	if opts.SimpleMode && a.IsOther() {
		return false
	}

	if favorite {
		return true
	}

	p, ok := popularity.Lookup(a)
	return ok && p.PctOfTotal > opts.PopularityCutoff
}

func hasEligibleMatchup(row map[int]Matchup, threshold int) bool {
	for opponent, m := range row {
		if opponent > 0 && m.TotalGames >= threshold {
			return true
		}
	}
	return false
}
