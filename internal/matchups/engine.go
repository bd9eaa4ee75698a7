package matchups

import (
	"slices"

	"github.com/ramonehamilton/matchups/internal/archetype"
)

// Compute runs one full recompute: resolve the universe, filter visible
// archetypes, aggregate effective winrates and rank. It never mutates its
// inputs. Invalid tables yield an empty view model and an empty order.
func Compute(tables *Tables, state State, opts Options, frozen []int) (ViewModel, []int) {
	if !tables.Valid() {
		return ViewModel{Rows: []ArchetypeViewModel{}}, []int{}
	}

	universe := archetype.Resolve(tables.Matchups, tables.Catalog)
	visible := Visible(universe, tables.Matchups, tables.Popularity, state.Favorites, opts)
	rows, maxPopularity := Aggregate(visible, tables.Matchups, tables.Popularity, state)
	ranked, order := Rank(rows, state, opts, frozen)

	return ViewModel{Rows: ranked, MaxPopularity: maxPopularity}, order
}

// Engine owns the frozen order carried across recomputes. It is not safe for
// concurrent use; callers serialize access.
type Engine struct {
	opts   Options
	tables *Tables
	frozen []int
	view   ViewModel
}

// NewEngine creates an engine with no tables loaded.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:   opts,
		frozen: []int{},
		view:   ViewModel{Rows: []ArchetypeViewModel{}},
	}
}

// Options returns the current recompute options.
func (e *Engine) Options() Options {
	return e.opts
}

// SetOptions replaces the options and recomputes.
func (e *Engine) SetOptions(state State, opts Options) ViewModel {
	e.opts = opts
	return e.Recompute(state)
}

// SetTables replaces the raw tables and recomputes.
func (e *Engine) SetTables(state State, tables *Tables) ViewModel {
	e.tables = tables
	return e.Recompute(state)
}

// Tables returns the raw tables of the last recompute.
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Recompute rebuilds the view model from scratch and updates the frozen order.
// Without valid tables the frozen order is kept for the next load.
func (e *Engine) Recompute(state State) ViewModel {
	view, order := Compute(e.tables, state, e.opts, e.frozen)
	e.view = view
	if e.tables.Valid() {
		e.frozen = order
	}
	return e.view
}

// View returns the last computed view model.
func (e *Engine) View() ViewModel {
	return e.view
}

// FrozenOrder returns a copy of the row order kept for SortByNone.
func (e *Engine) FrozenOrder() []int {
	return slices.Clone(e.frozen)
}

// RestoreFrozenOrder seeds the order used by SortByNone, e.g. from persisted
// settings. Ids that are no longer visible are pruned on the next recompute.
func (e *Engine) RestoreFrozenOrder(ids []int) {
	e.frozen = slices.Clone(ids)
	if e.frozen == nil {
		e.frozen = []int{}
	}
}

// Universe resolves the archetypes referenced by the current tables.
func (e *Engine) Universe() archetype.Universe {
	if !e.tables.Valid() {
		return archetype.Universe{IDs: map[int]bool{}}
	}
	return archetype.Resolve(e.tables.Matchups, e.tables.Catalog)
}

// SetFavorite stars or un-stars id. In SortByNone the frozen order is patched
// in place so the table does not jump: a new favorite is appended, and an
// archetype that is no longer visible once un-starred is removed.
func (e *Engine) SetFavorite(state State, id int, favorite bool) (State, ViewModel) {
	next := state.Clone()
	if favorite {
		next.Favorites[id] = struct{}{}
	} else {
		delete(next.Favorites, id)
	}

	if next.SortBy == SortByNone {
		switch {
		case favorite && !slices.Contains(e.frozen, id):
			e.frozen = append(e.frozen, id)
		case !favorite && !e.visibleWithout(id, next):
			e.frozen = slices.DeleteFunc(e.frozen, func(v int) bool { return v == id })
		}
	}

	return next, e.Recompute(next)
}

// visibleWithout reports whether id is still visible under state.
func (e *Engine) visibleWithout(id int, state State) bool {
	if !e.tables.Valid() {
		return false
	}
	a, ok := e.tables.Catalog.Resolve(id)
	if !ok {
		return false
	}
	return isVisible(a, e.tables.Matchups, e.tables.Popularity, state.Favorites.Has(id), e.opts)
}

// SetIgnored adds ids to or removes them from the ignored opponents. Ignoring
// changes every row's effective winrate, so a live winrate sort is frozen.
func (e *Engine) SetIgnored(state State, ids []int, ignore bool) (State, ViewModel) {
	next := state.Clone()
	for _, id := range ids {
		if ignore {
			next.Ignored[id] = struct{}{}
		} else {
			delete(next.Ignored, id)
		}
	}

	if next.SortBy == SortByWinrate {
		next.SortBy = SortByNone
	}

	return next, e.Recompute(next)
}

// SetCustomWeight sets the custom weight of id and freezes popularity or
// winrate sorts.
func (e *Engine) SetCustomWeight(state State, id int, weight float64) (State, ViewModel) {
	next := state.Clone()
	next.CustomWeights[id] = weight

	if next.SortBy == SortByPopularity || next.SortBy == SortByWinrate {
		next.SortBy = SortByNone
	}

	return next, e.Recompute(next)
}

// SetUseCustomWeights toggles custom weighting and freezes a popularity sort.
func (e *Engine) SetUseCustomWeights(state State, enabled bool) (State, ViewModel) {
	next := state.Clone()
	next.UseCustomWeights = enabled

	if next.SortBy == SortByPopularity {
		next.SortBy = SortByNone
	}

	return next, e.Recompute(next)
}

// SetSort selects the sort key and direction. Switching to SortByNone freezes
// the order just computed.
func (e *Engine) SetSort(state State, by SortBy, direction SortDirection) (State, ViewModel) {
	next := state.Clone()
	next.SortBy = by
	next.SortDirection = direction
	return next, e.Recompute(next)
}
