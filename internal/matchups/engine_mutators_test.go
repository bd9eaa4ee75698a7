package matchups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/matchups/internal/archetype"
)

// frozenEngine returns an engine over squareTables whose frozen order is the
// winrate-descending order [1 3 2 4], with the state switched to SortByNone.
func frozenEngine(t *testing.T) (*Engine, State) {
	t.Helper()

	e := NewEngine(DefaultOptions())
	state := DefaultState()
	view := e.SetTables(state, squareTables())
	require.Equal(t, []int{1, 3, 2, 4}, view.IDs())

	state, view = e.SetSort(state, SortByNone, Descending)
	require.Equal(t, []int{1, 3, 2, 4}, view.IDs())
	return e, state
}

func TestEngine_NoneModeKeepsOrderUnderWeightEdits(t *testing.T) {
	e, state := frozenEngine(t)

	state, _ = e.SetUseCustomWeights(state, true)
	state, view := e.SetCustomWeight(state, 4, 100)
	assert.Equal(t, []int{1, 3, 2, 4}, view.IDs())

	row, _ := view.Row(1)
	assert.Equal(t, 45.0, row.EffectiveWinRate, "only opponent 4 carries weight")

	_, view = e.SetCustomWeight(state, 2, 500)
	assert.Equal(t, []int{1, 3, 2, 4}, view.IDs())
}

func TestEngine_SetIgnoredFreezesWinrateSort(t *testing.T) {
	e := NewEngine(DefaultOptions())
	state := DefaultState()
	before := e.SetTables(state, squareTables())

	next, view := e.SetIgnored(state, []int{3}, true)
	assert.Equal(t, SortByNone, next.SortBy)
	assert.True(t, next.Ignored.Has(3))
	assert.Equal(t, before.IDs(), view.IDs(), "order is frozen even though winrates moved")

	next, _ = e.SetIgnored(next, []int{3}, false)
	assert.False(t, next.Ignored.Has(3))
}

func TestEngine_SetIgnoredKeepsOtherSorts(t *testing.T) {
	e := NewEngine(DefaultOptions())
	state := DefaultState()
	state.SortBy = SortByPopularity
	e.SetTables(state, squareTables())

	next, _ := e.SetIgnored(state, []int{1}, true)
	assert.Equal(t, SortByPopularity, next.SortBy)
}

func TestEngine_SetCustomWeightFreezesSorts(t *testing.T) {
	tests := []struct {
		name string
		by   SortBy
		want SortBy
	}{
		{"popularity", SortByPopularity, SortByNone},
		{"winrate", SortByWinrate, SortByNone},
		{"class", SortByClass, SortByClass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultOptions())
			state := DefaultState()
			state.SortBy = tt.by
			e.SetTables(state, squareTables())

			next, _ := e.SetCustomWeight(state, 2, 7)
			assert.Equal(t, tt.want, next.SortBy)
			assert.Equal(t, 7.0, next.CustomWeight(2))
		})
	}
}

func TestEngine_SetUseCustomWeightsFreezesPopularityOnly(t *testing.T) {
	tests := []struct {
		name string
		by   SortBy
		want SortBy
	}{
		{"popularity", SortByPopularity, SortByNone},
		{"winrate", SortByWinrate, SortByWinrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultOptions())
			state := DefaultState()
			state.SortBy = tt.by
			e.SetTables(state, squareTables())

			next, _ := e.SetUseCustomWeights(state, true)
			assert.Equal(t, tt.want, next.SortBy)
			assert.True(t, next.UseCustomWeights)
		})
	}
}

func TestEngine_SetFavoriteInNoneMode(t *testing.T) {
	records := append(twoArchetypes[:2:2], archetype.Record{ID: 3, Name: "Charlie Warrior", PlayerClassName: "WARRIOR"})
	tables := buildTables(records, []pair{
		{1, 2, 60, 100}, {2, 1, 40, 100},
		{3, 1, 70, 10},
	}, map[int]float64{1: 10, 2: 8, 3: 6})

	e := NewEngine(DefaultOptions())
	state := DefaultState()
	e.SetTables(state, tables)
	state, view := e.SetSort(state, SortByNone, Descending)
	require.Equal(t, []int{1, 2}, view.IDs())

	state, view = e.SetFavorite(state, 3, true)
	assert.True(t, state.Favorites.Has(3))
	assert.Equal(t, []int{1, 2, 3}, view.IDs(), "new favorite is appended")
	assert.Equal(t, []int{1, 2, 3}, e.FrozenOrder())

	state, view = e.SetFavorite(state, 3, false)
	assert.False(t, state.Favorites.Has(3))
	assert.Equal(t, []int{1, 2}, view.IDs())
	assert.Equal(t, []int{1, 2}, e.FrozenOrder(), "hidden archetype leaves the frozen order")

	// Un-starring a row that stays visible keeps its slot.
	state, _ = e.SetFavorite(state, 1, true)
	_, view = e.SetFavorite(state, 1, false)
	assert.Equal(t, []int{1, 2}, view.IDs())
}

func TestEngine_SetFavoritePinsInLiveSort(t *testing.T) {
	e := NewEngine(DefaultOptions())
	state := DefaultState()
	e.SetTables(state, squareTables())

	_, view := e.SetFavorite(state, 4, true)
	assert.Equal(t, []int{4, 1, 3, 2}, view.IDs())
}

func TestEngine_MutatorsDoNotMutateInput(t *testing.T) {
	e := NewEngine(DefaultOptions())
	state := DefaultState()
	e.SetTables(state, squareTables())

	e.SetFavorite(state, 1, true)
	e.SetIgnored(state, []int{2}, true)
	e.SetCustomWeight(state, 3, 9)
	e.SetUseCustomWeights(state, true)
	e.SetSort(state, SortByClass, Ascending)

	assert.Empty(t, state.Favorites)
	assert.Empty(t, state.Ignored)
	assert.Empty(t, state.CustomWeights)
	assert.False(t, state.UseCustomWeights)
	assert.Equal(t, SortByWinrate, state.SortBy)
	assert.Equal(t, Descending, state.SortDirection)
}

func TestEngine_SetOptionsRecomputes(t *testing.T) {
	e := NewEngine(DefaultOptions())
	state := DefaultState()
	view := e.SetTables(state, squareTables())
	require.Len(t, view.Rows, 4)

	opts := DefaultOptions()
	opts.PopularityCutoff = 10
	view = e.SetOptions(state, opts)
	assert.ElementsMatch(t, []int{1, 3}, view.IDs())
	assert.Equal(t, opts, e.Options())
}

func TestEngine_UniverseWithoutTables(t *testing.T) {
	e := NewEngine(DefaultOptions())
	assert.Empty(t, e.Universe().Archetypes)
	assert.Empty(t, e.View().Rows)

	e.SetTables(DefaultState(), squareTables())
	assert.Len(t, e.Universe().Archetypes, 4)
}

func TestEngine_RestoreFrozenOrderSurvivesMissingTables(t *testing.T) {
	e := NewEngine(DefaultOptions())
	state := DefaultState()
	state.SortBy = SortByNone

	e.RestoreFrozenOrder([]int{4, 9, 2, 1, 3})
	e.SetOptions(state, DefaultOptions())
	assert.Equal(t, []int{4, 9, 2, 1, 3}, e.FrozenOrder(), "no tables yet")

	view := e.SetTables(state, squareTables())
	assert.Equal(t, []int{4, 2, 1, 3}, view.IDs())
	assert.Equal(t, []int{4, 2, 1, 3}, e.FrozenOrder())
}
