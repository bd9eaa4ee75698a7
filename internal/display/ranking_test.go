package display

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/matchups/internal/archetype"
	"github.com/ramonehamilton/matchups/internal/matchups"
)

func TestDisplayRanking(t *testing.T) {
	view := matchups.ViewModel{Rows: []matchups.ArchetypeViewModel{
		{ID: 1, Name: "Alpha Mage", PlayerClass: archetype.CardClassMage, PopularityTotal: 10, WinRate: 55, EffectiveWinRate: 57.5},
		{ID: 2, Name: "Beta Rogue", PlayerClass: archetype.CardClassRogue, PopularityTotal: 8, WinRate: 45, EffectiveWinRate: math.NaN()},
	}}
	state := matchups.DefaultState()
	state.Favorites = matchups.NewIDSet(2)

	var buf bytes.Buffer
	require.NoError(t, NewRankingDisplayer(&buf).DisplayRanking(view, state))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[2], "Alpha Mage")
	assert.Contains(t, lines[2], "57.50% ▲")
	assert.Contains(t, lines[3], "*")
	assert.Contains(t, lines[3], "Beta Rogue")
	assert.Contains(t, lines[3], "-")
	assert.Contains(t, buf.String(), "2 archetypes, sorted by winrate (descending)")
}

func TestDisplayRanking_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRankingDisplayer(&buf).DisplayRanking(matchups.ViewModel{}, matchups.DefaultState()))
	assert.Equal(t, "No archetypes match the current filters.\n", buf.String())
}
