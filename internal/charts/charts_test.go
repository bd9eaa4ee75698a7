package charts

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/matchups/internal/matchups"
)

func sampleView() matchups.ViewModel {
	return matchups.ViewModel{
		MaxPopularity: 10,
		Rows: []matchups.ArchetypeViewModel{
			{
				ID: 1, Name: "Alpha Mage", EffectiveWinRate: 60,
				Matchups: []matchups.MatchupCell{
					{OpponentID: 1, OpponentName: "Alpha Mage", WinRate: math.NaN()},
					{OpponentID: 2, OpponentName: "Beta Rogue", WinRate: 60.004, TotalGames: 100},
				},
			},
			{
				ID: 2, Name: "Beta Rogue", EffectiveWinRate: 40,
				Matchups: []matchups.MatchupCell{
					{OpponentID: 1, OpponentName: "Alpha Mage", WinRate: 40, TotalGames: 100},
					{OpponentID: 2, OpponentName: "Beta Rogue", WinRate: math.NaN()},
				},
			},
		},
	}
}

func TestHeatmapData_OmitsEmptyCells(t *testing.T) {
	labels, data := heatmapData(sampleView())

	assert.Equal(t, []string{"Alpha Mage", "Beta Rogue"}, labels)
	require.Len(t, data, 2)
	assert.Equal(t, opts.HeatMapData{
		Name:  "Alpha Mage vs Beta Rogue (100 games)",
		Value: [3]interface{}{1, 0, 60.0},
	}, data[0])
	assert.Equal(t, [3]interface{}{0, 1, 40.0}, data[1].Value)
}

func TestRenderMatchupHeatmap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMatchupHeatmap(&buf, sampleView(), DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "Archetype Matchups")
	assert.Contains(t, html, "Beta Rogue")
	assert.Contains(t, html, "heatmap")
}

func TestWriteMatchupHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "heatmap.html")
	require.NoError(t, WriteMatchupHeatmap(path, sampleView(), DefaultChartConfig()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
