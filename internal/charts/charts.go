// Package charts renders the matchup table as an interactive HTML heatmap.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/stats"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string // Chart title
	Subtitle string // Chart subtitle
	Width    string // Chart width (e.g., "1200px")
	Height   string // Chart height (e.g., "900px")
	Theme    string // Chart theme
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Archetype Matchups",
		Width:  "1200px",
		Height: "900px",
		Theme:  "light",
	}
}

// HeatmapColors are the negative, neutral and positive reference colors.
var HeatmapColors = []string{
	stats.NegativeColor.String(),
	stats.NeutralColor.String(),
	stats.PositiveColor.String(),
}

// heatmapData lays view out on a square grid: rows on the y axis, the same
// archetypes as opponents on the x axis. Cells without data are omitted.
func heatmapData(view matchups.ViewModel) (labels []string, data []opts.HeatMapData) {
	labels = make([]string, len(view.Rows))
	column := make(map[int]int, len(view.Rows))
	for i, row := range view.Rows {
		labels[i] = row.Name
		column[row.ID] = i
	}

	for y, row := range view.Rows {
		for _, cell := range row.Matchups {
			x, ok := column[cell.OpponentID]
			if !ok || !cell.HasData() {
				continue
			}
			data = append(data, opts.HeatMapData{
				Name:  fmt.Sprintf("%s vs %s (%d games)", row.Name, cell.OpponentName, cell.TotalGames),
				Value: [3]interface{}{x, y, stats.Round2(cell.WinRate)},
			})
		}
	}
	return labels, data
}

// RenderMatchupHeatmap writes view as a standalone HTML heatmap to w.
func RenderMatchupHeatmap(w io.Writer, view matchups.ViewModel, config ChartConfig) error {
	labels, data := heatmapData(view)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Name:      "Opponent",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Name:      "Archetype",
			Data:      labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			Text:       []string{"Win", "Loss"},
			InRange:    &opts.VisualMapInRange{Color: HeatmapColors},
		}),
	)

	hm.SetXAxis(labels).AddSeries("Win rate", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// WriteMatchupHeatmap renders view into the HTML file at path.
func WriteMatchupHeatmap(path string, view matchups.ViewModel, config ChartConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := RenderMatchupHeatmap(f, view, config); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
