package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/matchups/internal/charts"
	"github.com/ramonehamilton/matchups/internal/matchups"
)

var (
	heatmapSnapshot string
	heatmapOut      string
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Write an HTML matchup heatmap for a snapshot directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _, err := rankSnapshot(heatmapSnapshot, cfg.Engine, matchups.SortByWinrate, matchups.Descending, nil, nil)
		if err != nil {
			return err
		}
		if err := charts.WriteMatchupHeatmap(heatmapOut, view, charts.DefaultChartConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote heatmap of %d archetypes to %s\n", len(view.Rows), heatmapOut)
		return nil
	},
}

func init() {
	heatmapCmd.Flags().StringVar(&heatmapSnapshot, "snapshot", "", "directory holding the raw tables")
	heatmapCmd.Flags().StringVar(&heatmapOut, "out", "matchups.html", "output HTML file")
	_ = heatmapCmd.MarkFlagRequired("snapshot")
}
