package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/matchups/internal/display"
	"github.com/ramonehamilton/matchups/internal/export"
	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/snapshot"
)

var (
	snapshotDir   string
	rankSort      string
	rankAscending bool
	rankFavorites []int
	rankIgnored   []int
	rankFormat    string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the ranked matchup table for a snapshot directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		by, err := matchups.ParseSortBy(rankSort)
		if err != nil {
			return err
		}
		direction := matchups.Descending
		if rankAscending {
			direction = matchups.Ascending
		}

		view, state, err := rankSnapshot(snapshotDir, cfg.Engine, by, direction, rankFavorites, rankIgnored)
		if err != nil {
			return err
		}
		if rankFormat == "table" {
			return display.NewRankingDisplayer(cmd.OutOrStdout()).DisplayRanking(view, state)
		}
		format, err := export.ParseFormat(rankFormat)
		if err != nil {
			return err
		}
		return export.WriteRanking(cmd.OutOrStdout(), format, view, state)
	},
}

func init() {
	rankCmd.Flags().StringVar(&snapshotDir, "snapshot", "", "directory holding matchups.json, popularity.json and archetypes.json")
	rankCmd.Flags().StringVar(&rankSort, "sort", string(matchups.SortByWinrate), "sort key: winrate, popularity or class")
	rankCmd.Flags().BoolVar(&rankAscending, "asc", false, "sort ascending")
	rankCmd.Flags().IntSliceVar(&rankFavorites, "favorite", nil, "archetype ids to pin to the top")
	rankCmd.Flags().IntSliceVar(&rankIgnored, "ignore", nil, "opponent ids to leave out of the effective winrate")
	rankCmd.Flags().StringVar(&rankFormat, "format", "table", "output format: table, csv or json")
	_ = rankCmd.MarkFlagRequired("snapshot")
}

// rankSnapshot computes the view model for dir in one pass.
func rankSnapshot(dir string, opts matchups.Options, by matchups.SortBy, direction matchups.SortDirection, favorites, ignored []int) (matchups.ViewModel, matchups.State, error) {
	tables, err := snapshot.LoadTables(dir)
	if err != nil {
		return matchups.ViewModel{}, matchups.State{}, fmt.Errorf("load snapshot: %w", err)
	}

	state := matchups.DefaultState()
	state.SortBy = by
	state.SortDirection = direction
	state.Favorites = matchups.NewIDSet(favorites...)
	state.Ignored = matchups.NewIDSet(ignored...)

	view, _ := matchups.Compute(tables, state, opts, nil)
	return view, state, nil
}
