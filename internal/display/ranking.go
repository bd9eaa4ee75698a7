// Package display renders the ranked matchup table for terminals.
package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/stats"
)

// RankingDisplayer prints a view model as an aligned table.
type RankingDisplayer struct {
	w io.Writer
}

// NewRankingDisplayer creates a displayer writing to w.
func NewRankingDisplayer(w io.Writer) *RankingDisplayer {
	return &RankingDisplayer{w: w}
}

// DisplayRanking prints one line per row: rank, favorite marker, name,
// class, popularity share, raw and effective winrate, and the tendency
// arrow of the effective winrate against 50%.
func (d *RankingDisplayer) DisplayRanking(view matchups.ViewModel, state matchups.State) error {
	if len(view.Rows) == 0 {
		_, err := fmt.Fprintln(d.w, "No archetypes match the current filters.")
		return err
	}

	tw := tabwriter.NewWriter(d.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\t\tArchetype\tClass\tPopularity\tWinrate\tEffective\t")
	fmt.Fprintln(tw, "-\t\t---------\t-----\t----------\t-------\t---------\t")

	for i, row := range view.Rows {
		star := ""
		if state.Favorites.Has(row.ID) {
			star = "*"
		}
		arrow := ""
		if !math.IsNaN(row.EffectiveWinRate) {
			arrow = string(stats.TendencyOf(50, row.EffectiveWinRate, 1).Arrow)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f%%\t%s\t%s %s\t\n",
			i+1,
			star,
			row.Name,
			row.PlayerClass.DisplayName(),
			stats.Round2(row.PopularityTotal),
			formatRate(row.WinRate),
			formatRate(row.EffectiveWinRate),
			arrow,
		)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write ranking: %w", err)
	}

	_, err := fmt.Fprintf(d.w, "\n%d archetypes, sorted by %s (%s)\n",
		len(view.Rows), state.SortBy, strings.ToLower(string(state.SortDirection)))
	return err
}

func formatRate(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", stats.Round2(v))
}
