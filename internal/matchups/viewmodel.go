package matchups

import (
	"encoding/json"
	"math"

	"github.com/ramonehamilton/matchups/internal/archetype"
	"github.com/ramonehamilton/matchups/internal/stats"
)

// MatchupCell is one column of a dense matrix row.
type MatchupCell struct {
	OpponentID          int
	OpponentName        string
	OpponentPlayerClass archetype.CardClass
	WinRate             float64 // NaN when there is no data for the pair
	TotalGames          int
}

// HasData reports whether the pair had a raw matchup record.
func (c MatchupCell) HasData() bool {
	return !math.IsNaN(c.WinRate)
}

// MarshalJSON encodes a missing winrate as null.
func (c MatchupCell) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OpponentID          int                 `json:"opponent_id"`
		OpponentName        string              `json:"opponent_name"`
		OpponentPlayerClass archetype.CardClass `json:"opponent_player_class"`
		WinRate             *float64            `json:"win_rate"`
		TotalGames          int                 `json:"total_games"`
	}{
		OpponentID:          c.OpponentID,
		OpponentName:        c.OpponentName,
		OpponentPlayerClass: c.OpponentPlayerClass,
		WinRate:             stats.Nullable(c.WinRate),
		TotalGames:          c.TotalGames,
	})
}

// ArchetypeViewModel is one row of the ranked matrix.
type ArchetypeViewModel struct {
	ID               int
	Name             string
	PlayerClass      archetype.CardClass
	PopularityClass  float64
	PopularityTotal  float64
	WinRate          float64
	EffectiveWinRate float64 // NaN when the total weight is zero
	Matchups         []MatchupCell
}

// MarshalJSON encodes NaN rates as null.
func (r ArchetypeViewModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID               int                 `json:"id"`
		Name             string              `json:"name"`
		PlayerClass      archetype.CardClass `json:"player_class"`
		PopularityClass  float64             `json:"popularity_class"`
		PopularityTotal  float64             `json:"popularity_total"`
		WinRate          *float64            `json:"win_rate"`
		EffectiveWinRate *float64            `json:"effective_win_rate"`
		Matchups         []MatchupCell       `json:"matchups"`
	}{
		ID:               r.ID,
		Name:             r.Name,
		PlayerClass:      r.PlayerClass,
		PopularityClass:  r.PopularityClass,
		PopularityTotal:  r.PopularityTotal,
		WinRate:          stats.Nullable(r.WinRate),
		EffectiveWinRate: stats.Nullable(r.EffectiveWinRate),
		Matchups:         r.Matchups,
	})
}

// ViewModel is the engine output: rows ranked, and each row's matchups
// aligned column-for-column with Rows.
type ViewModel struct {
	Rows          []ArchetypeViewModel `json:"rows"`
	MaxPopularity float64              `json:"max_popularity"`
}

// IDs returns the row ids in order.
func (v ViewModel) IDs() []int {
	ids := make([]int, len(v.Rows))
	for i, r := range v.Rows {
		ids[i] = r.ID
	}
	return ids
}

// Row returns the row for id.
func (v ViewModel) Row(id int) (ArchetypeViewModel, bool) {
	for _, r := range v.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return ArchetypeViewModel{}, false
}
