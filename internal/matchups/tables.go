// Package matchups turns a sparse per-pair winrate table into a dense,
// ranked, user-customizable archetype matchup matrix.
package matchups

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/ramonehamilton/matchups/internal/archetype"
)

// Matchup is the observed result of a friendly archetype against an opponent.
type Matchup struct {
	WinRate    float64 `json:"win_rate"`    // percent, 0-100
	TotalGames int     `json:"total_games"` // sample size
}

// MatchupTable is keyed by friendly id, then opponent id. Absent pairs mean
// zero games.
type MatchupTable map[int]map[int]Matchup

// Get returns the matchup of friendly against opponent.
func (t MatchupTable) Get(friendly, opponent int) (Matchup, bool) {
	row, ok := t[friendly]
	if !ok {
		return Matchup{}, false
	}
	m, ok := row[opponent]
	return m, ok
}

// HasEntries reports whether id has at least one matchup as the friendly side.
func (t MatchupTable) HasEntries(id int) bool {
	return len(t[id]) > 0
}

// ArchetypeIDs returns every id appearing as a friendly or opponent key.
// Friendly ids are walked in ascending order and, for each, its opponents in
// ascending order; the result keeps first-appearance order of that walk.
func (t MatchupTable) ArchetypeIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, friendly := range sortedKeys(t) {
		add(friendly)
		for _, opponent := range sortedKeys(t[friendly]) {
			add(opponent)
		}
	}
	return ids
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Popularity is an archetype's share of games within its class and overall.
type Popularity struct {
	ArchetypeID int                 `json:"archetype_id"`
	PlayerClass archetype.CardClass `json:"player_class"`
	PctOfClass  float64             `json:"pct_of_class"`
	PctOfTotal  float64             `json:"pct_of_total"`
	WinRate     float64             `json:"win_rate"`
	TotalGames  int                 `json:"total_games"`
}

// PopularityKey identifies a popularity record.
type PopularityKey struct {
	PlayerClass archetype.CardClass
	ArchetypeID int
}

// PopularityTable is keyed by (player class, archetype id).
type PopularityTable map[PopularityKey]Popularity

// Lookup returns the popularity record of a.
func (t PopularityTable) Lookup(a archetype.Archetype) (Popularity, bool) {
	p, ok := t[PopularityKey{PlayerClass: a.PlayerClass, ArchetypeID: a.ID}]
	return p, ok
}

// Tables bundles the raw inputs of one recompute.
type Tables struct {
	Matchups   MatchupTable
	Popularity PopularityTable
	Catalog    *archetype.Catalog
}

// Valid reports whether every table needed for a recompute is present.
func (t *Tables) Valid() bool {
	return t != nil && t.Matchups != nil && t.Popularity != nil && t.Catalog != nil
}

// WireMatchup is one cell of the matchup endpoint payload.
type WireMatchup struct {
	WinRate    float64 `json:"win_rate"`
	TotalGames int     `json:"total_games"`
}

// WirePopularity is one entry of the popularity endpoint payload.
type WirePopularity struct {
	ArchetypeID int     `json:"archetype_id"`
	PctOfClass  float64 `json:"pct_of_class"`
	PctOfTotal  float64 `json:"pct_of_total"`
	WinRate     float64 `json:"win_rate"`
	TotalGames  int     `json:"total_games"`
}

// NewMatchupTable converts the string-keyed wire shape. Keys that are not
// integers are skipped.
func NewMatchupTable(raw map[string]map[string]WireMatchup) MatchupTable {
	table := make(MatchupTable, len(raw))
	for friendlyKey, opponents := range raw {
		friendly, err := strconv.Atoi(friendlyKey)
		if err != nil {
			continue
		}
		row := make(map[int]Matchup, len(opponents))
		for opponentKey, m := range opponents {
			opponent, err := strconv.Atoi(opponentKey)
			if err != nil {
				continue
			}
			row[opponent] = Matchup{WinRate: m.WinRate, TotalGames: m.TotalGames}
		}
		table[friendly] = row
	}
	return table
}

// NewPopularityTable converts the class-keyed wire shape. Unknown class names
// are skipped.
func NewPopularityTable(raw map[string][]WirePopularity) PopularityTable {
	table := make(PopularityTable)
	for className, entries := range raw {
		class, err := archetype.ParseCardClass(className)
		if err != nil {
			continue
		}
		for _, e := range entries {
			key := PopularityKey{PlayerClass: class, ArchetypeID: e.ArchetypeID}
			table[key] = Popularity{
				ArchetypeID: e.ArchetypeID,
				PlayerClass: class,
				PctOfClass:  e.PctOfClass,
				PctOfTotal:  e.PctOfTotal,
				WinRate:     e.WinRate,
				TotalGames:  e.TotalGames,
			}
		}
	}
	return table
}

// DecodeMatchupTable parses the matchup endpoint data.
func DecodeMatchupTable(data []byte) (MatchupTable, error) {
	var raw map[string]map[string]WireMatchup
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode matchup table: %w", err)
	}
	return NewMatchupTable(raw), nil
}

// DecodePopularityTable parses the popularity endpoint data.
func DecodePopularityTable(data []byte) (PopularityTable, error) {
	var raw map[string][]WirePopularity
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode popularity table: %w", err)
	}
	return NewPopularityTable(raw), nil
}

// DecodeTables parses all three payloads into one Tables value.
func DecodeTables(matchupData, popularityData, catalogData []byte) (*Tables, error) {
	matchupTable, err := DecodeMatchupTable(matchupData)
	if err != nil {
		return nil, err
	}
	popularityTable, err := DecodePopularityTable(popularityData)
	if err != nil {
		return nil, err
	}
	catalog, err := archetype.DecodeCatalog(catalogData)
	if err != nil {
		return nil, err
	}
	return &Tables{
		Matchups:   matchupTable,
		Popularity: popularityTable,
		Catalog:    catalog,
	}, nil
}

// RawTables holds the three undecoded payloads as served by the stats
// backend, in the shape they are cached and written to snapshot files.
type RawTables struct {
	Matchups   []byte
	Popularity []byte
	Archetypes []byte
}

// Decode parses the payloads into Tables.
func (r RawTables) Decode() (*Tables, error) {
	return DecodeTables(r.Matchups, r.Popularity, r.Archetypes)
}
