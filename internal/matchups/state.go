package matchups

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SortBy selects the primary ranking key.
type SortBy string

const (
	SortByClass      SortBy = "class"
	SortByPopularity SortBy = "popularity"
	SortByWinrate    SortBy = "winrate"
	// SortByNone keeps the frozen manual order.
	SortByNone SortBy = "none"
)

// ParseSortBy validates a sort key.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case SortByClass, SortByPopularity, SortByWinrate, SortByNone:
		return SortBy(s), nil
	}
	return "", fmt.Errorf("invalid sort key %q", s)
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// ParseSortDirection validates a sort direction.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case Ascending, Descending:
		return SortDirection(s), nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

// Sign returns +1 for ascending and -1 for descending.
func (d SortDirection) Sign() int {
	if d == Descending {
		return -1
	}
	return 1
}

// IDSet is a set of archetype ids. It encodes as a sorted JSON array.
type IDSet map[int]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone copies the set.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ids.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// State is the user's customization of the matchup view. It is owned by the
// caller; engine mutators take a State and return an updated copy.
type State struct {
	Favorites        IDSet           `json:"favorites"`
	Ignored          IDSet           `json:"ignored"`
	CustomWeights    map[int]float64 `json:"custom_weights"`
	UseCustomWeights bool            `json:"use_custom_weights"`
	SortBy           SortBy          `json:"sort_by"`
	SortDirection    SortDirection   `json:"sort_direction"`
}

// DefaultState sorts by winrate, descending, with nothing customized.
func DefaultState() State {
	return State{
		Favorites:     IDSet{},
		Ignored:       IDSet{},
		CustomWeights: map[int]float64{},
		SortBy:        SortByWinrate,
		SortDirection: Descending,
	}
}

// Clone deep-copies the state so mutators never alias the caller's maps.
func (s State) Clone() State {
	c := s
	c.Favorites = s.Favorites.Clone()
	c.Ignored = s.Ignored.Clone()
	c.CustomWeights = make(map[int]float64, len(s.CustomWeights))
	for id, w := range s.CustomWeights {
		c.CustomWeights[id] = w
	}
	if c.SortBy == "" {
		c.SortBy = SortByWinrate
	}
	if c.SortDirection == "" {
		c.SortDirection = Descending
	}
	return c
}

// CustomWeight returns the custom weight of id, 0 when unset.
func (s State) CustomWeight(id int) float64 {
	return s.CustomWeights[id]
}

// Options are the recompute parameters that are not user customization.
type Options struct {
	// EligibilityThreshold is the minimum games a matchup needs to count as usable.
	EligibilityThreshold int `json:"eligibility_threshold" toml:"eligibility_threshold"`

	// PopularityCutoff hides non-favorite archetypes whose pct_of_total is at
	// or below it.
	PopularityCutoff float64 `json:"popularity_cutoff" toml:"popularity_cutoff"`

	// SimpleMode hides "Other" buckets and disables favorite pinning.
	SimpleMode bool `json:"simple_mode" toml:"simple_mode"`
}

// DefaultOptions returns the default recompute parameters.
func DefaultOptions() Options {
	return Options{
		EligibilityThreshold: 30,
		PopularityCutoff:     0,
		SimpleMode:           false,
	}
}
