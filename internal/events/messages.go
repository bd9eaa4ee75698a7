package events

// Event types.
const (
	// MatchupsUpdated is sent after every recompute of the dashboard.
	MatchupsUpdated = "matchups:updated"

	// TablesReloaded is sent when new raw tables replaced the old ones.
	TablesReloaded = "tables:reloaded"

	// RefreshFailed is sent when fetching raw tables failed.
	RefreshFailed = "tables:refresh_failed"
)

// MatchupsUpdatedEvent is the payload for matchups:updated events.
type MatchupsUpdatedEvent struct {
	Reason        string `json:"reason"` // Mutator that caused the recompute (e.g., "favorite")
	Rows          int    `json:"rows"`   // Visible rows after the recompute
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`
}

// TablesReloadedEvent is the payload for tables:reloaded events.
type TablesReloadedEvent struct {
	Source     string `json:"source"`     // Where the tables came from
	Archetypes int    `json:"archetypes"` // Archetypes in the resolved universe
	FromCache  bool   `json:"from_cache"` // Served from the persisted snapshot cache
}

// RefreshFailedEvent is the payload for tables:refresh_failed events.
type RefreshFailedEvent struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
