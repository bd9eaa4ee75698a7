package statsapi

import (
	"encoding/json"
	"net/url"
	"time"
)

// Query selects the slice of games the backend aggregates over.
type Query struct {
	GameType  string
	RankRange string
	TimeRange string
	Region    string
}

// Values encodes the query as the backend's URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.GameType != "" {
		v.Set("GameType", q.GameType)
	}
	if q.RankRange != "" {
		v.Set("RankRange", q.RankRange)
	}
	if q.TimeRange != "" {
		v.Set("TimeRange", q.TimeRange)
	}
	if q.Region != "" {
		v.Set("Region", q.Region)
	}
	return v
}

// Key identifies the query for caching; equal queries produce equal keys.
func (q Query) Key() string {
	return q.Values().Encode()
}

// seriesEnvelope is the analytics response wrapper around the table data.
type seriesEnvelope struct {
	Series struct {
		Data json.RawMessage `json:"data"`
	} `json:"series"`
}

// ClientStats tracks API client statistics.
type ClientStats struct {
	TotalRequests     int
	FailedRequests    int
	CachedResponses   int
	SharedResponses   int // callers served by an in-flight request
	LastRequestTime   time.Time
	LastSuccessTime   time.Time
	LastFailureTime   time.Time
	ConsecutiveErrors int
	AverageLatency    time.Duration
}

// Error types.
const (
	ErrRateLimited   = "rate_limited"
	ErrUnavailable   = "unavailable"
	ErrInvalidParams = "invalid_params"
	ErrParseError    = "parse_error"
)

// APIError represents an error from the stats backend.
type APIError struct {
	Type       string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an *APIError of the given type.
func IsType(err error, errType string) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Type == errType
}
