// Package statsapi fetches the raw matchup, popularity and archetype tables
// from the stats backend.
package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/matchups/internal/matchups"
)

const (
	// DefaultBaseURL is the public stats backend.
	DefaultBaseURL = "https://hsreplay.net"

	DefaultTimeout  = 30 * time.Second
	DefaultCacheTTL = 10 * time.Minute

	// Backoff settings
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 60 * time.Second
	BackoffFactor  = 2.0

	matchupsPath   = "/analytics/query/archetype_matchups/"
	popularityPath = "/analytics/query/archetype_popularity_distribution_stats/"
	archetypesPath = "/api/v1/archetypes/"
)

// DefaultRateLimit allows one request per second.
var DefaultRateLimit = rate.Every(1 * time.Second)

// Client provides rate-limited, cached access to the stats backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	group      singleflight.Group
	logger     zerolog.Logger

	cache    map[string]cacheEntry
	cacheTTL time.Duration
	cacheMu  sync.RWMutex

	stats   ClientStats
	statsMu sync.RWMutex

	backoff         time.Duration
	lastFailureTime time.Time
	backoffMu       sync.Mutex

	now func() time.Time
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// ClientOptions configures the client.
type ClientOptions struct {
	// BaseURL of the backend (default: DefaultBaseURL)
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// RateLimit controls request frequency (default: 1 req/second)
	RateLimit rate.Limit

	// Timeout for HTTP requests (default: 30 seconds)
	Timeout time.Duration

	// CacheTTL for successful responses (default: 10 minutes, negative disables)
	CacheTTL time.Duration

	// HTTPClient allows a custom HTTP client
	HTTPClient *http.Client
}

// DefaultClientOptions returns conservative default options.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:   DefaultBaseURL,
		RateLimit: DefaultRateLimit,
		Timeout:   DefaultTimeout,
		CacheTTL:  DefaultCacheTTL,
	}
}

// NewClient creates a new client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.RateLimit == 0 {
		options.RateLimit = DefaultRateLimit
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultTimeout
	}
	if options.CacheTTL == 0 {
		options.CacheTTL = DefaultCacheTTL
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		token:      options.Token,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(options.RateLimit, 1),
		logger:     log.With().Str("component", "statsapi").Logger(),
		cache:      make(map[string]cacheEntry),
		cacheTTL:   options.CacheTTL,
		backoff:    InitialBackoff,
		now:        time.Now,
	}
}

// Fetch downloads and decodes all three tables for q.
func (c *Client) Fetch(ctx context.Context, q Query) (*matchups.Tables, error) {
	raw, err := c.FetchRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	tables, err := raw.Decode()
	if err != nil {
		return nil, &APIError{Type: ErrParseError, Message: "failed to decode tables", Err: err}
	}
	return tables, nil
}

// FetchRaw downloads the three payloads for q without decoding them. The
// analytics envelopes are stripped, leaving the bare table data.
func (c *Client) FetchRaw(ctx context.Context, q Query) (matchups.RawTables, error) {
	var raw matchups.RawTables
	var err error

	if raw.Matchups, err = c.GetMatchups(ctx, q); err != nil {
		return matchups.RawTables{}, err
	}
	if raw.Popularity, err = c.GetPopularity(ctx, q); err != nil {
		return matchups.RawTables{}, err
	}
	if raw.Archetypes, err = c.GetArchetypes(ctx); err != nil {
		return matchups.RawTables{}, err
	}
	return raw, nil
}

// GetMatchups fetches the matchup table data for q.
func (c *Client) GetMatchups(ctx context.Context, q Query) ([]byte, error) {
	return c.getSeries(ctx, matchupsPath, q, "archetype matchups")
}

// GetPopularity fetches the popularity table data for q.
func (c *Client) GetPopularity(ctx context.Context, q Query) ([]byte, error) {
	return c.getSeries(ctx, popularityPath, q, "archetype popularity")
}

// GetArchetypes fetches the archetype catalog.
func (c *Client) GetArchetypes(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, c.baseURL+archetypesPath)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &APIError{Type: ErrParseError, Message: "failed to parse archetypes response"}
	}
	return body, nil
}

func (c *Client) getSeries(ctx context.Context, path string, q Query, what string) ([]byte, error) {
	if q.GameType == "" {
		return nil, &APIError{Type: ErrInvalidParams, Message: "game type is required"}
	}

	body, err := c.get(ctx, c.baseURL+path+"?"+q.Values().Encode())
	if err != nil {
		return nil, err
	}

	var envelope seriesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &APIError{Type: ErrParseError, Message: "failed to parse " + what + " response", Err: err}
	}
	if len(envelope.Series.Data) == 0 {
		return nil, &APIError{Type: ErrParseError, Message: what + " response has no series data"}
	}
	return envelope.Series.Data, nil
}

// get serves url from cache or collapses concurrent identical requests into
// one upstream call.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if body, ok := c.cached(url); ok {
		c.updateStats(func(s *ClientStats) { s.CachedResponses++ })
		return body, nil
	}

	v, err, shared := c.group.Do(url, func() (interface{}, error) {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return nil, err
		}
		c.store(url, body)
		return body, nil
	})
	if shared {
		c.updateStats(func(s *ClientStats) { s.SharedResponses++ })
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) cached(url string) ([]byte, bool) {
	if c.cacheTTL < 0 {
		return nil, false
	}
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	e, ok := c.cache[url]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.body, true
}

func (c *Client) store(url string, body []byte) {
	if c.cacheTTL < 0 {
		return
	}
	c.cacheMu.Lock()
	c.cache[url] = cacheEntry{body: body, expires: c.now().Add(c.cacheTTL)}
	c.cacheMu.Unlock()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	c.cache = make(map[string]cacheEntry)
	c.cacheMu.Unlock()
}

// doRequest performs an HTTP request with rate limiting and backoff.
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := c.checkBackoff(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Type: ErrRateLimited, Message: "rate limiter error", Err: err}
	}

	c.updateStats(func(s *ClientStats) {
		s.TotalRequests++
		s.LastRequestTime = c.now()
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{Type: ErrInvalidParams, Message: "failed to create request", Err: err}
	}
	req.Header.Set("User-Agent", "matchups/1.0")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(startTime)

	if err != nil {
		c.recordFailure()
		return nil, &APIError{Type: ErrUnavailable, Message: "failed to execute request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		errType := ErrUnavailable
		if resp.StatusCode == http.StatusTooManyRequests {
			errType = ErrRateLimited
		}
		return nil, &APIError{
			Type:       errType,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status code: %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return nil, &APIError{Type: ErrUnavailable, Message: "failed to read response body", Err: err}
	}

	c.recordSuccess(latency)
	c.logger.Debug().Str("url", url).Dur("latency", latency).Int("bytes", len(body)).Msg("Fetched")

	return body, nil
}

// checkBackoff fails fast while a backoff period is running.
func (c *Client) checkBackoff() error {
	c.backoffMu.Lock()
	defer c.backoffMu.Unlock()

	if !c.lastFailureTime.IsZero() {
		elapsed := c.now().Sub(c.lastFailureTime)
		if elapsed < c.backoff {
			return &APIError{
				Type:    ErrRateLimited,
				Message: fmt.Sprintf("in backoff period, %v remaining", c.backoff-elapsed),
			}
		}
	}
	return nil
}

func (c *Client) recordFailure() {
	c.backoffMu.Lock()
	if !c.lastFailureTime.IsZero() {
		c.backoff = time.Duration(float64(c.backoff) * BackoffFactor)
		if c.backoff > MaxBackoff {
			c.backoff = MaxBackoff
		}
	}
	c.lastFailureTime = c.now()
	backoff := c.backoff
	c.backoffMu.Unlock()

	c.updateStats(func(s *ClientStats) {
		s.FailedRequests++
		s.LastFailureTime = c.now()
		s.ConsecutiveErrors++
	})
	c.logger.Warn().Dur("backoff", backoff).Msg("Request failed, backing off")
}

func (c *Client) recordSuccess(latency time.Duration) {
	c.backoffMu.Lock()
	c.backoff = InitialBackoff
	c.lastFailureTime = time.Time{}
	c.backoffMu.Unlock()

	c.updateStats(func(s *ClientStats) {
		s.LastSuccessTime = c.now()
		s.ConsecutiveErrors = 0
		if s.AverageLatency == 0 {
			s.AverageLatency = latency
		} else {
			s.AverageLatency = (s.AverageLatency + latency) / 2
		}
	})
}

func (c *Client) updateStats(fn func(*ClientStats)) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	fn(&c.stats)
}

// GetStats returns a copy of the current client statistics.
func (c *Client) GetStats() ClientStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Backoff returns the current backoff period.
func (c *Client) Backoff() time.Duration {
	c.backoffMu.Lock()
	defer c.backoffMu.Unlock()
	return c.backoff
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// QuerySource binds a client to one query so it can serve as a table source.
type QuerySource struct {
	client *Client
	query  Query
}

// Source returns a table source fetching q.
func (c *Client) Source(q Query) *QuerySource {
	return &QuerySource{client: c, query: q}
}

// Fetch downloads the raw tables for the bound query.
func (s *QuerySource) Fetch(ctx context.Context) (matchups.RawTables, error) {
	return s.client.FetchRaw(ctx, s.query)
}

// Name describes the source for logs.
func (s *QuerySource) Name() string {
	return "api:" + s.client.baseURL
}

// Key identifies the bound query.
func (s *QuerySource) Key() string {
	return s.query.Key()
}
