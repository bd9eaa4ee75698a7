package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/storage/repository"
)

// Source provides the raw tables.
type Source interface {
	Fetch(ctx context.Context) (matchups.RawTables, error)
	Name() string
}

// snapshotsKept is how many cached payloads per kind survive a prune.
const snapshotsKept = 3

// CachedSource wraps an upstream source and persists every successful fetch.
// When the upstream fails, the last persisted payloads are served instead.
type CachedSource struct {
	upstream  Source
	snapshots repository.SnapshotRepository
	queryKey  string
	fromCache atomic.Bool
	logger    zerolog.Logger
}

// NewCachedSource caches upstream's payloads under queryKey.
func NewCachedSource(upstream Source, snapshots repository.SnapshotRepository, queryKey string) *CachedSource {
	return &CachedSource{
		upstream:  upstream,
		snapshots: snapshots,
		queryKey:  queryKey,
		logger:    log.With().Str("component", "dashboard").Str("source", upstream.Name()).Logger(),
	}
}

// Name describes the upstream source.
func (c *CachedSource) Name() string {
	return c.upstream.Name()
}

// FromCache reports whether the last Fetch was served from the cache.
func (c *CachedSource) FromCache() bool {
	return c.fromCache.Load()
}

// Fetch returns fresh tables, or cached ones when the upstream is unreachable.
func (c *CachedSource) Fetch(ctx context.Context) (matchups.RawTables, error) {
	raw, err := c.upstream.Fetch(ctx)
	if err == nil {
		c.fromCache.Store(false)
		if saveErr := c.save(ctx, raw); saveErr != nil {
			c.logger.Warn().Err(saveErr).Msg("Failed to cache tables")
		}
		return raw, nil
	}

	cached, cacheErr := c.load(ctx)
	if cacheErr != nil {
		return matchups.RawTables{}, errors.Join(err, cacheErr)
	}

	c.logger.Warn().Err(err).Msg("Upstream unavailable, serving cached tables")
	c.fromCache.Store(true)
	return cached, nil
}

func (c *CachedSource) save(ctx context.Context, raw matchups.RawTables) error {
	payloads := map[string][]byte{
		repository.KindMatchups:   raw.Matchups,
		repository.KindPopularity: raw.Popularity,
		repository.KindArchetypes: raw.Archetypes,
	}
	for kind, payload := range payloads {
		if _, err := c.snapshots.Save(ctx, c.queryKey, kind, payload); err != nil {
			return err
		}
	}
	if _, err := c.snapshots.Prune(ctx, snapshotsKept); err != nil {
		return err
	}
	return nil
}

func (c *CachedSource) load(ctx context.Context) (matchups.RawTables, error) {
	var raw matchups.RawTables
	targets := map[string]*[]byte{
		repository.KindMatchups:   &raw.Matchups,
		repository.KindPopularity: &raw.Popularity,
		repository.KindArchetypes: &raw.Archetypes,
	}
	for kind, target := range targets {
		snap, err := c.snapshots.Latest(ctx, c.queryKey, kind)
		if err != nil {
			return matchups.RawTables{}, fmt.Errorf("load cached %s: %w", kind, err)
		}
		*target = snap.Payload
	}
	return raw, nil
}
