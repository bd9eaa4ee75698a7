// Package dashboard serves the matchup dashboard: it owns the engine and the
// user's customization, loads raw tables from a source, persists every change
// and announces recomputes to observers.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ramonehamilton/matchups/internal/archetype"
	"github.com/ramonehamilton/matchups/internal/events"
	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/metrics"
	"github.com/ramonehamilton/matchups/internal/stats"
	"github.com/ramonehamilton/matchups/internal/storage/repository"
)

var (
	// ErrNotLoaded is returned by archetype mutators before any tables were loaded.
	ErrNotLoaded = errors.New("matchup tables not loaded")

	// ErrUnknownArchetype is returned for ids outside the resolved universe.
	ErrUnknownArchetype = errors.New("unknown archetype")

	// ErrInvalidWeight is returned for negative or non-finite custom weights.
	ErrInvalidWeight = errors.New("invalid custom weight")

	// ErrInvalidOptions is returned for negative thresholds or cutoffs.
	ErrInvalidOptions = errors.New("invalid options")
)

// Config wires a Service. Settings, Dispatcher and Metrics are optional.
type Config struct {
	Source     Source
	Settings   repository.SettingsRepository
	Dispatcher *events.EventDispatcher
	Metrics    *metrics.RecomputeMetrics
	Options    matchups.Options
}

// Service is safe for concurrent use; calls are serialized.
type Service struct {
	mu         sync.Mutex
	engine     *matchups.Engine
	state      matchups.State
	source     Source
	settings   repository.SettingsRepository
	dispatcher *events.EventDispatcher
	metrics    *metrics.RecomputeMetrics
	logger     zerolog.Logger
}

// NewService creates a service with the default customization.
func NewService(cfg Config) *Service {
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewRecomputeMetrics()
	}
	return &Service{
		engine:     matchups.NewEngine(cfg.Options),
		state:      matchups.DefaultState(),
		source:     cfg.Source,
		settings:   cfg.Settings,
		dispatcher: cfg.Dispatcher,
		metrics:    m,
		logger:     log.With().Str("component", "dashboard").Logger(),
	}
}

// Load restores the persisted customization and fetches the tables.
func (s *Service) Load(ctx context.Context) error {
	if s.settings != nil {
		state, opts, frozen, err := loadCustomization(ctx, s.settings, s.engine.Options())
		if err != nil {
			s.logger.Warn().Err(err).Msg("Some persisted settings could not be read")
		}
		s.mu.Lock()
		s.state = state
		s.engine.RestoreFrozenOrder(frozen)
		s.engine.SetOptions(state, opts)
		s.mu.Unlock()
	}
	return s.Refresh(ctx)
}

// Refresh fetches new raw tables from the source and recomputes.
func (s *Service) Refresh(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("refresh tables: %w", ErrNotLoaded)
	}

	raw, err := s.source.Fetch(ctx)
	if err == nil {
		var tables *matchups.Tables
		if tables, err = raw.Decode(); err == nil {
			s.replace(ctx, tables, s.source.Name(), fromCache(s.source))
			return nil
		}
	}

	s.dispatch(events.NewEvent(ctx, events.RefreshFailed, events.RefreshFailedEvent{
		Source: s.source.Name(),
		Error:  err.Error(),
	}))
	return fmt.Errorf("refresh tables from %s: %w", s.source.Name(), err)
}

// ReplaceTables swaps in already decoded tables, e.g. from a snapshot watcher.
func (s *Service) ReplaceTables(ctx context.Context, tables *matchups.Tables, origin string) matchups.ViewModel {
	return s.replace(ctx, tables, origin, false)
}

func (s *Service) replace(ctx context.Context, tables *matchups.Tables, origin string, cached bool) matchups.ViewModel {
	s.mu.Lock()
	var view matchups.ViewModel
	s.metrics.Time("tables", func() int {
		view = s.engine.SetTables(s.state, tables)
		return len(view.Rows)
	})
	universe := len(s.engine.Universe().Archetypes)
	updated := s.updatedEvent(ctx, "tables", view)
	s.mu.Unlock()

	s.logger.Info().Str("source", origin).Int("archetypes", universe).Int("rows", len(view.Rows)).Bool("from_cache", cached).Msg("Tables loaded")
	s.dispatch(events.NewEvent(ctx, events.TablesReloaded, events.TablesReloadedEvent{
		Source:     origin,
		Archetypes: universe,
		FromCache:  cached,
	}))
	s.dispatch(updated)
	return view
}

func fromCache(src Source) bool {
	c, ok := src.(interface{ FromCache() bool })
	return ok && c.FromCache()
}

// View returns the last computed view model.
func (s *Service) View() matchups.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// State returns a copy of the current customization.
func (s *Service) State() matchups.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Options returns the current recompute options.
func (s *Service) Options() matchups.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Options()
}

// Universe returns every archetype referenced by the tables, visible or not.
func (s *Service) Universe() []archetype.Archetype {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Universe().Archetypes
}

// Loaded reports whether tables have been loaded.
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Tables().Valid()
}

// Metrics returns the recompute metrics.
func (s *Service) Metrics() metrics.RecomputeSnapshot {
	return s.metrics.Snapshot()
}

// Tendency maps value against baseline onto a color and arrow.
func (s *Service) Tendency(baseline, value, sensitivity float64) stats.Tendency {
	return stats.TendencyOf(baseline, value, sensitivity)
}

// SetFavorite stars or un-stars an archetype.
func (s *Service) SetFavorite(ctx context.Context, id int, favorite bool) (matchups.ViewModel, error) {
	return s.mutate(ctx, "favorite", func() (matchups.ViewModel, error) {
		if err := s.checkKnown(id); err != nil {
			return matchups.ViewModel{}, err
		}
		var view matchups.ViewModel
		s.state, view = s.engine.SetFavorite(s.state, id, favorite)
		return view, nil
	}, KeyFavorites, KeySortBy)
}

// SetIgnored adds ids to or removes them from the ignored opponents.
func (s *Service) SetIgnored(ctx context.Context, ids []int, ignore bool) (matchups.ViewModel, error) {
	return s.mutate(ctx, "ignored", func() (matchups.ViewModel, error) {
		for _, id := range ids {
			if err := s.checkKnown(id); err != nil {
				return matchups.ViewModel{}, err
			}
		}
		var view matchups.ViewModel
		s.state, view = s.engine.SetIgnored(s.state, ids, ignore)
		return view, nil
	}, KeyIgnored, KeySortBy)
}

// SetCustomWeight sets the custom popularity weight of an archetype.
func (s *Service) SetCustomWeight(ctx context.Context, id int, weight float64) (matchups.ViewModel, error) {
	return s.mutate(ctx, "custom_weight", func() (matchups.ViewModel, error) {
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return matchups.ViewModel{}, fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
		}
		if err := s.checkKnown(id); err != nil {
			return matchups.ViewModel{}, err
		}
		var view matchups.ViewModel
		s.state, view = s.engine.SetCustomWeight(s.state, id, weight)
		return view, nil
	}, KeyCustomWeights, KeySortBy)
}

// SetUseCustomWeights toggles custom weighting.
func (s *Service) SetUseCustomWeights(ctx context.Context, enabled bool) (matchups.ViewModel, error) {
	return s.mutate(ctx, "use_custom_weights", func() (matchups.ViewModel, error) {
		var view matchups.ViewModel
		s.state, view = s.engine.SetUseCustomWeights(s.state, enabled)
		return view, nil
	}, KeyUseCustomWeights, KeySortBy)
}

// SetSort selects the sort key and direction.
func (s *Service) SetSort(ctx context.Context, by matchups.SortBy, direction matchups.SortDirection) (matchups.ViewModel, error) {
	return s.mutate(ctx, "sort", func() (matchups.ViewModel, error) {
		var view matchups.ViewModel
		s.state, view = s.engine.SetSort(s.state, by, direction)
		return view, nil
	}, KeySortBy, KeySortDirection)
}

// SetOptions replaces the recompute options.
func (s *Service) SetOptions(ctx context.Context, opts matchups.Options) (matchups.ViewModel, error) {
	return s.mutate(ctx, "options", func() (matchups.ViewModel, error) {
		if opts.EligibilityThreshold < 0 || opts.PopularityCutoff < 0 || math.IsNaN(opts.PopularityCutoff) {
			return matchups.ViewModel{}, fmt.Errorf("%w: %+v", ErrInvalidOptions, opts)
		}
		return s.engine.SetOptions(s.state, opts), nil
	}, KeyOptions)
}

// checkKnown requires loaded tables containing id. Callers hold s.mu.
func (s *Service) checkKnown(id int) error {
	if !s.engine.Tables().Valid() {
		return ErrNotLoaded
	}
	if !s.engine.Universe().Contains(id) {
		return fmt.Errorf("%w: %d", ErrUnknownArchetype, id)
	}
	return nil
}

// mutate runs fn under the lock, persists keys and announces the recompute.
// A persistence failure is logged; the in-memory change stands.
func (s *Service) mutate(ctx context.Context, reason string, fn func() (matchups.ViewModel, error), keys ...string) (matchups.ViewModel, error) {
	s.mu.Lock()

	start := time.Now()
	view, err := fn()
	if err != nil {
		s.mu.Unlock()
		return matchups.ViewModel{}, err
	}
	s.metrics.Observe(reason, time.Since(start), len(view.Rows))

	if s.settings != nil {
		values := make(map[string]interface{}, len(keys)+1)
		for _, key := range append(keys, KeyFrozenOrder) {
			values[key] = settingValue(key, s.state, s.engine)
		}
		if err := s.settings.SetMany(ctx, values); err != nil {
			s.logger.Error().Err(err).Str("reason", reason).Msg("Failed to persist customization")
		}
	}

	updated := s.updatedEvent(ctx, reason, view)
	s.mu.Unlock()

	s.dispatch(updated)
	return view, nil
}

func (s *Service) updatedEvent(ctx context.Context, reason string, view matchups.ViewModel) events.Event {
	return events.NewEvent(ctx, events.MatchupsUpdated, events.MatchupsUpdatedEvent{
		Reason:        reason,
		Rows:          len(view.Rows),
		SortBy:        string(s.state.SortBy),
		SortDirection: string(s.state.SortDirection),
	})
}

func (s *Service) dispatch(event events.Event) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(event)
	}
}
