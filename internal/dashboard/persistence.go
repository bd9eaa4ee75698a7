package dashboard

import (
	"context"
	"errors"

	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/storage/repository"
)

// Settings keys of the persisted customization.
const (
	KeyFavorites        = "archetype-favorites"
	KeyIgnored          = "archetype-ignored"
	KeyCustomWeights    = "archetype-custom-popularities"
	KeyUseCustomWeights = "archetype-use-custom-popularities"
	KeySortBy           = "archetype-matchups-sort-by"
	KeySortDirection    = "archetype-matchups-sort-direction"
	KeyOptions          = "archetype-matchups-options"
	KeyFrozenOrder      = "archetype-matchups-frozen-order"
)

// settingValue returns the persisted encoding of key in state and engine.
func settingValue(key string, state matchups.State, engine *matchups.Engine) interface{} {
	switch key {
	case KeyFavorites:
		return state.Favorites.Sorted()
	case KeyIgnored:
		return state.Ignored.Sorted()
	case KeyCustomWeights:
		return state.CustomWeights
	case KeyUseCustomWeights:
		return state.UseCustomWeights
	case KeySortBy:
		return string(state.SortBy)
	case KeySortDirection:
		return string(state.SortDirection)
	case KeyOptions:
		return engine.Options()
	case KeyFrozenOrder:
		return engine.FrozenOrder()
	}
	return nil
}

// loadCustomization reads every persisted key on top of the defaults. Missing
// keys keep their default; unreadable ones are reported but do not stop the
// others from loading.
func loadCustomization(ctx context.Context, settings repository.SettingsRepository, opts matchups.Options) (matchups.State, matchups.Options, []int, error) {
	state := matchups.DefaultState()
	var errs []error

	get := func(key string, target interface{}) bool {
		err := settings.GetTyped(ctx, key, target)
		switch {
		case err == nil:
			return true
		case errors.Is(err, repository.ErrSettingNotFound):
		default:
			errs = append(errs, err)
		}
		return false
	}

	var ids []int
	if get(KeyFavorites, &ids) {
		state.Favorites = matchups.NewIDSet(ids...)
	}
	ids = nil
	if get(KeyIgnored, &ids) {
		state.Ignored = matchups.NewIDSet(ids...)
	}

	var weights map[int]float64
	if get(KeyCustomWeights, &weights) && weights != nil {
		state.CustomWeights = weights
	}
	get(KeyUseCustomWeights, &state.UseCustomWeights)

	var raw string
	if get(KeySortBy, &raw) {
		if by, err := matchups.ParseSortBy(raw); err == nil {
			state.SortBy = by
		} else {
			errs = append(errs, err)
		}
	}
	raw = ""
	if get(KeySortDirection, &raw) {
		if dir, err := matchups.ParseSortDirection(raw); err == nil {
			state.SortDirection = dir
		} else {
			errs = append(errs, err)
		}
	}

	stored := opts
	if get(KeyOptions, &stored) {
		opts = stored
	}

	var frozen []int
	get(KeyFrozenOrder, &frozen)

	return state, opts, frozen, errors.Join(errs...)
}
