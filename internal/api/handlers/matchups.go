// Package handlers adapts the dashboard service to HTTP.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/matchups/internal/api/response"
	"github.com/ramonehamilton/matchups/internal/archetype"
	"github.com/ramonehamilton/matchups/internal/charts"
	"github.com/ramonehamilton/matchups/internal/dashboard"
	"github.com/ramonehamilton/matchups/internal/export"
	"github.com/ramonehamilton/matchups/internal/matchups"
	"github.com/ramonehamilton/matchups/internal/metrics"
	"github.com/ramonehamilton/matchups/internal/stats"
	"github.com/ramonehamilton/matchups/internal/statsapi"
)

// MatchupService is the subset of *dashboard.Service the handlers need.
type MatchupService interface {
	Refresh(ctx context.Context) error
	View() matchups.ViewModel
	State() matchups.State
	Options() matchups.Options
	Universe() []archetype.Archetype
	Loaded() bool
	Metrics() metrics.RecomputeSnapshot
	Tendency(baseline, value, sensitivity float64) stats.Tendency

	SetFavorite(ctx context.Context, id int, favorite bool) (matchups.ViewModel, error)
	SetIgnored(ctx context.Context, ids []int, ignore bool) (matchups.ViewModel, error)
	SetCustomWeight(ctx context.Context, id int, weight float64) (matchups.ViewModel, error)
	SetUseCustomWeights(ctx context.Context, enabled bool) (matchups.ViewModel, error)
	SetSort(ctx context.Context, by matchups.SortBy, direction matchups.SortDirection) (matchups.ViewModel, error)
	SetOptions(ctx context.Context, opts matchups.Options) (matchups.ViewModel, error)
}

var _ MatchupService = (*dashboard.Service)(nil)

// MatchupHandler handles matchup API requests.
type MatchupHandler struct {
	service MatchupService
	chart   charts.ChartConfig
}

// NewMatchupHandler creates a new MatchupHandler.
func NewMatchupHandler(service MatchupService) *MatchupHandler {
	return &MatchupHandler{service: service, chart: charts.DefaultChartConfig()}
}

// StateResponse is the customization plus options.
type StateResponse struct {
	State   matchups.State   `json:"state"`
	Options matchups.Options `json:"options"`
	Loaded  bool             `json:"loaded"`
}

// FavoriteRequest stars or un-stars an archetype.
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// IgnoredRequest adds ids to or removes them from the ignored opponents.
type IgnoredRequest struct {
	IDs    []int `json:"ids"`
	Ignore bool  `json:"ignore"`
}

// WeightRequest sets one custom weight.
type WeightRequest struct {
	Weight *float64 `json:"weight"`
}

// CustomWeightsRequest toggles custom weighting.
type CustomWeightsRequest struct {
	Enabled bool `json:"enabled"`
}

// SortRequest selects the sort key and direction.
type SortRequest struct {
	SortBy    string `json:"sort_by"`
	Direction string `json:"direction"`
}

// GetMatchups returns the current view model.
func (h *MatchupHandler) GetMatchups(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.service.View())
}

// GetState returns the customization state and options.
func (h *MatchupHandler) GetState(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, StateResponse{
		State:   h.service.State(),
		Options: h.service.Options(),
		Loaded:  h.service.Loaded(),
	})
}

// Refresh refetches the tables from the configured source.
func (h *MatchupHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, h.service.View())
}

// SetFavorite stars or un-stars the archetype in the path.
func (h *MatchupHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := archetypeID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req FavoriteRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	h.respond(w)(h.service.SetFavorite(r.Context(), id, req.Favorite))
}

// SetIgnored updates the ignored opponents.
func (h *MatchupHandler) SetIgnored(w http.ResponseWriter, r *http.Request) {
	var req IgnoredRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if len(req.IDs) == 0 {
		response.BadRequest(w, errors.New("ids is required"))
		return
	}

	h.respond(w)(h.service.SetIgnored(r.Context(), req.IDs, req.Ignore))
}

// SetWeight sets the custom weight of the archetype in the path.
func (h *MatchupHandler) SetWeight(w http.ResponseWriter, r *http.Request) {
	id, err := archetypeID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req WeightRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Weight == nil {
		response.BadRequest(w, errors.New("weight is required"))
		return
	}

	h.respond(w)(h.service.SetCustomWeight(r.Context(), id, *req.Weight))
}

// SetUseCustomWeights toggles custom weighting.
func (h *MatchupHandler) SetUseCustomWeights(w http.ResponseWriter, r *http.Request) {
	var req CustomWeightsRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	h.respond(w)(h.service.SetUseCustomWeights(r.Context(), req.Enabled))
}

// SetSort selects the sort key and direction.
func (h *MatchupHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	by, err := matchups.ParseSortBy(req.SortBy)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	direction := h.service.State().SortDirection
	if req.Direction != "" {
		if direction, err = matchups.ParseSortDirection(req.Direction); err != nil {
			response.BadRequest(w, err)
			return
		}
	}

	h.respond(w)(h.service.SetSort(r.Context(), by, direction))
}

// SetOptions replaces the recompute options. Omitted fields keep their
// current values.
func (h *MatchupHandler) SetOptions(w http.ResponseWriter, r *http.Request) {
	opts := h.service.Options()
	if err := decode(r, &opts); err != nil {
		response.BadRequest(w, err)
		return
	}

	h.respond(w)(h.service.SetOptions(r.Context(), opts))
}

// GetHeatmap renders the current view as an HTML heatmap.
func (h *MatchupHandler) GetHeatmap(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := charts.RenderMatchupHeatmap(&buf, h.service.View(), h.chart); err != nil {
		response.InternalError(w, err)
		return
	}
	response.HTML(w, buf.Bytes())
}

// Export writes the ranked table as ?format=csv or json (default).
func (h *MatchupHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRanking(&buf, format, h.service.View(), h.service.State()); err != nil {
		response.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=matchups.%s", format))
	_, _ = w.Write(buf.Bytes())
}

// GetTendency maps ?value= against ?baseline= onto a color and arrow.
func (h *MatchupHandler) GetTendency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	baseline, err := floatParam(q.Get("baseline"), 50)
	if err != nil {
		response.BadRequest(w, fmt.Errorf("baseline: %w", err))
		return
	}
	value, err := floatParam(q.Get("value"), 0)
	if err != nil || q.Get("value") == "" {
		response.BadRequest(w, errors.New("value must be a number"))
		return
	}
	sensitivity, err := floatParam(q.Get("sensitivity"), 1)
	if err != nil {
		response.BadRequest(w, fmt.Errorf("sensitivity: %w", err))
		return
	}

	response.Success(w, h.service.Tendency(baseline, value, sensitivity))
}

// GetArchetypes returns every archetype referenced by the tables.
func (h *MatchupHandler) GetArchetypes(w http.ResponseWriter, _ *http.Request) {
	universe := h.service.Universe()
	if universe == nil {
		universe = []archetype.Archetype{}
	}
	response.Success(w, universe)
}

func (h *MatchupHandler) respond(w http.ResponseWriter) func(matchups.ViewModel, error) {
	return func(view matchups.ViewModel, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		response.Success(w, view)
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *statsapi.APIError
	switch {
	case errors.Is(err, dashboard.ErrInvalidWeight), errors.Is(err, dashboard.ErrInvalidOptions):
		response.BadRequest(w, err)
	case errors.Is(err, dashboard.ErrUnknownArchetype):
		response.NotFound(w, err)
	case errors.Is(err, dashboard.ErrNotLoaded):
		response.Conflict(w, err)
	case errors.As(err, &apiErr):
		response.BadGateway(w, err)
	default:
		response.InternalError(w, err)
	}
}

func archetypeID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "archetypeID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid archetype id %q", raw)
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}
