package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/matchups/internal/api/handlers"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	systemHandler := handlers.NewSystemHandler(s.service)
	matchupHandler := handlers.NewMatchupHandler(s.service)

	// Health check endpoint (no versioning)
	s.router.Get("/health", systemHandler.Health)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/matchups", func(r chi.Router) {
			r.Get("/", matchupHandler.GetMatchups)
			r.Get("/state", matchupHandler.GetState)
			r.Post("/refresh", matchupHandler.Refresh)
			r.Put("/favorites/{archetypeID}", matchupHandler.SetFavorite)
			r.Put("/ignored", matchupHandler.SetIgnored)
			r.Put("/weights/{archetypeID}", matchupHandler.SetWeight)
			r.Put("/custom-weights", matchupHandler.SetUseCustomWeights)
			r.Put("/sort", matchupHandler.SetSort)
			r.Put("/options", matchupHandler.SetOptions)
			r.Get("/heatmap", matchupHandler.GetHeatmap)
			r.Get("/tendency", matchupHandler.GetTendency)
			r.Get("/export", matchupHandler.Export)
		})

		r.Get("/archetypes", matchupHandler.GetArchetypes)

		r.Route("/system", func(r chi.Router) {
			r.Get("/metrics", systemHandler.GetMetrics)
		})
	})
}
