/*
server.go - HTTP router configuration

PURPOSE:
  Wires the chi router: middleware, CORS for the form host, and the
  /api route tree.

ROUTE GROUPS:
  /api/compute     The calculation pipeline
  /api/tables/*    Read-only reference tables
  /api/export/*    Document renderers
  /api/proposals   Archived exports
  /api/reset       Dev convenience

SEE ALSO:
  - handlers.go: The handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router with all API routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Proposal-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/compute", h.Compute)

		r.Route("/tables", func(r chi.Router) {
			r.Get("/typologies", h.ListTypologies)
			r.Get("/presets", h.ListPresets)
			r.Get("/indicators", h.ListIndicators)
			r.Get("/regions", h.ListRegions)
		})

		r.Route("/export", func(r chi.Router) {
			r.Post("/json", h.ExportJSON)
			r.Post("/csv", h.ExportCSV)
			r.Post("/xlsx", h.ExportXLSX)
			r.Post("/pdf", h.ExportPDF)
		})

		r.Get("/proposals", h.ListProposals)
		r.Get("/proposals/{id}", h.GetProposal)

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
