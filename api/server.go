/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SECURITY NOTE:
  No authentication middleware; auth is an external collaborator of
  this service.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Put("/{id}", h.UpdateContract)
			r.Delete("/{id}", h.DeleteContract)

			r.Post("/{id}/shifts", h.CreateShift)
			r.Get("/{id}/reports", h.ListReports)
			r.Get("/{id}/timesheets/{month}", h.GetTimesheet)
			r.Post("/{id}/timesheets/{month}/export", h.ExportTimesheet)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/{id}", h.GetShift)
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/rollover", h.TriggerRollover)
		})
	})

	return r
}
