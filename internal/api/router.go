package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/nibi/internal/ingotservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *ingotservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/ingots", h.ListIngots)
	r.Post("/ingots", h.CreateIngot)
	r.Post("/ingots/move", h.MoveIngot)
	r.Get("/ingots/*", h.GetIngot)
	r.Put("/ingots/*", h.UpdateIngot)
	r.Delete("/ingots/*", h.DeleteIngot)

	r.Post("/parse", h.Parse)
	r.Get("/search", h.Search)
	r.Get("/taxonomy", h.Taxonomy)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
