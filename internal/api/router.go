package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notelink/internal/followsvc"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *followsvc.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/follow", h.Follow)
	r.Get("/classify", h.Classify)
	r.Get("/links/*", h.Links)

	r.Get("/history", h.History)
	r.Delete("/history", h.ClearHistory)
	r.Post("/back", h.Back)
	r.Get("/active", h.Active)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
