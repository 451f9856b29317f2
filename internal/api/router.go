package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/notehub/internal/noteservice"
)

// NewRouter returns the notes API. A non-empty token turns on bearer auth for
// every route. events, when set, serves the change stream at GET /events.
func NewRouter(svc *noteservice.Service, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(RequireToken(token))

	r.Route("/notes", func(r chi.Router) {
		r.Use(middleware.SetHeader("Cache-Control", "no-store"))
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetNote)
			r.Patch("/", h.UpdateNote)
			r.Delete("/", h.DeleteNote)
		})
	})

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}
	return r
}
