package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP surface. Every route requires an owner.
func NewRouter(docs *DocumentHandler, analyses *AnalysisHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireOwner)

		r.Post("/documents", docs.Upload)
		r.Get("/documents", docs.List)
		r.Get("/documents/export", docs.Export)
		r.Get("/documents/{documentID}", docs.Get)

		r.Post("/documents/{documentID}/analysis", analyses.Analyze)
		r.Get("/documents/{documentID}/analysis", analyses.Get)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
