package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// APIPrefix prefixes every versioned route.
const APIPrefix = "/api/v1"

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Get("/search", s.SearchByQuery)
		r.Post("/search/translate", s.Translate)

		r.Route("/saved-searches", func(r chi.Router) {
			r.Post("/", s.CreateSavedSearch)
			r.Get("/", s.ListSavedSearches)
			r.Get("/{id}", s.GetSavedSearch)
			r.Put("/{id}", s.UpdateSavedSearch)
			r.Delete("/{id}", s.DeleteSavedSearch)
			r.Post("/{id}/run", s.RunSavedSearch)
		})

		r.Post("/assistant/completions", s.AssistantCompletions)
		r.Get("/assistant/models", s.AssistantModels)
	})
}
