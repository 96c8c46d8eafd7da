package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/search", s.SearchPosts)

	r.Route("/blogposts", func(r chi.Router) {
		r.Get("/", s.ListPosts)
		r.Post("/", s.CreatePost)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetPost)
			r.Put("/", s.UpdatePost)
			r.Delete("/", s.DeletePost)

			r.Get("/ratings", s.ListRatings)
			r.Post("/ratings", s.CreateRating)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})
}
