package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/microblog/internal/version"
	healthuc "github.com/kailas-cloud/microblog/internal/usecase/health"
	postuc "github.com/kailas-cloud/microblog/internal/usecase/post"
	ratinguc "github.com/kailas-cloud/microblog/internal/usecase/rating"
)

// ServiceName is reported by GET /.
const ServiceName = "microblog"

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Server serves the blog post and rating HTTP API.
type Server struct {
	posts         *postuc.Service
	ratings       *ratinguc.Service
	health        *healthuc.Service
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	posts *postuc.Service,
	ratings *ratinguc.Service,
	health *healthuc.Service,
) *Server {
	return &Server{
		posts:         posts,
		ratings:       ratings,
		health:        health,
		errorHandlers: defaultErrorHandlers(),
	}
}

// ListPosts handles GET /blogposts.
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	posts, err := s.posts.List(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postsToDTO(posts))
}

// GetPost handles GET /blogposts/{id}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postToDTO(&p))
}

// CreatePost handles POST /blogposts.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.posts.Create(r.Context(), req.Body, req.UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/blogposts/"+p.ID())
	writeJSON(w, http.StatusCreated, postToDTO(&p))
}

// UpdatePost handles PUT /blogposts/{id}.
func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.posts.Update(r.Context(), chi.URLParam(r, "id"), req.Body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postToDTO(&p))
}

// DeletePost handles DELETE /blogposts/{id}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchPosts handles GET /search.
func (s *Server) SearchPosts(w http.ResponseWriter, r *http.Request) {
	term, err := bindSearchTerm(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	posts, err := s.posts.Search(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postsToDTO(posts))
}

// ListRatings handles GET /blogposts/{id}/ratings.
func (s *Server) ListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.ratings.ListByPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ratingsToDTO(ratings))
}

// CreateRating handles POST /blogposts/{id}/ratings.
func (s *Server) CreateRating(w http.ResponseWriter, r *http.Request) {
	var req CreateRatingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	postID := chi.URLParam(r, "id")
	rt, err := s.ratings.Add(r.Context(), postID, req.Rating, req.UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/blogposts/%s/ratings/%s", rt.PostID(), rt.ID()))
	writeJSON(w, http.StatusCreated, ratingToDTO(&rt))
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ServiceInfo{
		Name:    ServiceName,
		Version: version.Version,
		Commit:  version.Commit,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Backend: report.Backend,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
