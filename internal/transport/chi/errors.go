package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/microblog/internal/domain"
	"github.com/kailas-cloud/microblog/internal/logger"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeMissingID        ErrorCode = "missing_id"
	CodeInvalidRating    ErrorCode = "invalid_rating"
	CodeInvalidSort      ErrorCode = "invalid_sort"
	CodeInvalidCriteria  ErrorCode = "invalid_criteria"
	CodeEmptySearchTerm  ErrorCode = "empty_search_term"
	CodePostNotFound     ErrorCode = "post_not_found"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is ordered most specific first.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrPostNotFound, http.StatusNotFound, CodePostNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrMissingID, http.StatusBadRequest, CodeMissingID),
		sentinelHandler(domain.ErrInvalidRating, http.StatusBadRequest, CodeInvalidRating),
		sentinelHandler(domain.ErrInvalidSort, http.StatusBadRequest, CodeInvalidSort),
		sentinelHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, CodeInvalidCriteria),
		sentinelHandler(domain.ErrEmptySearchTerm, http.StatusBadRequest, CodeEmptySearchTerm),
		sentinelHandler(domain.ErrBadRequest, http.StatusBadRequest, CodeBadRequest),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Bad requests echo the validation failure; not-found errors echo the sentinel.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		return domain.ErrPostNotFound.Error()
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrBadRequest):
		return err.Error()
	default:
		return "internal error"
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
