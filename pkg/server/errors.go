package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/polisai/archwise/pkg/domain"
	"go.opentelemetry.io/otel/trace"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := domain.ErrorResponse{Code: code, Message: message}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		resp.TraceID = sc.TraceID().String()
	}
	writeJSON(w, status, resp)
}

// handleError maps domain errors to HTTP responses. Recommendation failures
// only ever expose the generic retry message.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domain.DomainError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, domain.CodeSessionNotFound, "session not found")
	case errors.Is(err, domain.ErrInvalidProblem), errors.Is(err, domain.ErrUnknownPriority):
		writeError(w, r, http.StatusBadRequest, domain.CodeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrRecommendationFailed):
		writeError(w, r, http.StatusBadGateway, domain.CodeRecommendationFailed, domain.RecommendationRetryMessage)
	case errors.As(err, &domainErr) && domainErr.Code != "":
		writeError(w, r, http.StatusInternalServerError, domainErr.Code, domainErr.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, domain.CodeInternal, "internal error")
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, domain.CodeInvalidRequest, message)
}
