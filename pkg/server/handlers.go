package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/polisai/archwise/internal/governance"
	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/diagram"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/polisai/archwise/pkg/prompts"
)

const maxBodyBytes = 1 << 20

func (s *Server) routes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		_, endpoint, _ := strings.Cut(pattern, " ")
		mux.Handle(pattern, s.metrics.Middleware(endpoint, h))
	}

	handle("GET /health", s.handleHealth)
	handle("GET /v1/frameworks", s.handleFrameworks)
	handle("GET /v1/industries", s.handleIndustries)
	handle("POST /v1/compliance/resolve", s.handleResolve)
	handle("POST /v1/compliance/normalize", s.handleNormalize)

	handle("POST /v1/sessions", s.handleCreateSession)
	handle("GET /v1/sessions/{id}", s.handleGetSession)
	handle("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	handle("PUT /v1/sessions/{id}/industry", s.handleChangeIndustry)
	handle("POST /v1/sessions/{id}/compliance/{cid}", s.handleToggleCompliance)
	handle("POST /v1/sessions/{id}/recommendations", s.rateLimited(s.handleRecommend))
	handle("GET /v1/sessions/{id}/prompts", s.handlePrompts)
	handle("GET /v1/sessions/{id}/diagrams", s.handleDiagrams)
}

// rateLimited rejects callers that exceed the recommendation rate with 429.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if !s.limiter.Enabled() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ok, remaining, retryAfter := s.limiter.Allow(s.limiter.Key(r))
		governance.WriteRateLimitHeaders(w, s.limiter.Limit(), remaining, retryAfter)
		if !ok {
			s.metrics.RecordRecommendation("rate_limited")
			writeError(w, r, http.StatusTooManyRequests, domain.CodeRateLimited, "too many recommendation requests, try again later")
			return
		}
		next(w, r)
	}
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "OK")
}

func (s *Server) handleFrameworks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"frameworks": s.Resolver().Frameworks()})
}

func (s *Server) handleIndustries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"industries": compliance.Industries()})
}

// complianceRequest accepts whatever the client sent for "compliance"; non
// string entries are dropped rather than rejected.
type complianceRequest struct {
	Compliance any    `json:"compliance"`
	Industry   string `json:"industry"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req complianceRequest
	if err := decode(r, w, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	res := s.wizard.Resolve(r.Context(), compliance.LabelsFrom(req.Compliance), req.Industry)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req complianceRequest
	if err := decode(r, w, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	set := s.Resolver().Normalize(compliance.LabelsFrom(req.Compliance))
	writeJSON(w, http.StatusOK, map[string]any{"compliance": set})
}

type createSessionRequest struct {
	Problem  domain.ProblemDescription `json:"problem"`
	Industry string                    `json:"industry"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, w, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	industry := req.Industry
	if industry == "" {
		industry = req.Problem.Industry
	}
	cfg := domain.DefaultProjectConfig()
	if industry != "" {
		cfg = s.wizard.ChangeIndustry(r.Context(), cfg, industry)
	}

	sess, err := s.store.Create(r.Context(), req.Problem, cfg)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.metrics.RecordSessionCreated()
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeIndustry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Industry string `json:"industry"`
	}
	if err := decode(r, w, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	sess, err := s.store.Update(r.Context(), r.PathValue("id"), func(sess *domain.Session) error {
		sess.Config = s.wizard.ChangeIndustry(r.Context(), sess.Config, req.Industry)
		return nil
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleToggleCompliance(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("cid")
	sess, err := s.store.Update(r.Context(), r.PathValue("id"), func(sess *domain.Session) error {
		sess.Config = s.wizard.ToggleCompliance(sess.Config, label)
		return nil
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleRecommend asks the recommendation source about the posted problem
// description, or the session's stored one when the body is empty, and
// applies the answer to the session configuration.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	problem := current.Problem
	if err := decode(r, w, &problem); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := problem.Validate(); err != nil {
		s.metrics.RecordRecommendation("invalid")
		s.handleError(w, r, err)
		return
	}

	if s.source == nil {
		s.metrics.RecordRecommendation("error")
		s.handleError(w, r, domain.NewRecommendationError(errors.New("recommendation source not configured")))
		return
	}
	rec, err := s.source.Recommend(r.Context(), problem)
	if err != nil {
		s.metrics.RecordRecommendation("error")
		s.logger.WarnContext(r.Context(), "recommendation failed", "session_id", id, "error", err)
		s.handleError(w, r, err)
		return
	}
	s.metrics.RecordRecommendation("ok")

	sess, err := s.store.Update(r.Context(), id, func(sess *domain.Session) error {
		sess.Problem = problem
		sess.Recommendation = rec
		sess.Config = s.wizard.ApplyRecommendation(r.Context(), sess.Config, rec, problem.Industry)
		return nil
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	all := prompts.Generate(sess.Config)
	filtered, err := prompts.Filter(all, r.URL.Query().Get("priority"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prompts": filtered,
		"counts":  prompts.Count(all),
	})
}

func (s *Server) handleDiagrams(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"diagrams": diagram.All(sess.Recommendation, sess.Config),
	})
}
