package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	historyrepo "github.com/kailas-cloud/indexwatch/internal/repository/history"
	healthuc "github.com/kailas-cloud/indexwatch/internal/usecase/health"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeNotIndexed       ErrorCode = "not_indexed"
	ErrorCodePlaybackStalled  ErrorCode = "playback_stalled"
	ErrorCodeUpstreamError    ErrorCode = "upstream_error"
	ErrorCodeTimeout          ErrorCode = "timeout"
	ErrorCodeNotImplemented   ErrorCode = "not_implemented"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services groups the use cases exposed over HTTP. History may be nil.
type Services struct {
	Poller    Poller
	Playback  PlaybackChecker
	Documents Documents
	History   History
	Queries   URLBuilder
	Health    HealthChecker
}

// Server serves the index verification API.
type Server struct {
	svc           Services
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidOption, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotIndexed, http.StatusConflict, ErrorCodeNotIndexed),
		sentinelHandler(domain.ErrPlaybackStalled, http.StatusConflict, ErrorCodePlaybackStalled),
		sentinelHandler(historyrepo.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrHTTPStatus, http.StatusBadGateway, ErrorCodeUpstreamError),
		sentinelHandler(domain.ErrSearchEngine, http.StatusBadGateway, ErrorCodeUpstreamError),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, ErrorCodeUpstreamError),
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, ErrorCodeUpstreamError),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.BuildQuery)
		r.Route("/jobs/{jobID}", func(r chi.Router) {
			r.Get("/count", s.CountJob)
			r.Post("/wait", s.WaitForJob)
			r.Post("/played", s.CheckPlayed)
			r.Get("/history", s.JobHistory)
		})
	})
}

type countResponse struct {
	JobID string `json:"job_id"`
	Count int    `json:"count"`
}

// CountJob handles GET /v1/jobs/{jobID}/count.
func (s *Server) CountJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	entry, err := filter.Field(domain.JobIDField, jobID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	n, err := s.svc.Documents.Count(r.Context(), filter.Spec{entry})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{JobID: jobID, Count: n})
}

// WaitForJob handles POST /v1/jobs/{jobID}/wait. It blocks until the poll ends.
func (s *Server) WaitForJob(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.svc.Poller.WaitForJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

type playedRequest struct {
	Expected int `json:"expected"`
	Deleted  int `json:"deleted"`
}

// CheckPlayed handles POST /v1/jobs/{jobID}/played.
func (s *Server) CheckPlayed(w http.ResponseWriter, r *http.Request) {
	var req playedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}
	if req.Expected < 0 || req.Deleted < 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "expected and deleted must not be negative")
		return
	}

	rep, err := s.svc.Playback.CheckAllPlayed(r.Context(), chi.URLParam(r, "jobID"), req.Expected, req.Deleted)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// JobHistory handles GET /v1/jobs/{jobID}/history.
func (s *Server) JobHistory(w http.ResponseWriter, r *http.Request) {
	if s.svc.History == nil {
		writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented, "history store is not configured")
		return
	}
	outcome, err := s.svc.History.Last(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

type queryRequest struct {
	Filters []string `json:"filters"`
	Fields  []string `json:"fields"`
	Options []string `json:"options"`
	Execute bool     `json:"execute"`
}

type queryResponse struct {
	URL   string            `json:"url"`
	Total *int              `json:"total,omitempty"`
	Docs  []domain.Document `json:"docs,omitempty"`
}

// BuildQuery handles POST /v1/query. The assembled URL is always returned;
// with execute set the query also runs.
func (s *Server) BuildQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}

	spec, err := filter.ParseSpec(req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	opts := option.New()
	for _, expr := range req.Options {
		opts = opts.With(option.Parse(expr))
	}

	resp := queryResponse{
		URL: s.svc.Queries.URL(query.Query{Filter: spec, Fields: req.Fields, Options: opts}),
	}
	if req.Execute {
		page, err := s.svc.Documents.Paged(r.Context(), spec, req.Fields, opts)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		resp.Total = &page.Total
		resp.Docs = page.Docs
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing upstream internals.
// Validation errors describe caller input and are returned in full.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidFilter, domain.ErrInvalidOption} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrNotIndexed,
		domain.ErrPlaybackStalled,
		historyrepo.ErrNotFound,
		domain.ErrHTTPStatus,
		domain.ErrSearchEngine,
		domain.ErrMalformedResponse,
		domain.ErrTransport,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
