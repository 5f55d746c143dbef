// Package chi exposes the recommendation API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/recommend"
	logpkg "github.com/pickmyelective/electives/internal/logger"
	"github.com/pickmyelective/electives/internal/metrics"
	healthuc "github.com/pickmyelective/electives/internal/usecase/health"
	"github.com/pickmyelective/electives/internal/version"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = version.Service

// Client-facing messages.
const (
	msgNoResults     = "No courses match your interests with the given filters. Try relaxing the constraints."
	msgInternalError = "Internal server error"
	msgInvalidBody   = "Invalid request body"
)

// maxBodyBytes caps the recommend request body.
const maxBodyBytes = 64 << 10

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (recommend.Result, error)
}

// ReadinessChecker reports whether the service can answer requests.
type ReadinessChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	recommender Recommender
	health      ReadinessChecker
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(recommender Recommender, health ReadinessChecker, logger *zap.Logger) *Server {
	return &Server{recommender: recommender, health: health, logger: logger}
}

// Recommend handles POST /api/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var body recommendBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		metrics.RecommendationsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	f := req.Filters()
	ctx := logpkg.WithFields(r.Context(),
		zap.Int("top_k", req.TopK()),
		zap.Bool("list_filters", f.HasListFilters()),
		zap.Bool("scalar_filters", f.HasScalarFilters()),
	)

	res, err := s.recommender.Recommend(ctx, req)
	if err != nil {
		s.handleError(w, logpkg.FromContext(ctx), err)
		return
	}
	if len(res.Courses) == 0 {
		writeError(w, http.StatusBadRequest, msgNoResults)
		return
	}

	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Ready handles GET /health/ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Ready {
		status = http.StatusServiceUnavailable
		s.logger.Warn("readiness check failed", zap.Any("checks", checks))
	}
	writeJSON(w, status, readyResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleError(w http.ResponseWriter, log *zap.Logger, err error) {
	if errors.Is(err, domain.ErrInvalidQuery) {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	log.Error("recommendation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

// validationMessage drops the sentinel prefix so clients see only the rule that failed.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidQuery.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}
