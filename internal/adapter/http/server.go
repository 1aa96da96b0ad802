package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/pipeline"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/scope"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/view"
)

// Shops is the record service behind the API.
type Shops interface {
	sharedobs.ReadinessChecker
	List() *scope.Scope
	Detail(ctx context.Context, name string) (pipeline.Detail, error)
}

// Server exposes the shop API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	shops      Shops
	views      *view.Builder
	logger     *slog.Logger
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewServer creates an HTTP server with the /api routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, shops Shops, views *view.Builder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withCORS(withLogging(logger, mux)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		shops:  shops,
		views:  views,
		logger: logger,
	}

	mux.HandleFunc("GET /api/shops", s.handleList)
	mux.HandleFunc("GET /api/shops/{name...}", s.handleDetail)
	mux.HandleFunc("GET /api/score-guide", s.handleScoreGuide)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(shops))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := domain.ViewState{
		SearchTerm:  q.Get("search"),
		GradeFilter: domain.Grade(q.Get("grade")),
	}
	if state.GradeFilter != "" && !state.GradeFilter.Valid() {
		writeError(w, http.StatusBadRequest, "grade must be one of A, B, C")
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, s.views.List(s.shops.List().Snapshot(), state))
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	d, err := s.shops.Detail(r.Context(), name)
	if err != nil {
		if errors.Is(err, scope.ErrClosed) && r.Context().Err() != nil {
			s.logger.Debug("detail request abandoned", "name", name)
		} else {
			s.logger.Error("detail lookup failed", "name", name, "error", err)
		}
		writeError(w, http.StatusServiceUnavailable, "detail lookup did not complete")
		return
	}

	status := http.StatusOK
	if !d.Found {
		status = http.StatusNotFound
	}
	sharedobs.WriteJSON(w, status, s.views.Detail(name, d, s.shops.List().Snapshot()))
}

func (s *Server) handleScoreGuide(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, view.ScoreGuide())
}

func writeError(w http.ResponseWriter, status int, message string) {
	sharedobs.WriteJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
