package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/SurfaceEval/pkg/logger"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/surfaceeval"
	"go.uber.org/multierr"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service surfaceeval.Evaluator
	storage surfaceeval.Storage
	opts    []surfaceeval.Option
	config  *ServerConfig
	log     surfaceeval.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	PlotDir        string
	AllowedOrigins []string
}

// NewServer creates a server whose evaluations share storage. opts are the
// default evaluator options; requests may override the tempo.
func NewServer(storage surfaceeval.Storage, opts []surfaceeval.Option, config *ServerConfig) (*Server, error) {
	s := &Server{
		storage: storage,
		opts:    opts,
		config:  config,
		log:     logger.GetLogger(),
	}
	svc, err := s.newEvaluator(nil)
	if err != nil {
		return nil, err
	}
	s.service = svc
	return s, nil
}

func (s *Server) newEvaluator(overrides []surfaceeval.Option) (surfaceeval.Evaluator, error) {
	opts := append([]surfaceeval.Option{}, s.opts...)
	opts = append(opts, overrides...)
	opts = append(opts, surfaceeval.WithStorage(s.storage), surfaceeval.WithLogger(s.log))
	return surfaceeval.NewEvaluator(opts...)
}

func (s *Server) Close() error {
	return s.service.Close()
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps evaluation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMissingLogFile), errors.Is(err, surfaceeval.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "SurfaceEval API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":           "GET /health",
			"evaluations":      "GET /api/evaluations",
			"evaluate":         "POST /api/evaluations",
			"getEvaluation":    "GET /api/evaluations/{id}",
			"deleteEvaluation": "DELETE /api/evaluations/{id}",
			"runSeries":        "GET /api/evaluations/{id}/runs/{index}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleListEvaluations handles GET /api/evaluations
func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	evals, err := s.service.ListEvaluations()
	if err != nil {
		s.log.Errorf("Failed to list evaluations: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve evaluations")
		return
	}
	if evals == nil {
		evals = []surfaceeval.Summary{}
	}

	s.respondJSON(w, http.StatusOK, ListEvaluationsResponse{
		Evaluations: evals,
		Count:       len(evals),
	})
}

// handleEvaluate handles POST /api/evaluations
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	svc := s.service
	if overrides := req.overrides(); len(overrides) > 0 {
		// shares s.storage, so it is not closed
		var err error
		svc, err = s.newEvaluator(overrides)
		if err != nil {
			s.respondError(w, statusFor(err), err.Error())
			return
		}
	}

	summary, err := svc.Evaluate(ctx, req.Batch())
	if summary == nil {
		s.log.Warnf("Evaluation rejected: %v", err)
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	resp := EvaluateResponse{Evaluation: summary}
	for _, e := range multierr.Errors(err) {
		resp.Errors = append(resp.Errors, e.Error())
	}
	s.log.Infof("Stored evaluation %s (%d runs, %d failed)", summary.ID, summary.NumRuns, len(summary.Failures))
	s.respondJSON(w, http.StatusCreated, resp)
}

// handleGetEvaluation handles GET /api/evaluations/{id}
func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request, id string) {
	summary, err := s.service.GetEvaluation(id)
	if err != nil {
		s.log.Warnf("Evaluation %s: %v", id, err)
		s.respondError(w, statusFor(err), fmt.Sprintf("Evaluation %s not available", id))
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// handleDeleteEvaluation handles DELETE /api/evaluations/{id}
func (s *Server) handleDeleteEvaluation(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteEvaluation(id); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Errorf("Failed to delete evaluation %s: %v", id, err)
		}
		s.respondError(w, status, fmt.Sprintf("Failed to delete evaluation %s", id))
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteEvaluationResponse{
		Message: "Evaluation deleted successfully",
		ID:      id,
	})
}

// handleRunSeries handles GET /api/evaluations/{id}/runs/{index}
func (s *Server) handleRunSeries(w http.ResponseWriter, r *http.Request, id string, index int) {
	rs, err := s.service.RunSeries(id, index)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rs)
}

// handleEvaluations routes requests to /api/evaluations
func (s *Server) handleEvaluations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListEvaluations(w, r)
	case http.MethodPost:
		s.handleEvaluate(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleEvaluation routes requests to /api/evaluations/{id}[/runs/{index}]
func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(r.URL.Path[len("/api/evaluations/"):], "/")
	if rest == "" {
		s.respondError(w, http.StatusBadRequest, "Evaluation ID required")
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.handleGetEvaluation(w, r, id)
		case http.MethodDelete:
			s.handleDeleteEvaluation(w, r, id)
		default:
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case len(parts) == 3 && parts[1] == "runs":
		if r.Method != http.MethodGet {
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid run index")
			return
		}
		s.handleRunSeries(w, r, id, index)
	default:
		http.NotFound(w, r)
	}
}
