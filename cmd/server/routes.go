package main

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/himanishpuri/SurfaceEval/pkg/logger"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/api/evaluations", s.handleEvaluations)
	mux.HandleFunc("/api/evaluations/", s.handleEvaluation)

	return corsMiddleware(s.config.AllowedOrigins)(loggingMiddleware(mux))
}

// corsMiddleware answers preflights itself. An empty list or "*" admits
// every origin.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	anyOrigin := len(allowedOrigins) == 0
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[o] = struct{}{}
	}

	allowOrigin := func(origin string) string {
		if anyOrigin {
			return "*"
		}
		if _, ok := origins[origin]; ok {
			return origin
		}
		return ""
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed := allowOrigin(r.Header.Get("Origin")); allowed != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "3600")
				if !anyOrigin {
					h.Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs method, path, caller and status at debug level.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debugf("%s %s from %s -> %d", r.Method, r.URL.Path, remoteHost(r), rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// remoteHost prefers the first X-Forwarded-For hop over the socket address.
func remoteHost(r *http.Request) string {
	if fwd, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(fwd) != "" {
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Start starts the HTTP server
func (s *Server) Start() error {
	handler := s.setupRoutes()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("🚀 SurfaceEval server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	if s.config.PlotDir != "" {
		s.log.Infof("   Plots: %s", s.config.PlotDir)
	}
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET    /health                              - Health check")
	s.log.Infof("   GET    /api/evaluations                     - List evaluations")
	s.log.Infof("   POST   /api/evaluations                     - Evaluate a batch of server-side logs")
	s.log.Infof("   GET    /api/evaluations/{id}                - Get evaluation")
	s.log.Infof("   DELETE /api/evaluations/{id}                - Delete evaluation")
	s.log.Infof("   GET    /api/evaluations/{id}/runs/{index}   - Observed and expected series of a run")

	return http.ListenAndServe(addr, handler)
}
