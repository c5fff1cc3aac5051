// Package api serves the read-only status endpoints of a running walk.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"walksim/pkg/logging"
	"walksim/pkg/version"
)

// NewServer creates and configures the HTTP server.
// runs may be nil when history is disabled.
func NewServer(addr string, progress *ProgressHandler, stats *StatsHandler, runs *RunsHandler) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Progress Endpoint
	mux.HandleFunc("GET /api/progress", progress.handleProgress)

	// 4. Stats Endpoint
	mux.Handle("GET /api/stats", stats)

	// 5. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 6. Run History
	if runs != nil {
		mux.HandleFunc("GET /api/runs", runs.HandleList)
		mux.HandleFunc("GET /api/runs/{id}", runs.HandleGet)
	} else {
		mux.HandleFunc("GET /api/runs", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "run history disabled", http.StatusNotFound)
		})
	}

	return &http.Server{
		Addr:         addr,
		Handler:      withRequestLog(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger := logging.RequestLogger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": %q, "commit": %q}`, version.Version, version.Commit); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
