package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks that the database answers.
type Pinger func(ctx context.Context) error

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func healthHandler(ping Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := ping(ctx); err != nil {
			logger.Errorf("health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "unhealthy", Database: "disconnected"})
			return
		}
		writeJSON(w, http.StatusOK, healthStatus{Status: "healthy", Database: "connected"})
	}
}

type welcome struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}

func rootHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, welcome{
			Message: "Welcome to the " + name + " API",
			Docs:    "/docs",
			Health:  "/health",
		})
	}
}
