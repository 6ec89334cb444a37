package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ballsdex/merchant-service/internal/database"
)

// HandleHealthz reports process liveness
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "ok"})
	}
}

// HandleReadyz reports readiness by pinging the database
func HandleReadyz(pool database.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "ready"})
	}
}
