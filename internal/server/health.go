package server

import "net/http"

type HealthResponse struct {
	OK bool `json:"ok"`
}

// handleHealth is the liveness probe polled by the keep-alive pinger.
func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{OK: true})
	}
}
