package api

import "net/http"

// HealthHandler implements GET /health (spec.md §6.2).
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
