package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes v as a bare JSON body with status code — spec.md §9
// treats the HTTP status mapping as the ABI, so success bodies here are the
// literal domain object shapes spec.md's tables describe, not an envelope.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
