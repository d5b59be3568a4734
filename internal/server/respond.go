package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the uniform response body: status is "success" or "error",
// data rides along on success only.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, envelope{Status: "success", Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Status: "error", Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("writing response", "err", err)
	}
}

// decodeJSON reads the request body into dst, rejecting unknown layouts
// with a plain error the handler converts to a 400.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
