package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// response is the body of every ops endpoint except /metrics.
type response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func healthy(data any) response {
	return response{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthy(msg string) response {
	return response{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: msg}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
