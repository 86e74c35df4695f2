package handlers

import "net/http"

// Health answers liveness probes. It stays off the tracing path.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
