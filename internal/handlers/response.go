package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteError writes a standardised JSON error response for plain transport
// failures. Classified calculator errors carry their own richer shape.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}
