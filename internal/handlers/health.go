package handlers

import "net/http"

// Health is the liveness probe; it never touches a backing store.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK"))
}
