package middleware

import "net/http"

// ContentTypeJSON stamps every response as JSON. Handlers that return other
// payloads (none today) would override it.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
