package middleware

import "net/http"

const defaultAllowedOrigin = "http://localhost:3000"

// CORS allows browser calls from a single origin. An empty origin uses the
// local dashboard default.
func CORS(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = defaultAllowedOrigin
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			h.Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
