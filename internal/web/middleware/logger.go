package middleware

import (
	"net/http"

	"github.com/go-logr/logr"
)

// WithLogger puts log, tagged with the request method and path, in the request context.
func WithLogger(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLog := log.WithValues("method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(logr.NewContext(r.Context(), requestLog)))
		})
	}
}
