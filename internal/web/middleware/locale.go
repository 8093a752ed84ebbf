package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	kdexhttp "kdex.dev/app-header/internal/http"
)

type contextKey string

const LocaleKey contextKey = "locale"

// WithLocale negotiates the request language and stores it in the context.
func WithLocale(defaultLang string, supported []language.Tag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := kdexhttp.GetLang(r, defaultLang, supported)
			ctx := context.WithValue(r.Context(), LocaleKey, tag)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Locale returns the language stored by WithLocale, or und.
func Locale(ctx context.Context) language.Tag {
	tag, _ := ctx.Value(LocaleKey).(language.Tag)
	return tag
}
