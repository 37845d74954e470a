package middleware

import (
	"net/http"
	"slices"

	"github.com/gorilla/handlers"
)

// CORS lets the listed origins call the API from a browser. With no origins
// configured the API stays same-origin only. Credentials (the token cookie)
// are only allowed for explicitly named origins, never for "*".
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	opts := []handlers.CORSOption{
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.OptionStatusCode(http.StatusNoContent),
	}
	if !slices.Contains(allowedOrigins, "*") {
		opts = append(opts, handlers.AllowCredentials())
	}
	return handlers.CORS(opts...)
}
