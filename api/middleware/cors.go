package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Origins the terminal UI shell is served from during development and in the
// packaged build.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"tauri://localhost",
}

// CORS returns middleware that applies the local UI origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Hermes-Request-Id"},
		ExposedHeaders:   []string{"X-Hermes-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
