package middleware

import (
	"net/http"

	"advisory-backend/internal/config"
	"github.com/rs/cors"
)

// NewCORS builds the CORS layer from configuration. Content-Disposition
// is exposed so browsers can read the suggested filename on the PDF and
// CSV report downloads.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // preflight cache, 5 minutes
	}).Handler
}
