package middleware

import (
	"net/http"

	"catering-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS allows the configured front-end origins with credentials, since
// sessions travel in cookies. Content-Disposition is exposed for PDF and CSV
// downloads.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler
}
