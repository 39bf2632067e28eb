package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/evmarket/checkout-client/pkg/config"
)

// NewCORS creates a CORS middleware from application config. The session
// header is always allowed and exposed since the app reads it after login.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	allowedOrigins := "*"
	if len(cfg.AllowedOrigins) > 0 {
		allowedOrigins = strings.Join(cfg.AllowedOrigins, ",")
	}

	allowedMethods := "GET,POST,OPTIONS"
	if len(cfg.AllowedMethods) > 0 {
		allowedMethods = strings.Join(cfg.AllowedMethods, ",")
	}

	allowedHeaders := "Origin,Content-Type,Accept,X-Request-ID"
	if len(cfg.AllowedHeaders) > 0 {
		allowedHeaders = strings.Join(cfg.AllowedHeaders, ",")
	}
	allowedHeaders += "," + SessionHeader + "," + InstalledSchemesHeader

	return fibercors.New(fibercors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  allowedMethods,
		AllowHeaders:  allowedHeaders,
		ExposeHeaders: SessionHeader + ",X-Request-ID",
		MaxAge:        86400, // 24 hours
	})
}
