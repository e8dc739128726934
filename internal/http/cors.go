package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsMaxAge is how long browsers may cache preflight responses.
const corsMaxAge = 12 * time.Hour

// createCORSMiddleware builds a CORS middleware from configuration. Returns
// nil when CORS is disabled or no valid origin is configured, in which case
// no middleware is installed.
//
// CORS is off by default: the keyring API is a server-to-server surface and
// browsers only need it when a frontend talks to the API directly.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := splitOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("cors enabled without valid origins, middleware not installed")
		return nil
	}

	logger.Info("cors enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}

// splitOrigins parses a comma-separated origin list, dropping blank entries.
func splitOrigins(value string) []string {
	var origins []string
	for _, part := range strings.Split(value, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
