package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kdd-community/website-backend/internal/config"
)

// TokenKey is the gin context key the bearer token is stored under
const TokenKey = "bearerToken"

// BearerToken extracts the Authorization bearer token into the context.
// Authorization itself happens per-action in the service layer; requests
// without a token simply carry an empty one and fail there.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		const schema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, schema) {
			c.Set(TokenKey, authHeader[len(schema):])
		}
		c.Next()
	}
}

// Token returns the bearer token extracted by BearerToken, or ""
func Token(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// CORS builds the CORS middleware from the configured origins
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	return cors.New(corsConfig)
}

// RequestID attaches a request id to the context and response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("RequestID", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs one line per request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		requestID := c.GetString("RequestID")
		log.Printf("[%s] %s %s -> %d (%s)", requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency)
	}
}
