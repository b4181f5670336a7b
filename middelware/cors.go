package middelware

import (
	"fieldfuze-dispatch/models"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware provides CORS handling for the dispatch board
type CORSMiddleware struct {
	config *models.Config
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(cfg *models.Config) *CORSMiddleware {
	return &CORSMiddleware{
		config: cfg,
	}
}

// CORS returns a gin.HandlerFunc for handling CORS
func (m *CORSMiddleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && m.isOriginAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept-Encoding, Authorization, X-Requested-With")
		c.Header("Access-Control-Expose-Headers", "Cache-Control")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isOriginAllowed checks if the origin is in the allowed list
func (m *CORSMiddleware) isOriginAllowed(origin string) bool {
	for _, allowedOrigin := range m.config.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}

		// Wildcard subdomain matching (e.g., *.example.com)
		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := allowedOrigin[2:]
			host := origin
			if idx := strings.Index(host, "://"); idx >= 0 {
				host = host[idx+3:]
			}
			if strings.HasSuffix(host, "."+domain) || host == domain {
				return true
			}
		}
	}

	return false
}
