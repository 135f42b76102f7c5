package middleware

import (
	"net/http"
	"strings"
	"time"

	"mill-ops-api/internal/auth"
	"mill-ops-api/internal/cache"

	"github.com/gin-gonic/gin"
)

// Validated claims are cached keyed by the raw token, so hot clients (polling
// dashboards, websocket reconnects) skip repeated signature checks. Capped so
// a revoked secret rotation takes effect within minutes.
var (
	claimsCache  = cache.New[string, *auth.Claims]()
	maxClaimsTTL = 5 * time.Minute
)

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		claims, ok := claimsCache.Get(tokenString)
		if !ok {
			var err error
			claims, err = auth.ValidateToken(tokenString)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid or expired token",
				})
				c.Abort()
				return
			}
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > maxClaimsTTL {
				ttl = maxClaimsTTL
			}
			if ttl > 0 {
				claimsCache.Set(tokenString, claims, ttl)
			}
		}

		// Store user info in context for use in handlers
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}
