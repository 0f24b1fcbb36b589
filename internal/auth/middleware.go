package auth

import (
	"errors"
	"net/http"
	"strings"

	"tutorconnect/internal/api"
	"tutorconnect/internal/logger"

	"github.com/gin-gonic/gin"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: message})
}

// AuthMiddleware authenticates the bearer access token and stores the
// resulting Session in the request context. Revocation lookups that fail
// reject the request.
func AuthMiddleware(accessTokenSecret string, revoker Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "Token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				unauthorized(c, "Token expired")
			default:
				unauthorized(c, "Invalid or malformed token")
			}
			return
		}

		if claims.TokenType != TokenTypeAccess {
			unauthorized(c, "Access token required")
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Error("token revocation check failed", "error", err, "user_id", claims.UserID)
				unauthorized(c, "Unable to verify session")
				return
			}
			if revoked {
				unauthorized(c, "Session has been signed out")
				return
			}
		}

		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), sessionFromClaims(claims)))
		c.Next()
	}
}

// RequireRole lets the request through when the session holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetSession(c)
		if !ok {
			unauthorized(c, "User not authenticated")
			return
		}

		for _, role := range roles {
			if s.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Message: "Insufficient permissions"})
	}
}
