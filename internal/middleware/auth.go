package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"vibecircles.web/internal/jwt"
	appErrors "vibecircles.web/pkg/errors"
	"vibecircles.web/pkg/response"
)

const contextKeyUserID = "user_id"

// JWTAuth requires a valid bearer token and stores the caller's id
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c)
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, appErrors.ErrTokenExpired)
			} else {
				response.Abort(c, appErrors.ErrTokenInvalid)
			}
			return
		}

		c.Set(contextKeyUserID, claims.UserID)
		c.Next()
	}
}

// extractToken pulls the token out of "Bearer <token>"
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetUserID authenticated user id, 0 outside JWTAuth
func GetUserID(c *gin.Context) int64 {
	userID, exists := c.Get(contextKeyUserID)
	if !exists {
		return 0
	}
	id, _ := userID.(int64)
	return id
}
