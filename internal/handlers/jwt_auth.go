package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foto-parana/contest-service/internal/models"
	"github.com/foto-parana/contest-service/internal/services"
)

// JWTAuthMiddleware authenticates requests against the session token store
type JWTAuthMiddleware struct {
	userService services.UserService
}

func NewJWTAuthMiddleware(userService services.UserService) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{userService: userService}
}

// AuthMiddleware returns a Gin middleware function validating bearer tokens
func (am *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authorization header missing",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := am.userService.ValidateSession(c.Request.Context(), tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_type", claims.UserType)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// RequireEvaluator restricts a route to jury members
func (am *JWTAuthMiddleware) RequireEvaluator() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("user_type")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "user type not found in context",
			})
			c.Abort()
			return
		}

		if ut, ok := userType.(models.UserType); !ok || ut != models.UserTypeEvaluator {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "evaluator access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts the authenticated user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserTypeFromContext extracts the authenticated user type from Gin context
func GetUserTypeFromContext(c *gin.Context) (models.UserType, error) {
	userType, exists := c.Get("user_type")
	if !exists {
		return "", fmt.Errorf("user type not found in context")
	}

	ut, ok := userType.(models.UserType)
	if !ok {
		return "", fmt.Errorf("invalid user type in context")
	}

	return ut, nil
}
