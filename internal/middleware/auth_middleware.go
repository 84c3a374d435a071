package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/permission"
	"github.com/yamdb/backend/internal/utils"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

const actorKey = "actor"

// UserFinder loads the account a token was issued to.
type UserFinder interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate resolves the bearer token into an actor. Requests without an
// Authorization header continue anonymously; a bad token is rejected.
func Authenticate(jwtSecret string, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, permission.Anonymous())
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret, utils.AccessToken)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, utils.ErrWrongTokenType) {
				msg = "Access token required"
			}
			logger.Log.Debug("Bearer token rejected",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Log.Error("Failed to load token owner",
				zap.String("user_id", claims.UserID.String()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		c.Set(actorKey, permission.FromUser(user))
		c.Next()
	}
}

// RequirePolicy aborts requests the list-level gate denies.
func RequirePolicy(policy permission.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := policy(c.Request.Method, CurrentActor(c))
		if decision.Allowed() {
			c.Next()
			return
		}

		msg := "Authentication credentials were not provided"
		if decision == permission.Forbidden {
			msg = "You do not have permission to perform this action"
		}
		c.AbortWithStatusJSON(decision.StatusCode(), gin.H{"error": msg})
	}
}

// CurrentActor returns the actor stored by Authenticate, or an anonymous one.
func CurrentActor(c *gin.Context) permission.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(permission.Actor); ok {
			return actor
		}
	}
	return permission.Anonymous()
}
